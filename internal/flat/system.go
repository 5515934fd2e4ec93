package flat

import (
	"fmt"

	"github.com/san-kum/flatgen/internal/sim"
)

// Flag is a flat flag: for each flat output, the ordered values
// [z, dz/dt, d²z/dt², ...] up to the order that output needs for the
// reverse map. Flags are transient values passed between the maps.
type Flag [][]float64

// ForwardFunc maps a (state, input) pair to the flat flag at that point.
type ForwardFunc func(x, u []float64, p Params) Flag

// ReverseFunc reconstructs the (state, input) pair from a flat flag.
type ReverseFunc func(flag Flag, p Params) (x, u []float64)

// UpdateFunc is the ordinary vector field dx/dt = f(t, x, u). It is used
// only to verify generated trajectories by simulation, never by the solver.
type UpdateFunc func(t float64, x, u []float64, p Params) []float64

// OutputFunc is the ordinary measurement map y = h(t, x, u).
type OutputFunc func(t float64, x, u []float64, p Params) []float64

// FlatSystem is a differentially flat system: a forward/reverse flat map
// pair plus optional ordinary dynamics and name metadata. The forward and
// reverse maps must be exact inverses at consistent points; that is a
// precondition the solver can spot-check (see SolveOptions.CheckMaps) but
// does not enforce. Immutable after construction.
type FlatSystem struct {
	forward ForwardFunc
	reverse ReverseFunc
	update  UpdateFunc
	output  OutputFunc

	states  []string
	inputs  []string
	outputs []string
}

// SystemConfig carries the optional pieces of a flat system. States and
// Inputs are required; their lengths fix the system dimensions.
type SystemConfig struct {
	States  []string
	Inputs  []string
	Outputs []string
	Update  UpdateFunc
	Output  OutputFunc
}

func NewFlatSystem(forward ForwardFunc, reverse ReverseFunc, cfg SystemConfig) (*FlatSystem, error) {
	if forward == nil || reverse == nil {
		return nil, fmt.Errorf("flat system needs both forward and reverse maps")
	}
	if len(cfg.States) == 0 {
		return nil, fmt.Errorf("flat system needs at least one state name")
	}
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("flat system needs at least one input name")
	}
	return &FlatSystem{
		forward: forward,
		reverse: reverse,
		update:  cfg.Update,
		output:  cfg.Output,
		states:  append([]string(nil), cfg.States...),
		inputs:  append([]string(nil), cfg.Inputs...),
		outputs: append([]string(nil), cfg.Outputs...),
	}, nil
}

func (s *FlatSystem) NumStates() int { return len(s.states) }
func (s *FlatSystem) NumInputs() int { return len(s.inputs) }

func (s *FlatSystem) StateNames() []string  { return append([]string(nil), s.states...) }
func (s *FlatSystem) InputNames() []string  { return append([]string(nil), s.inputs...) }
func (s *FlatSystem) OutputNames() []string { return append([]string(nil), s.outputs...) }

// Forward evaluates the forward flat map at (x, u).
func (s *FlatSystem) Forward(x, u []float64, p Params) (Flag, error) {
	if len(x) != s.NumStates() {
		return nil, fmt.Errorf("state has dimension %d, system expects %d", len(x), s.NumStates())
	}
	if len(u) != s.NumInputs() {
		return nil, fmt.Errorf("input has dimension %d, system expects %d", len(u), s.NumInputs())
	}
	return s.forward(x, u, p), nil
}

// Reverse evaluates the reverse flat map, reconstructing (x, u) from a flag.
func (s *FlatSystem) Reverse(flag Flag, p Params) (x, u []float64) {
	return s.reverse(flag, p)
}

// HasDynamics reports whether the system carries an ordinary update map.
func (s *FlatSystem) HasDynamics() bool { return s.update != nil }

// Dynamics adapts the system's ordinary update map to the simulator's
// interface, binding p for the run. Systems built without an update map
// cannot be simulated.
func (s *FlatSystem) Dynamics(p Params) (sim.Dynamics, error) {
	if s.update == nil {
		return nil, fmt.Errorf("flat system has no update map to simulate")
	}
	if s.output != nil {
		return &flatDynamicsWithOutput{flatDynamics{sys: s, params: p}}, nil
	}
	return &flatDynamics{sys: s, params: p}, nil
}

type flatDynamics struct {
	sys    *FlatSystem
	params Params
}

func (d *flatDynamics) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return d.sys.update(t, x, u, d.params)
}

func (d *flatDynamics) StateDim() int   { return d.sys.NumStates() }
func (d *flatDynamics) ControlDim() int { return d.sys.NumInputs() }

type flatDynamicsWithOutput struct {
	flatDynamics
}

func (d *flatDynamicsWithOutput) Output(x sim.State, u sim.Control, t float64) []float64 {
	return d.sys.output(t, x, u, d.params)
}
