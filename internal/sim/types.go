package sim

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

// Dynamics is the ordinary (non-flat) vector field of a system,
// dx/dt = Derivative(x, u, t).
type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Outputter is implemented by dynamics that carry a measurement map.
type Outputter interface {
	Output(x State, u Control, t float64) []float64
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

// Response holds the result of a forced-response integration sampled on
// the caller's time grid.
type Response struct {
	Times   []float64
	States  []State
	Outputs [][]float64
}
