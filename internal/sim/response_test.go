package sim

import (
	"context"
	"math"
	"testing"
)

// dx/dt = -x + u, with solution x(t) = e^{-t} for u = 0, x0 = 1.
type decayDynamics struct{}

func (d *decayDynamics) Derivative(x State, u Control, t float64) State {
	return State{-x[0] + u[0]}
}

func (d *decayDynamics) StateDim() int   { return 1 }
func (d *decayDynamics) ControlDim() int { return 1 }

// rk4Step is a local fourth-order step so the package test does not
// depend on internal/integrators.
type rk4Step struct{}

func (r *rk4Step) Step(dyn Dynamics, x State, u Control, t, dt float64) State {
	n := len(x)
	add := func(a State, k State, h float64) State {
		out := make(State, n)
		for i := range out {
			out[i] = a[i] + h*k[i]
		}
		return out
	}
	k1 := dyn.Derivative(x, u, t)
	k2 := dyn.Derivative(add(x, k1, dt/2), u, t+dt/2)
	k3 := dyn.Derivative(add(x, k2, dt/2), u, t+dt/2)
	k4 := dyn.Derivative(add(x, k3, dt), u, t+dt)
	out := make(State, n)
	for i := range out {
		out[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

func grid(t0, t1 float64, n int) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = t0 + (t1-t0)*float64(i)/float64(n-1)
	}
	return ts
}

func TestForcedResponseDecay(t *testing.T) {
	times := grid(0, 1, 21)
	inputs := make([]Control, len(times))
	for i := range inputs {
		inputs[i] = Control{0}
	}

	resp, err := ForcedResponse(context.Background(), &decayDynamics{}, &rk4Step{}, times, inputs, State{1}, Config{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(resp.States) != len(times) {
		t.Fatalf("expected %d samples, got %d", len(times), len(resp.States))
	}
	for k, tv := range resp.Times {
		want := math.Exp(-tv)
		if math.Abs(resp.States[k][0]-want) > 1e-6 {
			t.Errorf("at t=%.2f: got %.8f, expected %.8f", tv, resp.States[k][0], want)
		}
	}
}

func TestForcedResponseValidation(t *testing.T) {
	dyn := &decayDynamics{}
	integ := &rk4Step{}
	u := []Control{{0}, {0}}

	tests := []struct {
		name   string
		times  []float64
		inputs []Control
		x0     State
	}{
		{"too few points", []float64{0}, []Control{{0}}, State{1}},
		{"input count mismatch", []float64{0, 1}, []Control{{0}}, State{1}},
		{"non-increasing grid", []float64{0, 0}, u, State{1}},
		{"bad state dim", []float64{0, 1}, u, State{1, 2}},
		{"bad input dim", []float64{0, 1}, []Control{{0, 0}, {0, 0}}, State{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForcedResponse(context.Background(), dyn, integ, tt.times, tt.inputs, tt.x0, Config{})
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestForcedResponseCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	times := grid(0, 1, 11)
	inputs := make([]Control, len(times))
	for i := range inputs {
		inputs[i] = Control{0}
	}

	_, err := ForcedResponse(ctx, &decayDynamics{}, &rk4Step{}, times, inputs, State{1}, Config{})
	if err == nil {
		t.Error("expected context error, got nil")
	}
}
