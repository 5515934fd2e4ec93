package flat

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewFlatSystemValidation(t *testing.T) {
	fwd := func(x, u []float64, p Params) Flag { return Flag{{x[0], u[0]}} }
	rev := func(flag Flag, p Params) ([]float64, []float64) {
		return []float64{flag[0][0]}, []float64{flag[0][1]}
	}

	tests := []struct {
		name string
		fwd  ForwardFunc
		rev  ReverseFunc
		cfg  SystemConfig
	}{
		{"no forward", nil, rev, SystemConfig{States: []string{"x"}, Inputs: []string{"u"}}},
		{"no reverse", fwd, nil, SystemConfig{States: []string{"x"}, Inputs: []string{"u"}}},
		{"no states", fwd, rev, SystemConfig{Inputs: []string{"u"}}},
		{"no inputs", fwd, rev, SystemConfig{States: []string{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFlatSystem(tt.fwd, tt.rev, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestForwardDimensionChecks(t *testing.T) {
	sys := doubleIntegrator(t)

	if _, err := sys.Forward([]float64{1}, []float64{0}, nil); err == nil {
		t.Error("expected error for short state")
	}
	if _, err := sys.Forward([]float64{1, 2}, []float64{0, 0}, nil); err == nil {
		t.Error("expected error for wide input")
	}
}

func TestDynamicsRequiresUpdateMap(t *testing.T) {
	fwd := func(x, u []float64, p Params) Flag { return Flag{{x[0], u[0]}} }
	rev := func(flag Flag, p Params) ([]float64, []float64) {
		return []float64{flag[0][0]}, []float64{flag[0][1]}
	}
	sys, err := NewFlatSystem(fwd, rev, SystemConfig{States: []string{"x"}, Inputs: []string{"u"}})
	if err != nil {
		t.Fatalf("flat system: %v", err)
	}

	if sys.HasDynamics() {
		t.Error("system without update map reports dynamics")
	}
	if _, err := sys.Dynamics(nil); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestParamsGet(t *testing.T) {
	var nilParams Params
	if got := nilParams.Get("wheelbase", 3); got != 3 {
		t.Errorf("nil params: got %v, want 3", got)
	}

	p := Params{"wheelbase": 2.5}
	if got := p.Get("wheelbase", 3); got != 2.5 {
		t.Errorf("set key: got %v, want 2.5", got)
	}
	if got := p.Get("mass", 1); got != 1 {
		t.Errorf("missing key: got %v, want 1", got)
	}
}

func TestQuadraticCost(t *testing.T) {
	q := mat.NewDense(2, 2, []float64{1, 0, 0, 2})
	r := mat.NewDense(1, 1, []float64{3})
	cost := QuadraticCost(q, r, []float64{1, 0}, []float64{0})

	// (2-1)^2*1 + 1^2*2 + 2^2*3 = 15
	got := cost([]float64{2, 1}, []float64{2})
	if math.Abs(got-15) > 1e-12 {
		t.Errorf("got %v, want 15", got)
	}

	// A nil weight drops its term.
	stateOnly := QuadraticCost(q, nil, nil, nil)
	if got := stateOnly([]float64{1, 1}, []float64{99}); math.Abs(got-3) > 1e-12 {
		t.Errorf("got %v, want 3", got)
	}
}
