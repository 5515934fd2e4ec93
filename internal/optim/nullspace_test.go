package optim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMinimizeEqualityConstrained(t *testing.T) {
	// min (x-1)^2 + (y-2)^2 subject to x + y = 1; solution (0, 1).
	p := Problem{
		Objective: func(x []float64) float64 {
			return (x[0]-1)*(x[0]-1) + (x[1]-2)*(x[1]-2)
		},
		EqA:     mat.NewDense(1, 2, []float64{1, 1}),
		Eqb:     []float64{1},
		Initial: []float64{0.5, 0.5},
	}

	res, err := (&NullspacePenalty{}).Minimize(p)
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if !res.Converged {
		t.Fatalf("did not converge: %s", res.Status)
	}
	if math.Abs(res.X[0]) > 1e-4 || math.Abs(res.X[1]-1) > 1e-4 {
		t.Errorf("expected (0, 1), got (%.6f, %.6f)", res.X[0], res.X[1])
	}
	if math.Abs(res.X[0]+res.X[1]-1) > 1e-10 {
		t.Errorf("equality constraint violated: x+y = %.12f", res.X[0]+res.X[1])
	}
}

func TestMinimizeInequality(t *testing.T) {
	// min (x-2)^2 subject to x <= 1; solution x = 1.
	p := Problem{
		Objective: func(x []float64) float64 {
			return (x[0] - 2) * (x[0] - 2)
		},
		Ineqs: []Inequality{{
			F:  func(x []float64) []float64 { return []float64{x[0]} },
			Lb: []float64{math.Inf(-1)},
			Ub: []float64{1},
		}},
		Initial: []float64{0},
	}

	res, err := (&NullspacePenalty{}).Minimize(p)
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if res.X[0] > 1+1e-4 {
		t.Errorf("bound violated: x = %.6f", res.X[0])
	}
	if math.Abs(res.X[0]-1) > 1e-2 {
		t.Errorf("expected x near 1, got %.6f", res.X[0])
	}
}

func TestMinimizeFullyDetermined(t *testing.T) {
	// Two independent equalities in two unknowns leave nothing to optimize.
	p := Problem{
		Objective: func(x []float64) float64 { return x[0] * x[0] },
		EqA:       mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Eqb:       []float64{3, 4},
		Initial:   []float64{0, 0},
	}

	res, err := (&NullspacePenalty{}).Minimize(p)
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if math.Abs(res.X[0]-3) > 1e-10 || math.Abs(res.X[1]-4) > 1e-10 {
		t.Errorf("expected (3, 4), got (%v, %v)", res.X[0], res.X[1])
	}
}

func TestMinimizeValidation(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
	}{
		{"no objective", Problem{Initial: []float64{0}}},
		{"no guess", Problem{Objective: func(x []float64) float64 { return 0 }}},
		{"bad equality shape", Problem{
			Objective: func(x []float64) float64 { return 0 },
			EqA:       mat.NewDense(1, 3, nil),
			Eqb:       []float64{0},
			Initial:   []float64{0, 0},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (&NullspacePenalty{}).Minimize(tt.p); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
