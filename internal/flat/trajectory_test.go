package flat

import (
	"math"
	"testing"

	"github.com/san-kum/flatgen/internal/basis"
)

func solveDoubleIntegrator(t *testing.T) (*FlatSystem, *Trajectory) {
	t.Helper()
	sys := doubleIntegrator(t)
	traj, err := PointToPoint(sys, []float64{2},
		[]float64{0, 0}, []float64{0}, []float64{1, 0}, []float64{0},
		SolveOptions{Basis: basis.NewPoly(6)})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	return sys, traj
}

func TestTrajectoryEvalMatchesEvalAt(t *testing.T) {
	_, traj := solveDoubleIntegrator(t)

	ts := []float64{0, 0.3, 1.1, 2}
	states, inputs, err := traj.Eval(ts)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	for k, tv := range ts {
		x, u, err := traj.EvalAt(tv)
		if err != nil {
			t.Fatalf("eval at %v: %v", tv, err)
		}
		for i := range x {
			if math.Abs(x[i]-states[k][i]) > 1e-12 {
				t.Errorf("state mismatch at t=%.2f", tv)
			}
		}
		for i := range u {
			if math.Abs(u[i]-inputs[k][i]) > 1e-12 {
				t.Errorf("input mismatch at t=%.2f", tv)
			}
		}
	}
}

// The caller's time ordering is preserved, including out-of-order grids.
func TestTrajectoryEvalPreservesOrder(t *testing.T) {
	_, traj := solveDoubleIntegrator(t)

	forward, _, err := traj.Eval([]float64{0.5, 1.5})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	backward, _, err := traj.Eval([]float64{1.5, 0.5})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	for i := range forward[0] {
		if forward[0][i] != backward[1][i] || forward[1][i] != backward[0][i] {
			t.Fatal("evaluation order not preserved")
		}
	}
}

func TestTrajectoryCoefficientsCopy(t *testing.T) {
	_, traj := solveDoubleIntegrator(t)

	c := traj.Coefficients()
	if len(c) != 1 || len(c[0]) != 6 {
		t.Fatalf("expected 1x6 coefficients, got %dx%d", len(c), len(c[0]))
	}

	before, _, _ := traj.EvalAt(1)
	c[0][0] += 100
	after, _, _ := traj.EvalAt(1)
	if before[0] != after[0] {
		t.Error("mutating the returned coefficients changed the trajectory")
	}
}

func TestTrajectoryHorizonAccessors(t *testing.T) {
	_, traj := solveDoubleIntegrator(t)
	if traj.Start() != 0 || traj.End() != 2 {
		t.Errorf("expected horizon [0, 2], got [%v, %v]", traj.Start(), traj.End())
	}
}
