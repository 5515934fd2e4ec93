// Package optim provides the constrained minimization collaborator used by
// the trajectory solver: a small interface over {objective, equality
// constraints, inequality constraints, initial guess} plus a default
// implementation that eliminates linear equality constraints exactly and
// handles inequalities by penalty.
package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Objective maps a decision vector to a scalar cost.
type Objective func(x []float64) float64

// Inequality bounds a vector-valued function of the decision vector,
// Lb <= F(x) <= Ub elementwise.
type Inequality struct {
	F  func(x []float64) []float64
	Lb []float64
	Ub []float64
}

// Problem is a constrained minimization over a real decision vector.
// EqA and Eqb describe linear equality constraints EqA·x = Eqb and may be
// nil when there are none.
type Problem struct {
	Objective Objective
	EqA       *mat.Dense
	Eqb       []float64
	Ineqs     []Inequality
	Initial   []float64
}

// Result reports the outcome of a minimization. Status carries the
// implementation's own termination description and is included verbatim in
// errors surfaced to callers.
type Result struct {
	X         []float64
	Value     float64
	Status    string
	Converged bool
}

// Minimizer solves constrained minimization problems. Implementations are
// synchronous; callers wanting parallelism run independent problems on
// their own minimizer instances.
type Minimizer interface {
	Minimize(p Problem) (*Result, error)
}

func (p Problem) validate() error {
	if p.Objective == nil {
		return fmt.Errorf("minimization problem has no objective")
	}
	if len(p.Initial) == 0 {
		return fmt.Errorf("minimization problem has no initial guess")
	}
	if p.EqA != nil {
		r, c := p.EqA.Dims()
		if c != len(p.Initial) {
			return fmt.Errorf("equality matrix has %d columns, decision vector has %d", c, len(p.Initial))
		}
		if r != len(p.Eqb) {
			return fmt.Errorf("equality matrix has %d rows, right-hand side has %d", r, len(p.Eqb))
		}
	}
	for i, c := range p.Ineqs {
		if c.F == nil {
			return fmt.Errorf("inequality %d has no function", i)
		}
		if len(c.Lb) != len(c.Ub) {
			return fmt.Errorf("inequality %d bound lengths differ: %d vs %d", i, len(c.Lb), len(c.Ub))
		}
	}
	return nil
}

// violation returns the total squared bound violation and the largest
// single violation of the problem's inequalities at x.
func (p Problem) violation(x []float64) (sumSq, worst float64) {
	for _, c := range p.Ineqs {
		g := c.F(x)
		for i := range g {
			var v float64
			if i < len(c.Lb) && g[i] < c.Lb[i] {
				v = c.Lb[i] - g[i]
			}
			if i < len(c.Ub) && g[i] > c.Ub[i] {
				v = g[i] - c.Ub[i]
			}
			sumSq += v * v
			if v > worst {
				worst = v
			}
		}
	}
	return sumSq, worst
}
