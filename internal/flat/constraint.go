package flat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Constraint restricts the trajectory pointwise in (state, input) space.
// The two accepted forms are [LinearConstraint] and [FuncConstraint]; the
// solver composes either with the reverse flat map and broadcasts it over
// the interior grid time points, or over the sub-list selected by Times.
type Constraint interface {
	// rows returns the number of constrained quantities, validating the
	// descriptor's shape against the system dimensions.
	rows(nx, nu int) (int, error)
	// eval writes the constrained quantities at one (x, u) point.
	eval(x, u, dst []float64)
	bounds() (lb, ub []float64)
	timeIndices() []int
}

// LinearConstraint bounds rows of A·[x; u]: Lb ≤ A·[x; u] ≤ Ub, where A
// has one column per state followed by one per input. Times, when
// non-empty, lists the grid indices the constraint applies to; otherwise
// it applies at every interior grid point.
type LinearConstraint struct {
	A     *mat.Dense
	Lb    []float64
	Ub    []float64
	Times []int
}

func (c LinearConstraint) rows(nx, nu int) (int, error) {
	if c.A == nil {
		return 0, fmt.Errorf("%w: linear constraint has no matrix", ErrBadConstraint)
	}
	r, cols := c.A.Dims()
	if cols != nx+nu {
		return 0, fmt.Errorf("%w: linear constraint has %d columns, want %d states + %d inputs",
			ErrBadConstraint, cols, nx, nu)
	}
	if len(c.Lb) != r || len(c.Ub) != r {
		return 0, fmt.Errorf("%w: linear constraint bounds have lengths %d/%d, matrix has %d rows",
			ErrBadConstraint, len(c.Lb), len(c.Ub), r)
	}
	return r, nil
}

func (c LinearConstraint) eval(x, u, dst []float64) {
	r, _ := c.A.Dims()
	for i := 0; i < r; i++ {
		var sum float64
		for j, v := range x {
			sum += c.A.At(i, j) * v
		}
		for j, v := range u {
			sum += c.A.At(i, len(x)+j) * v
		}
		dst[i] = sum
	}
}

func (c LinearConstraint) bounds() (lb, ub []float64) { return c.Lb, c.Ub }
func (c LinearConstraint) timeIndices() []int         { return c.Times }

// FuncConstraint bounds an arbitrary function of (state, input):
// Lb ≤ F(x, u) ≤ Ub elementwise. Use equal bounds for an equality
// constraint. Times behaves as in [LinearConstraint].
type FuncConstraint struct {
	F     func(x, u []float64) []float64
	Lb    []float64
	Ub    []float64
	Times []int
}

func (c FuncConstraint) rows(nx, nu int) (int, error) {
	if c.F == nil {
		return 0, fmt.Errorf("%w: function constraint has no function", ErrBadConstraint)
	}
	if len(c.Lb) != len(c.Ub) {
		return 0, fmt.Errorf("%w: function constraint bounds have lengths %d/%d",
			ErrBadConstraint, len(c.Lb), len(c.Ub))
	}
	return len(c.Lb), nil
}

func (c FuncConstraint) eval(x, u, dst []float64) {
	copy(dst, c.F(x, u))
}

func (c FuncConstraint) bounds() (lb, ub []float64) { return c.Lb, c.Ub }
func (c FuncConstraint) timeIndices() []int         { return c.Times }
