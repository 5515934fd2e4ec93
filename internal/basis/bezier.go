package basis

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// Bezier is the Bernstein polynomial family on the unit interval. Basis
// function i of a family of size n is B_{i,n-1}(t) = C(n-1,i) t^i (1-t)^(n-1-i).
// The family sums to one at every t (partition of unity), so any positive
// derivative order sums to zero. Values are only meaningful for t in [0,1];
// callers working on a longer horizon rescale time first.
type Bezier struct {
	size int
}

// NewBezier returns the Bernstein family with n basis functions of
// polynomial degree n-1.
func NewBezier(n int) *Bezier {
	return &Bezier{size: n}
}

func (b *Bezier) Size() int {
	return b.size
}

func (b *Bezier) Eval(i int, t float64) (float64, error) {
	return b.EvalDeriv(i, 0, t)
}

func (b *Bezier) EvalDeriv(i, order int, t float64) (float64, error) {
	if err := checkIndex(i, b.size); err != nil {
		return 0, err
	}
	if err := checkOrder(order); err != nil {
		return 0, err
	}
	return bernsteinDeriv(i, b.size-1, order, t), nil
}

// bernsteinDeriv evaluates the order-th derivative of B_{i,degree} at t
// using the degree reduction identity
//
//	B'_{i,d} = d (B_{i-1,d-1} - B_{i,d-1})
//
// applied recursively. Indices outside 0..degree evaluate to zero, which
// covers the boundary terms of the identity.
func bernsteinDeriv(i, degree, order int, t float64) float64 {
	if i < 0 || i > degree {
		return 0
	}
	if order == 0 {
		c := float64(combin.Binomial(degree, i))
		return c * math.Pow(t, float64(i)) * math.Pow(1-t, float64(degree-i))
	}
	if degree == 0 {
		return 0
	}
	d := float64(degree)
	return d * (bernsteinDeriv(i-1, degree-1, order-1, t) -
		bernsteinDeriv(i, degree-1, order-1, t))
}
