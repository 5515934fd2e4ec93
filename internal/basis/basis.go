package basis

import (
	"errors"
	"fmt"
)

// ErrIndexRange reports a basis function index at or beyond the family size.
var ErrIndexRange = errors.New("basis index out of range")

// Family is a fixed set of scalar basis functions of normalized time.
// A flat output trajectory is represented as a linear combination of the
// family's members. Families are immutable and safe for concurrent use.
type Family interface {
	// Size returns the number of basis functions in the family.
	Size() int
	// Eval returns the value of basis function i at time t.
	Eval(i int, t float64) (float64, error)
	// EvalDeriv returns the order-th time derivative of basis function i
	// at time t. Order 0 is equivalent to Eval.
	EvalDeriv(i, order int, t float64) (float64, error)
}

func checkIndex(i, size int) error {
	if i < 0 || i >= size {
		return fmt.Errorf("%w: index %d too high for family of size %d", ErrIndexRange, i, size)
	}
	return nil
}

func checkOrder(order int) error {
	if order < 0 {
		return fmt.Errorf("derivative order must be non-negative, got %d", order)
	}
	return nil
}
