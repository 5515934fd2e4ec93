package flat

import (
	"errors"
	"fmt"
)

// ErrBasisSize reports a basis whose size cannot satisfy the boundary
// conditions exactly on the unconstrained solve path.
var ErrBasisSize = errors.New("basis size does not match boundary condition count")

// ErrBadConstraint reports a constraint descriptor the solver does not
// recognize or whose shape is inconsistent with the system dimensions.
var ErrBadConstraint = errors.New("bad constraint descriptor")

// ConvergenceError reports that the minimizer collaborator terminated
// without a feasible solution. Status carries the minimizer's own
// termination description. No partial trajectory accompanies it.
type ConvergenceError struct {
	Status string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("trajectory optimization did not converge: %s", e.Status)
}
