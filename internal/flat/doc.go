// Package flat generates feasible trajectories for differentially flat
// systems. A flat system's state and input are algebraic functions of a
// set of flat outputs and finitely many of their derivatives, so
// point-to-point trajectory generation reduces to fitting basis-function
// curves in flat output space and mapping back — no integration of the
// dynamics is involved.
//
// The pieces:
//
//   - [FlatSystem]: a user-supplied forward/reverse flat map pair plus
//     optional ordinary dynamics used only for verification
//   - [NewLinearFlatSystem]: derives the maps for single-input
//     controllable LTI realizations
//   - [PointToPoint]: the solver, connecting two (state, input)
//     operating points over a horizon
//   - [Trajectory]: the immutable result, evaluable at arbitrary times
//   - [QuadraticCost], [LinearConstraint], [FuncConstraint]: optional
//     shaping of the solution on an enlarged basis
//
// Basis families come from the basis package; constrained minimization is
// delegated to the optim package.
package flat
