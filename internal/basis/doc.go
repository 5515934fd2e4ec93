// Package basis provides families of scalar basis functions used to
// represent flat output trajectories as finite linear combinations.
//
// Each family implements the [Family] interface, exposing evaluation and
// exact N-th derivative evaluation:
//
//   - [Poly]: monomial basis t^i
//   - [Bezier]: Bernstein basis on the unit interval
//
// Families are sized at construction and immutable afterwards, so a single
// instance may be shared across goroutines and trajectories.
package basis
