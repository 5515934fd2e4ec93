package integrators

import "github.com/san-kum/flatgen/internal/sim"

// Euler is the explicit first-order method. Rarely accurate enough for
// verification runs; prefer RK4 unless profiling says otherwise.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	next := make(sim.State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}
