package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/flatgen/internal/flat"
)

// DoubleIntegrator builds the damped second-order linear system
//
//	dx/dt = [[-1, 1], [0, -2]]·x + [[0], [1]]·u,  y = [1, 0]·x
//
// through the linear flat system specialization.
func DoubleIntegrator() (*flat.FlatSystem, error) {
	ss, err := flat.NewStateSpace(
		mat.NewDense(2, 2, []float64{-1, 1, 0, -2}),
		mat.NewDense(2, 1, []float64{0, 1}),
		mat.NewDense(1, 2, []float64{1, 0}),
		nil,
	)
	if err != nil {
		return nil, err
	}
	return flat.NewLinearFlatSystem(ss)
}

// ByName maps CLI system names to constructors.
func ByName(name string) (*flat.FlatSystem, bool) {
	switch name {
	case "double_integrator":
		sys, err := DoubleIntegrator()
		if err != nil {
			return nil, false
		}
		return sys, true
	case "vehicle":
		sys, err := Vehicle()
		if err != nil {
			return nil, false
		}
		return sys, true
	}
	return nil, false
}
