// Package models provides the flat systems shipped with the CLI: a
// kinematic car and a double integrator. Both are standard examples of
// differential flatness; users of the library supply their own maps the
// same way.
package models

import (
	"math"

	"github.com/san-kum/flatgen/internal/flat"
)

const DefaultWheelbase = 3.0

// Vehicle builds the kinematic (bicycle) car
//
//	dx/dt = v cos θ, dy/dt = v sin θ, dθ/dt = (v/b) tan δ
//
// with state (x, y, θ) and input (v, δ). Its flat outputs are the planar
// position; heading and both inputs are recovered from the position
// derivatives. The wheelbase b comes from the "wheelbase" parameter.
func Vehicle() (*flat.FlatSystem, error) {
	forward := func(x, u []float64, p flat.Params) flat.Flag {
		b := p.Get("wheelbase", DefaultWheelbase)
		flag := flat.Flag{make([]float64, 3), make([]float64, 3)}
		flag[0][0] = x[0]
		flag[1][0] = x[1]
		flag[0][1] = u[0] * math.Cos(x[2])
		flag[1][1] = u[0] * math.Sin(x[2])
		thdot := u[0] / b * math.Tan(u[1])
		flag[0][2] = -u[0] * thdot * math.Sin(x[2])
		flag[1][2] = u[0] * thdot * math.Cos(x[2])
		return flag
	}

	reverse := func(flag flat.Flag, p flat.Params) ([]float64, []float64) {
		b := p.Get("wheelbase", DefaultWheelbase)
		x := make([]float64, 3)
		u := make([]float64, 2)
		x[0] = flag[0][0]
		x[1] = flag[1][0]
		x[2] = math.Atan2(flag[1][1], flag[0][1])
		u[0] = flag[0][1]*math.Cos(x[2]) + flag[1][1]*math.Sin(x[2])
		thdotV := flag[1][2]*math.Cos(x[2]) - flag[0][2]*math.Sin(x[2])
		u[1] = math.Atan2(thdotV, u[0]*u[0]/b)
		return x, u
	}

	update := func(t float64, x, u []float64, p flat.Params) []float64 {
		b := p.Get("wheelbase", DefaultWheelbase)
		return []float64{
			math.Cos(x[2]) * u[0],
			math.Sin(x[2]) * u[0],
			u[0] / b * math.Tan(u[1]),
		}
	}

	return flat.NewFlatSystem(forward, reverse, flat.SystemConfig{
		States:  []string{"x", "y", "theta"},
		Inputs:  []string{"v", "delta"},
		Outputs: []string{"x", "y", "theta"},
		Update:  update,
		Output: func(t float64, x, u []float64, p flat.Params) []float64 {
			return append([]float64(nil), x...)
		},
	})
}
