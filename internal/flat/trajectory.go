package flat

import (
	"fmt"

	"github.com/san-kum/flatgen/internal/basis"
)

// Trajectory is a solved flat-output trajectory: one coefficient vector
// per flat output over a shared basis family, valid on [Start, End].
// Immutable and side-effect-free; safe for concurrent evaluation.
//
// Basis functions are evaluated in normalized time τ = (t-t0)/(tf-t0),
// with derivatives rescaled by the chain rule. Evaluation outside the
// horizon extrapolates the underlying polynomials.
type Trajectory struct {
	sys      *FlatSystem
	family   basis.Family
	coeffs   [][]float64
	flagLens []int
	t0, tf   float64
	params   Params
}

func (tr *Trajectory) Start() float64 { return tr.t0 }
func (tr *Trajectory) End() float64   { return tr.tf }

// Coefficients returns a copy of the per-output basis coefficients.
func (tr *Trajectory) Coefficients() [][]float64 {
	out := make([][]float64, len(tr.coeffs))
	for j := range tr.coeffs {
		out[j] = append([]float64(nil), tr.coeffs[j]...)
	}
	return out
}

// EvalAt reconstructs the state and input at a single time.
func (tr *Trajectory) EvalAt(t float64) (x, u []float64, err error) {
	flag, err := tr.flagAt(t)
	if err != nil {
		return nil, nil, err
	}
	x, u = tr.sys.Reverse(flag, tr.params)
	return x, u, nil
}

// Eval reconstructs the state and input trajectories at the given times,
// preserving the caller's ordering. Row k of each result corresponds to
// ts[k].
func (tr *Trajectory) Eval(ts []float64) (states, inputs [][]float64, err error) {
	states = make([][]float64, len(ts))
	inputs = make([][]float64, len(ts))
	for k, t := range ts {
		states[k], inputs[k], err = tr.EvalAt(t)
		if err != nil {
			return nil, nil, fmt.Errorf("evaluating trajectory at t=%g: %w", t, err)
		}
	}
	return states, inputs, nil
}

func (tr *Trajectory) flagAt(t float64) (Flag, error) {
	horizon := tr.tf - tr.t0
	tau := (t - tr.t0) / horizon

	flag := make(Flag, len(tr.coeffs))
	for j, coef := range tr.coeffs {
		flag[j] = make([]float64, tr.flagLens[j])
		scale := 1.0
		for order := 0; order < tr.flagLens[j]; order++ {
			var sum float64
			for i, c := range coef {
				v, err := tr.family.EvalDeriv(i, order, tau)
				if err != nil {
					return nil, err
				}
				sum += c * v
			}
			flag[j][order] = sum * scale
			scale /= horizon
		}
	}
	return flag, nil
}
