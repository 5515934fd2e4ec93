package flat

import "gonum.org/v1/gonum/mat"

// Cost scores a (state, input) pair. The solver sums the cost over the
// grid time points after composing it with the reverse flat map, so the
// function itself never sees basis coefficients.
type Cost func(x, u []float64) float64

// QuadraticCost builds the standard weighted deviation penalty
//
//	(x-xref)ᵀ Q (x-xref) + (u-uref)ᵀ R (u-uref)
//
// Either weighting matrix may be nil to drop its term.
func QuadraticCost(q, r *mat.Dense, xref, uref []float64) Cost {
	return func(x, u []float64) float64 {
		var total float64
		if q != nil {
			total += quadForm(q, x, xref)
		}
		if r != nil {
			total += quadForm(r, u, uref)
		}
		return total
	}
}

func quadForm(w *mat.Dense, v, ref []float64) float64 {
	var total float64
	for i := range v {
		di := v[i]
		if ref != nil {
			di -= ref[i]
		}
		for j := range v {
			dj := v[j]
			if ref != nil {
				dj -= ref[j]
			}
			total += di * w.At(i, j) * dj
		}
	}
	return total
}
