package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// NullspacePenalty is the default minimizer. Linear equality constraints
// are eliminated exactly: the decision vector is written as x = xp + N·z
// with xp a particular solution and N an orthonormal nullspace basis of
// the equality system, both obtained from an SVD. The reduced problem in z
// is unconstrained except for inequality penalties, which are driven down
// over a fixed number of weight-growth rounds of Nelder-Mead.
//
// The zero value is ready to use with reasonable defaults.
type NullspacePenalty struct {
	// Weight is the starting inequality penalty weight (default 100).
	Weight float64
	// Growth multiplies the weight after each round (default 10).
	Growth float64
	// Rounds is the number of penalty rounds (default 6).
	Rounds int
	// Tol is the largest acceptable single bound violation (default 1e-4).
	Tol float64
	// MaxEvals bounds objective evaluations per round (default 20000).
	MaxEvals int
}

func (m *NullspacePenalty) Minimize(p Problem) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	weight := m.Weight
	if weight <= 0 {
		weight = 100
	}
	growth := m.Growth
	if growth <= 1 {
		growth = 10
	}
	rounds := m.Rounds
	if rounds <= 0 {
		rounds = 6
	}
	tol := m.Tol
	if tol <= 0 {
		tol = 1e-4
	}
	maxEvals := m.MaxEvals
	if maxEvals <= 0 {
		maxEvals = 20000
	}

	xp, ns, err := eliminateEqualities(p)
	if err != nil {
		return nil, err
	}

	// Fully determined by the equality constraints: nothing to optimize.
	if ns == nil {
		_, worst := p.violation(xp)
		return &Result{
			X:         xp,
			Value:     p.Objective(xp),
			Status:    "equality constraints determine the solution",
			Converged: worst <= tol,
		}, nil
	}

	_, free := ns.Dims()
	expand := func(z []float64) []float64 {
		x := make([]float64, len(xp))
		copy(x, xp)
		for i := range x {
			for j := 0; j < free; j++ {
				x[i] += ns.At(i, j) * z[j]
			}
		}
		return x
	}

	// Start from the caller's guess projected onto the feasible subspace.
	z := make([]float64, free)
	for j := 0; j < free; j++ {
		for i := range p.Initial {
			z[j] += ns.At(i, j) * (p.Initial[i] - xp[i])
		}
	}

	var status string
	for round := 0; round < rounds; round++ {
		w := weight
		inner := optimize.Problem{
			Func: func(zv []float64) float64 {
				x := expand(zv)
				f := p.Objective(x)
				sq, _ := p.violation(x)
				return f + w*sq
			},
		}
		settings := &optimize.Settings{
			FuncEvaluations: maxEvals,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Iterations: 250,
			},
		}

		res, err := optimize.Minimize(inner, z, settings, &optimize.NelderMead{})
		if res == nil {
			return nil, fmt.Errorf("inner minimization failed: %w", err)
		}
		copy(z, res.X)
		status = res.Status.String()

		x := expand(z)
		if _, worst := p.violation(x); worst <= tol {
			return &Result{
				X:         x,
				Value:     p.Objective(x),
				Status:    status,
				Converged: err == nil,
			}, nil
		}
		weight *= growth
	}

	x := expand(z)
	_, worst := p.violation(x)
	return &Result{
		X:         x,
		Value:     p.Objective(x),
		Status:    fmt.Sprintf("%s; constraint violation %.3g above tolerance %.3g", status, worst, tol),
		Converged: false,
	}, nil
}

// eliminateEqualities returns a particular solution of EqA·x = Eqb and an
// orthonormal basis of the constraint nullspace. A nil basis means the
// equalities pin down x completely. Without equality constraints the
// particular solution is zero and the basis is the identity.
func eliminateEqualities(p Problem) (xp []float64, ns *mat.Dense, err error) {
	n := len(p.Initial)
	if p.EqA == nil {
		xp = make([]float64, n)
		ns = mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			ns.Set(i, i, 1)
		}
		return xp, ns, nil
	}

	var svd mat.SVD
	if !svd.Factorize(p.EqA, mat.SVDFullV|mat.SVDThinU) {
		return nil, nil, fmt.Errorf("SVD of equality constraint matrix failed")
	}

	vals := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	rank := 0
	cutoff := 1e-12
	if len(vals) > 0 {
		cutoff = math.Max(cutoff, vals[0]*1e-12)
	}
	for _, s := range vals {
		if s > cutoff {
			rank++
		}
	}

	// Minimal-norm particular solution: V Σ⁻¹ Uᵀ b over the leading rank.
	xp = make([]float64, n)
	for k := 0; k < rank; k++ {
		var proj float64
		for i := range p.Eqb {
			proj += u.At(i, k) * p.Eqb[i]
		}
		proj /= vals[k]
		for i := 0; i < n; i++ {
			xp[i] += v.At(i, k) * proj
		}
	}

	// Inconsistent systems leave a residual the nullspace cannot remove.
	for i := range p.Eqb {
		var got float64
		for jj := 0; jj < n; jj++ {
			got += p.EqA.At(i, jj) * xp[jj]
		}
		if math.Abs(got-p.Eqb[i]) > 1e-8*(1+math.Abs(p.Eqb[i])) {
			return nil, nil, fmt.Errorf("equality constraints are inconsistent (row %d residual %.3g)", i, got-p.Eqb[i])
		}
	}

	if rank == n {
		return xp, nil, nil
	}

	basis := mat.NewDense(n, n-rank, nil)
	for j := rank; j < n; j++ {
		for i := 0; i < n; i++ {
			basis.Set(i, j-rank, v.At(i, j))
		}
	}
	return xp, basis, nil
}
