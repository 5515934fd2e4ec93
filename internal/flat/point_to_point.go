package flat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/flatgen/internal/basis"
	"github.com/san-kum/flatgen/internal/optim"
)

// SolveOptions configures a point-to-point solve. The zero value asks for
// the cost-free exact solve with a minimally sized polynomial basis.
type SolveOptions struct {
	// Basis is the family representing each flat output. Nil selects a
	// polynomial family sized to exactly satisfy the boundary conditions.
	Basis basis.Family
	// Cost, when set, is summed over the grid time points and minimized
	// subject to the boundary conditions.
	Cost Cost
	// Constraints are broadcast over the interior grid points (or their
	// own Times sub-list) and enforced during minimization.
	Constraints []Constraint
	// Minimizer is the collaborator used on the cost/constraint path.
	// Nil selects optim.NullspacePenalty.
	Minimizer optim.Minimizer
	// Params is passed through to the flat maps.
	Params Params
	// CheckMaps runs a forward/reverse round trip on both boundary points
	// before solving and fails loudly when the maps disagree. Debug aid;
	// off by default.
	CheckMaps bool
}

// PointToPoint finds a trajectory connecting (x0, u0) at the first grid
// time to (xf, uf) at the last. timepts is either a full time grid or a
// single final time, in which case the grid is {0, Tf}. Without cost or
// constraints the basis coefficients come from an exact linear solve of
// the boundary conditions; otherwise the boundary conditions become
// equality constraints of a minimization over an enlarged basis.
func PointToPoint(sys *FlatSystem, timepts []float64, x0, u0, xf, uf []float64, opts SolveOptions) (*Trajectory, error) {
	grid, err := normalizeGrid(timepts)
	if err != nil {
		return nil, err
	}
	t0, tf := grid[0], grid[len(grid)-1]
	horizon := tf - t0

	flag0, err := sys.Forward(x0, u0, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("forward map at initial point: %w", err)
	}
	flagF, err := sys.Forward(xf, uf, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("forward map at final point: %w", err)
	}
	if len(flag0) != len(flagF) {
		return nil, fmt.Errorf("forward map returned %d flat outputs at t0 but %d at tf", len(flag0), len(flagF))
	}
	flagLens := make([]int, len(flag0))
	for j := range flag0 {
		if len(flag0[j]) != len(flagF[j]) {
			return nil, fmt.Errorf("flat output %d has %d derivatives at t0 but %d at tf",
				j, len(flag0[j]), len(flagF[j]))
		}
		flagLens[j] = len(flag0[j])
	}

	if opts.CheckMaps {
		if err := checkInverse(sys, flag0, x0, u0, opts.Params); err != nil {
			return nil, fmt.Errorf("at initial point: %w", err)
		}
		if err := checkInverse(sys, flagF, xf, uf, opts.Params); err != nil {
			return nil, fmt.Errorf("at final point: %w", err)
		}
	}

	family := opts.Basis
	if family == nil {
		maxLen := 0
		for _, l := range flagLens {
			if l > maxLen {
				maxLen = l
			}
		}
		family = basis.NewPoly(2 * maxLen)
	}

	// Boundary systems M_j·c_j = b_j, one per flat output.
	bms := make([]*mat.Dense, len(flagLens))
	rhs := make([][]float64, len(flagLens))
	for j, l := range flagLens {
		bm, err := boundaryMatrix(family, l, horizon)
		if err != nil {
			return nil, err
		}
		bms[j] = bm
		rhs[j] = append(append([]float64(nil), flag0[j]...), flagF[j]...)
	}

	var coeffs [][]float64
	if opts.Cost == nil && len(opts.Constraints) == 0 {
		coeffs, err = solveExact(family, bms, rhs, flagLens)
	} else {
		coeffs, err = solveOptimal(sys, family, bms, rhs, flagLens, grid, opts)
	}
	if err != nil {
		return nil, err
	}

	return &Trajectory{
		sys:      sys,
		family:   family,
		coeffs:   coeffs,
		flagLens: flagLens,
		t0:       t0,
		tf:       tf,
		params:   opts.Params,
	}, nil
}

func normalizeGrid(timepts []float64) ([]float64, error) {
	switch len(timepts) {
	case 0:
		return nil, fmt.Errorf("no horizon given")
	case 1:
		if timepts[0] <= 0 {
			return nil, fmt.Errorf("final time must be positive, got %g", timepts[0])
		}
		return []float64{0, timepts[0]}, nil
	}
	for k := 0; k+1 < len(timepts); k++ {
		if timepts[k+1] <= timepts[k] {
			return nil, fmt.Errorf("time grid must be strictly increasing at index %d", k+1)
		}
	}
	return timepts, nil
}

// boundaryMatrix maps basis coefficients to the stacked flag derivatives
// at both ends of the horizon: rows are orders 0..flagLen-1 at τ=0
// followed by the same orders at τ=1, each scaled by the chain-rule
// factor horizon^-order.
func boundaryMatrix(family basis.Family, flagLen int, horizon float64) (*mat.Dense, error) {
	n := family.Size()
	m := mat.NewDense(2*flagLen, n, nil)
	for _, end := range []struct {
		tau    float64
		offset int
	}{{0, 0}, {1, flagLen}} {
		scale := 1.0
		for order := 0; order < flagLen; order++ {
			for i := 0; i < n; i++ {
				v, err := family.EvalDeriv(i, order, end.tau)
				if err != nil {
					return nil, err
				}
				m.Set(end.offset+order, i, v*scale)
			}
			scale /= horizon
		}
	}
	return m, nil
}

// solveExact handles the cost-free, unconstrained path: each flat
// output's boundary system must be exactly determined.
func solveExact(family basis.Family, bms []*mat.Dense, rhs [][]float64, flagLens []int) ([][]float64, error) {
	n := family.Size()
	coeffs := make([][]float64, len(flagLens))
	for j, l := range flagLens {
		if n != 2*l {
			return nil, fmt.Errorf("%w: basis has %d functions, flat output %d needs exactly %d boundary conditions",
				ErrBasisSize, n, j, 2*l)
		}
		var c mat.VecDense
		if err := c.SolveVec(bms[j], mat.NewVecDense(len(rhs[j]), rhs[j])); err != nil {
			return nil, fmt.Errorf("boundary system for flat output %d is singular: %v", j, err)
		}
		coeffs[j] = vecData(&c)
	}
	return coeffs, nil
}

// solveOptimal handles the cost/constraint path: boundary conditions
// become linear equality constraints on the full coefficient vector, the
// cost and constraints are composed with the reverse map over the grid,
// and the result comes from the minimizer collaborator.
func solveOptimal(sys *FlatSystem, family basis.Family, bms []*mat.Dense, rhs [][]float64, flagLens []int, grid []float64, opts SolveOptions) ([][]float64, error) {
	n := family.Size()
	nout := len(flagLens)
	dim := n * nout

	for j, l := range flagLens {
		if n < 2*l {
			return nil, fmt.Errorf("%w: basis has %d functions, flat output %d needs at least %d",
				ErrBasisSize, n, j, 2*l)
		}
	}

	// Stack per-output boundary systems block-diagonally.
	eqRows := 0
	for j := range bms {
		r, _ := bms[j].Dims()
		eqRows += r
	}
	eqA := mat.NewDense(eqRows, dim, nil)
	eqb := make([]float64, 0, eqRows)
	guess := make([]float64, 0, dim)
	row := 0
	for j := range bms {
		r, _ := bms[j].Dims()
		for i := 0; i < r; i++ {
			for k := 0; k < n; k++ {
				eqA.Set(row+i, j*n+k, bms[j].At(i, k))
			}
		}
		row += r
		eqb = append(eqb, rhs[j]...)

		// Minimal-norm fit of the boundary system seeds the search; for a
		// minimally sized basis this is the exact solve.
		cj, err := minNormSolve(bms[j], rhs[j])
		if err != nil {
			return nil, fmt.Errorf("initial guess for flat output %d: %w", j, err)
		}
		guess = append(guess, cj...)
	}

	tab, err := flagTables(family, flagLens, grid)
	if err != nil {
		return nil, err
	}
	point := func(c []float64, k int) (x, u []float64) {
		flag := make(Flag, nout)
		for j := range flag {
			flag[j] = make([]float64, flagLens[j])
			for order := range flag[j] {
				var sum float64
				for i := 0; i < n; i++ {
					sum += c[j*n+i] * tab[k][j][order][i]
				}
				flag[j][order] = sum
			}
		}
		return sys.Reverse(flag, opts.Params)
	}

	objective := func(c []float64) float64 { return 0 }
	if opts.Cost != nil {
		objective = func(c []float64) float64 {
			var total float64
			for k := range grid {
				x, u := point(c, k)
				total += opts.Cost(x, u)
			}
			return total
		}
	}

	ineqs, err := composeConstraints(sys, opts.Constraints, grid, point)
	if err != nil {
		return nil, err
	}

	minimizer := opts.Minimizer
	if minimizer == nil {
		minimizer = &optim.NullspacePenalty{}
	}
	res, err := minimizer.Minimize(optim.Problem{
		Objective: objective,
		EqA:       eqA,
		Eqb:       eqb,
		Ineqs:     ineqs,
		Initial:   guess,
	})
	if err != nil {
		return nil, fmt.Errorf("trajectory optimization failed: %w", err)
	}
	if !res.Converged {
		return nil, &ConvergenceError{Status: res.Status}
	}

	coeffs := make([][]float64, nout)
	for j := range coeffs {
		coeffs[j] = append([]float64(nil), res.X[j*n:(j+1)*n]...)
	}
	return coeffs, nil
}

// flagTables precomputes, for every grid point and flat output, the basis
// derivative rows in real time (chain rule applied), so composed cost and
// constraint evaluations reduce to dot products.
func flagTables(family basis.Family, flagLens []int, grid []float64) ([][][][]float64, error) {
	n := family.Size()
	t0 := grid[0]
	horizon := grid[len(grid)-1] - t0

	tab := make([][][][]float64, len(grid))
	for k, t := range grid {
		tau := (t - t0) / horizon
		tab[k] = make([][][]float64, len(flagLens))
		for j, l := range flagLens {
			tab[k][j] = make([][]float64, l)
			scale := 1.0
			for order := 0; order < l; order++ {
				rowv := make([]float64, n)
				for i := 0; i < n; i++ {
					v, err := family.EvalDeriv(i, order, tau)
					if err != nil {
						return nil, err
					}
					rowv[i] = v * scale
				}
				tab[k][j][order] = rowv
				scale /= horizon
			}
		}
	}
	return tab, nil
}

func composeConstraints(sys *FlatSystem, constraints []Constraint, grid []float64, point func(c []float64, k int) (x, u []float64)) ([]optim.Inequality, error) {
	if len(constraints) == 0 {
		return nil, nil
	}

	interior := make([]int, 0, len(grid))
	for k := 1; k+1 < len(grid); k++ {
		interior = append(interior, k)
	}

	ineqs := make([]optim.Inequality, 0, len(constraints))
	for ci, con := range constraints {
		r, err := con.rows(sys.NumStates(), sys.NumInputs())
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", ci, err)
		}

		pts := con.timeIndices()
		if len(pts) == 0 {
			pts = interior
		}
		if len(pts) == 0 {
			return nil, fmt.Errorf("%w: constraint %d has no grid points to apply at (grid has no interior points)",
				ErrBadConstraint, ci)
		}
		for _, k := range pts {
			if k < 0 || k >= len(grid) {
				return nil, fmt.Errorf("%w: constraint %d references grid index %d, grid has %d points",
					ErrBadConstraint, ci, k, len(grid))
			}
		}

		lb, ub := con.bounds()
		fullLb := make([]float64, 0, r*len(pts))
		fullUb := make([]float64, 0, r*len(pts))
		for range pts {
			fullLb = append(fullLb, lb...)
			fullUb = append(fullUb, ub...)
		}

		ineqs = append(ineqs, optim.Inequality{
			F: func(c []float64) []float64 {
				out := make([]float64, 0, r*len(pts))
				buf := make([]float64, r)
				for _, k := range pts {
					x, u := point(c, k)
					con.eval(x, u, buf)
					out = append(out, buf...)
				}
				return out
			},
			Lb: fullLb,
			Ub: fullUb,
		})
	}
	return ineqs, nil
}

// minNormSolve returns the minimum-norm least-squares solution of M·c = b.
func minNormSolve(m *mat.Dense, b []float64) ([]float64, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return nil, fmt.Errorf("SVD factorization failed")
	}
	vals := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	_, cols := m.Dims()
	out := make([]float64, cols)
	cutoff := 1e-12
	if len(vals) > 0 {
		cutoff = math.Max(cutoff, vals[0]*1e-12)
	}
	for k, s := range vals {
		if s <= cutoff {
			continue
		}
		var proj float64
		for i := range b {
			proj += u.At(i, k) * b[i]
		}
		proj /= s
		for i := 0; i < cols; i++ {
			out[i] += v.At(i, k) * proj
		}
	}
	return out, nil
}

func checkInverse(sys *FlatSystem, flag Flag, x, u []float64, p Params) error {
	rx, ru := sys.Reverse(flag, p)
	const tol = 1e-6
	for i := range x {
		if math.Abs(rx[i]-x[i]) > tol*(1+math.Abs(x[i])) {
			return fmt.Errorf("forward/reverse maps are not inverses: state %d round-trips %g to %g", i, x[i], rx[i])
		}
	}
	for i := range u {
		if math.Abs(ru[i]-u[i]) > tol*(1+math.Abs(u[i])) {
			return fmt.Errorf("forward/reverse maps are not inverses: input %d round-trips %g to %g", i, u[i], ru[i])
		}
	}
	return nil
}
