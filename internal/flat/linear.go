package flat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StateSpace is a minimal LTI realization dx/dt = A·x + B·u, y = C·x + D·u.
// C and D may be nil, in which case the output is the full state.
type StateSpace struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
	D *mat.Dense
}

func NewStateSpace(a, b, c, d *mat.Dense) (*StateSpace, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("state space needs A and B matrices")
	}
	n, cols := a.Dims()
	if n != cols {
		return nil, fmt.Errorf("A must be square, got %dx%d", n, cols)
	}
	br, _ := b.Dims()
	if br != n {
		return nil, fmt.Errorf("B has %d rows, A is %dx%d", br, n, n)
	}
	if c != nil {
		_, cc := c.Dims()
		if cc != n {
			return nil, fmt.Errorf("C has %d columns, A is %dx%d", cc, n, n)
		}
	}
	return &StateSpace{A: a, B: b, C: c, D: d}, nil
}

// NewLinearFlatSystem derives the forward and reverse flat maps of a
// single-input controllable LTI realization. The flat output is z = c·x
// with c the last row of the inverse controllability matrix, so that
//
//	z⁽ⁱ⁾ = c·Aⁱ·x        for i < n
//	z⁽ⁿ⁾ = c·Aⁿ·x + u
//
// and the reverse map inverts the stacked observability-style rows. A
// multi-input B or a singular controllability matrix is rejected.
func NewLinearFlatSystem(ss *StateSpace) (*FlatSystem, error) {
	n, _ := ss.A.Dims()
	if _, bu := ss.B.Dims(); bu != 1 {
		return nil, fmt.Errorf("linear flat system requires a single input, B has %d columns", bu)
	}

	// Controllability matrix W = [B AB ... A^(n-1)B].
	w := mat.NewDense(n, n, nil)
	col := mat.NewVecDense(n, nil)
	col.CopyVec(ss.B.ColView(0))
	for j := 0; j < n; j++ {
		w.SetCol(j, vecData(col))
		next := mat.NewVecDense(n, nil)
		next.MulVec(ss.A, col)
		col = next
	}

	var winv mat.Dense
	if err := winv.Inverse(w); err != nil {
		return nil, fmt.Errorf("realization is not controllable: %v", err)
	}

	// c = last row of W⁻¹; rows of T are c·Aⁱ.
	c := mat.NewVecDense(n, nil)
	for j := 0; j < n; j++ {
		c.SetVec(j, winv.At(n-1, j))
	}

	tmat := mat.NewDense(n, n, nil)
	row := mat.NewVecDense(n, nil)
	row.CopyVec(c)
	for i := 0; i < n; i++ {
		tmat.SetRow(i, vecData(row))
		next := mat.NewVecDense(n, nil)
		next.MulVec(ss.A.T(), row)
		row = next
	}
	cAn := vecData(row) // c·Aⁿ, the row after the last one stored in T

	var tinv mat.Dense
	if err := tinv.Inverse(tmat); err != nil {
		return nil, fmt.Errorf("flat output transformation is singular: %v", err)
	}

	forward := func(x, u []float64, p Params) Flag {
		z := make([]float64, n+1)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				z[i] += tmat.At(i, j) * x[j]
			}
		}
		z[n] = u[0]
		for j := 0; j < n; j++ {
			z[n] += cAn[j] * x[j]
		}
		return Flag{z}
	}

	reverse := func(flag Flag, p Params) ([]float64, []float64) {
		x := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				x[i] += tinv.At(i, j) * flag[0][j]
			}
		}
		u := flag[0][n]
		for j := 0; j < n; j++ {
			u -= cAn[j] * x[j]
		}
		return x, []float64{u}
	}

	update := func(t float64, x, u []float64, p Params) []float64 {
		dx := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				dx[i] += ss.A.At(i, j) * x[j]
			}
			dx[i] += ss.B.At(i, 0) * u[0]
		}
		return dx
	}

	var output OutputFunc
	outputs := make([]string, 0)
	if ss.C != nil {
		ny, _ := ss.C.Dims()
		output = func(t float64, x, u []float64, p Params) []float64 {
			y := make([]float64, ny)
			for i := 0; i < ny; i++ {
				for j := 0; j < n; j++ {
					y[i] += ss.C.At(i, j) * x[j]
				}
				if ss.D != nil {
					y[i] += ss.D.At(i, 0) * u[0]
				}
			}
			return y
		}
		for i := 0; i < ny; i++ {
			outputs = append(outputs, fmt.Sprintf("y%d", i))
		}
	}

	states := make([]string, n)
	for i := range states {
		states[i] = fmt.Sprintf("x%d", i)
	}

	return NewFlatSystem(forward, reverse, SystemConfig{
		States:  states,
		Inputs:  []string{"u0"},
		Outputs: outputs,
		Update:  update,
		Output:  output,
	})
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
