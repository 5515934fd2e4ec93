package basis

import "math"

// Poly is the monomial family: basis function i is t^i.
type Poly struct {
	size int
}

// NewPoly returns a monomial family with n basis functions, 1, t, ..., t^(n-1).
func NewPoly(n int) *Poly {
	return &Poly{size: n}
}

func (p *Poly) Size() int {
	return p.size
}

func (p *Poly) Eval(i int, t float64) (float64, error) {
	if err := checkIndex(i, p.size); err != nil {
		return 0, err
	}
	return math.Pow(t, float64(i)), nil
}

func (p *Poly) EvalDeriv(i, order int, t float64) (float64, error) {
	if err := checkIndex(i, p.size); err != nil {
		return 0, err
	}
	if err := checkOrder(order); err != nil {
		return 0, err
	}
	if order > i {
		return 0, nil
	}
	// Power rule: d^k/dt^k t^i = i!/(i-k)! t^(i-k)
	coef := 1.0
	for k := i - order + 1; k <= i; k++ {
		coef *= float64(k)
	}
	return coef * math.Pow(t, float64(i-order)), nil
}
