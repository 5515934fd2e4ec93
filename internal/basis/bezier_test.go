package basis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func linspace(a, b float64, n int) []float64 {
	ts := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range ts {
		ts[i] = a + float64(i)*step
	}
	return ts
}

func TestBezierPartitionOfUnity(t *testing.T) {
	bz := NewBezier(4)

	for _, tv := range linspace(0, 1, 100) {
		sum := 0.0
		for i := 0; i < bz.Size(); i++ {
			v, err := bz.Eval(i, tv)
			if err != nil {
				t.Fatalf("eval failed: %v", err)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-10 {
			t.Errorf("at t=%.3f: basis sum %f, expected 1", tv, sum)
		}
	}
}

func TestBezierDerivativeSumsToZero(t *testing.T) {
	bz := NewBezier(4)

	for order := 1; order <= 5; order++ {
		for _, tv := range linspace(0, 1, 50) {
			sum := 0.0
			for i := 0; i < bz.Size(); i++ {
				v, err := bz.EvalDeriv(i, order, tv)
				if err != nil {
					t.Fatalf("eval failed: %v", err)
				}
				sum += v
			}
			if math.Abs(sum) > 1e-8 {
				t.Errorf("order %d at t=%.3f: derivative sum %g, expected 0", order, tv, sum)
			}
		}
	}
}

// Closed forms for B_{1,3} and its derivatives.
func TestBezierClosedForm(t *testing.T) {
	bz := NewBezier(4)

	for _, tv := range linspace(0, 1, 100) {
		want0 := 3*tv - 6*tv*tv + 3*tv*tv*tv
		want1 := 3 - 12*tv + 9*tv*tv
		want2 := -12 + 18*tv

		got0, _ := bz.EvalDeriv(1, 0, tv)
		got1, _ := bz.EvalDeriv(1, 1, tv)
		got2, _ := bz.EvalDeriv(1, 2, tv)

		if math.Abs(got0-want0) > 1e-10 {
			t.Errorf("value at t=%.3f: got %f, want %f", tv, got0, want0)
		}
		if math.Abs(got1-want1) > 1e-10 {
			t.Errorf("first derivative at t=%.3f: got %f, want %f", tv, got1, want1)
		}
		if math.Abs(got2-want2) > 1e-10 {
			t.Errorf("second derivative at t=%.3f: got %f, want %f", tv, got2, want2)
		}
	}
}

// Each derivative order should be the finite-difference slope of the one below.
func TestBezierDerivConsistency(t *testing.T) {
	const h = 1e-6

	for n := 1; n <= 5; n++ {
		bz := NewBezier(n)
		for i := 0; i < n; i++ {
			for order := 1; order <= n; order++ {
				for _, tv := range linspace(0.1, 0.9, 9) {
					lo, _ := bz.EvalDeriv(i, order-1, tv-h)
					hi, _ := bz.EvalDeriv(i, order-1, tv+h)
					want, _ := bz.EvalDeriv(i, order, tv)
					got := (hi - lo) / (2 * h)
					if math.Abs(got-want) > 1e-3*(1+math.Abs(want)) {
						t.Errorf("family %d basis %d order %d at t=%.2f: finite diff %f, exact %f",
							n, i, order, tv, got, want)
					}
				}
			}
		}
	}
}

func TestBezierIndexRange(t *testing.T) {
	bz := NewBezier(4)

	_, err := bz.EvalDeriv(4, 0, 0.5)
	if !errors.Is(err, ErrIndexRange) {
		t.Fatalf("expected ErrIndexRange, got %v", err)
	}
	if !strings.Contains(err.Error(), "index 4 too high") {
		t.Errorf("error should name the offending index: %q", err.Error())
	}
}
