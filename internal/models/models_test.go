package models

import (
	"math"
	"testing"

	"github.com/san-kum/flatgen/internal/flat"
)

func TestVehicleRoundTrip(t *testing.T) {
	sys, err := Vehicle()
	if err != nil {
		t.Fatalf("vehicle: %v", err)
	}

	tests := []struct {
		name string
		x    []float64
		u    []float64
	}{
		{"straight", []float64{0, 0, 0}, []float64{10, 0}},
		{"heading", []float64{5, -2, 0.3}, []float64{8, 0}},
		{"turning", []float64{1, 1, -0.5}, []float64{12, 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag, err := sys.Forward(tt.x, tt.u, nil)
			if err != nil {
				t.Fatalf("forward: %v", err)
			}
			x, u := sys.Reverse(flag, nil)
			for i := range tt.x {
				if math.Abs(x[i]-tt.x[i]) > 1e-9 {
					t.Errorf("state %d: round trip %f to %f", i, tt.x[i], x[i])
				}
			}
			for i := range tt.u {
				if math.Abs(u[i]-tt.u[i]) > 1e-9 {
					t.Errorf("input %d: round trip %f to %f", i, tt.u[i], u[i])
				}
			}
		})
	}
}

func TestVehicleWheelbaseParam(t *testing.T) {
	sys, err := Vehicle()
	if err != nil {
		t.Fatalf("vehicle: %v", err)
	}

	x := []float64{0, 0, 0}
	u := []float64{10, 0.2}

	wide, err := sys.Forward(x, u, flat.Params{"wheelbase": 6})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	narrow, err := sys.Forward(x, u, flat.Params{"wheelbase": 3})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	// Doubling the wheelbase halves the turn rate, and with it the
	// second derivative of the lateral flat output.
	if math.Abs(wide[1][2]*2-narrow[1][2]) > 1e-9 {
		t.Errorf("wheelbase scaling wrong: %f vs %f", wide[1][2], narrow[1][2])
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"double_integrator", "vehicle"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("expected system %q", name)
		}
	}
	if _, ok := ByName("warp_drive"); ok {
		t.Error("unexpected system")
	}
}
