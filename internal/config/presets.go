package config

// Presets are ready-made scenarios selectable by name from the CLI.
var Presets = map[string]*Config{
	"step": {
		System:     "double_integrator",
		Horizon:    2.0,
		GridPoints: 2,
		Basis:      BasisConfig{Type: "poly", Size: 6},
		Initial:    BoundaryConfig{State: []float64{0, 0}, Input: []float64{0}},
		Final:      BoundaryConfig{State: []float64{1, 0}, Input: []float64{0}},
	},
	"lane_change": {
		System:     "vehicle",
		Horizon:    10.0,
		GridPoints: 2,
		Basis:      BasisConfig{Type: "poly", Size: 6},
		Initial:    BoundaryConfig{State: []float64{0, -2, 0}, Input: []float64{10, 0}},
		Final:      BoundaryConfig{State: []float64{100, 2, 0}, Input: []float64{10, 0}},
	},
	"lane_change_smooth": {
		System:     "vehicle",
		Horizon:    10.0,
		GridPoints: 10,
		Basis:      BasisConfig{Type: "poly", Size: 8},
		Initial:    BoundaryConfig{State: []float64{0, -2, 0}, Input: []float64{10, 0}},
		Final:      BoundaryConfig{State: []float64{100, 2, 0}, Input: []float64{10, 0}},
		Cost: &CostConfig{
			StateWeights: []float64{0, 0.1, 0},
			InputWeights: []float64{0.1, 1},
		},
	},
	"lane_change_bounded": {
		System:     "vehicle",
		Horizon:    10.0,
		GridPoints: 10,
		Basis:      BasisConfig{Type: "poly", Size: 8},
		Initial:    BoundaryConfig{State: []float64{0, -2, 0}, Input: []float64{10, 0}},
		Final:      BoundaryConfig{State: []float64{100, 2, 0}, Input: []float64{10, 0}},
		Cost: &CostConfig{
			StateWeights: []float64{0, 0.1, 0},
			InputWeights: []float64{0.1, 1},
		},
		Bounds: []BoundConfig{
			{Row: []float64{0, 1, 0, 0, 0}, Lower: -2.6, Upper: 2.6},
		},
	},
}
