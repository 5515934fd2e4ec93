// Package metrics provides summary reductions over solved trajectories,
// used by the CLI report.
package metrics

import "math"

// ControlEffort is the mean absolute input magnitude over the samples.
func ControlEffort(inputs [][]float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	var sum float64
	var count int
	for _, u := range inputs {
		for _, v := range u {
			sum += math.Abs(v)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// PathLength is the total Euclidean distance traveled by the first two
// state components, the planar position for vehicle-like systems. States
// with fewer than two components use all of them.
func PathLength(states [][]float64) float64 {
	var total float64
	for k := 1; k < len(states); k++ {
		dims := len(states[k])
		if dims > 2 {
			dims = 2
		}
		var sq float64
		for i := 0; i < dims; i++ {
			d := states[k][i] - states[k-1][i]
			sq += d * d
		}
		total += math.Sqrt(sq)
	}
	return total
}

// MaxDeviation is the largest absolute difference between two sampled
// curves of equal shape, e.g. a generated state trajectory and its
// simulated verification.
func MaxDeviation(a, b [][]float64) float64 {
	var worst float64
	for k := range a {
		if k >= len(b) {
			break
		}
		for i := range a[k] {
			if i >= len(b[k]) {
				break
			}
			if d := math.Abs(a[k][i] - b[k][i]); d > worst {
				worst = d
			}
		}
	}
	return worst
}
