package sim

import (
	"context"
	"fmt"
)

// Config controls a forced-response integration.
type Config struct {
	// Substeps is the number of integrator steps taken between adjacent
	// grid times. Zero means DefaultSubsteps.
	Substeps int
	// ValidateState aborts the run when a state goes NaN/Inf.
	ValidateState bool
}

const DefaultSubsteps = 10

// ForcedResponse integrates dyn forward from x0 under the sampled input
// trajectory inputs, which holds one input vector per entry of times. The
// input is linearly interpolated between grid samples. The returned
// response is sampled exactly on the caller's grid, in the caller's order.
func ForcedResponse(ctx context.Context, dyn Dynamics, integ Integrator, times []float64, inputs []Control, x0 State, cfg Config) (*Response, error) {
	if err := validateGrid(dyn, times, inputs, x0); err != nil {
		return nil, err
	}
	substeps := cfg.Substeps
	if substeps <= 0 {
		substeps = DefaultSubsteps
	}

	resp := &Response{
		Times:   make([]float64, 0, len(times)),
		States:  make([]State, 0, len(times)),
		Outputs: make([][]float64, 0, len(times)),
	}

	x := x0.Clone()
	resp.record(dyn, times[0], x, inputs[0])

	for k := 0; k+1 < len(times); k++ {
		select {
		case <-ctx.Done():
			return resp, ctx.Err()
		default:
		}

		t0, t1 := times[k], times[k+1]
		dt := (t1 - t0) / float64(substeps)
		t := t0
		for s := 0; s < substeps; s++ {
			u := interpInput(inputs[k], inputs[k+1], t0, t1, t)
			x = integ.Step(dyn, x, u, t, dt)
			t += dt
		}

		if cfg.ValidateState && !x.IsValid() {
			return nil, fmt.Errorf("state diverged (NaN/Inf) at t=%.4f", t1)
		}
		resp.record(dyn, t1, x, inputs[k+1])
	}

	return resp, nil
}

func (r *Response) record(dyn Dynamics, t float64, x State, u Control) {
	r.Times = append(r.Times, t)
	r.States = append(r.States, x.Clone())
	if out, ok := dyn.(Outputter); ok {
		r.Outputs = append(r.Outputs, out.Output(x, u, t))
	}
}

func validateGrid(dyn Dynamics, times []float64, inputs []Control, x0 State) error {
	if len(times) < 2 {
		return fmt.Errorf("need at least 2 time points, got %d", len(times))
	}
	if len(inputs) != len(times) {
		return fmt.Errorf("input count %d does not match time count %d", len(inputs), len(times))
	}
	for k := 0; k+1 < len(times); k++ {
		if times[k+1] <= times[k] {
			return fmt.Errorf("time grid must be strictly increasing at index %d", k+1)
		}
	}
	if len(x0) != dyn.StateDim() {
		return fmt.Errorf("initial state dimension %d, system expects %d", len(x0), dyn.StateDim())
	}
	for k, u := range inputs {
		if len(u) != dyn.ControlDim() {
			return fmt.Errorf("input %d has dimension %d, system expects %d", k, len(u), dyn.ControlDim())
		}
	}
	return nil
}

func interpInput(u0, u1 Control, t0, t1, t float64) Control {
	w := (t - t0) / (t1 - t0)
	u := make(Control, len(u0))
	for i := range u {
		u[i] = u0[i] + w*(u1[i]-u0[i])
	}
	return u
}
