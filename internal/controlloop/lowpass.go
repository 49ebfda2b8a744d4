package controlloop

import (
	"math"
	"time"
)

// lpfCutoffHz matches the reference firmware's fixed low-pass cutoff
// applied to the policy's raw action before it becomes a PD target.
const lpfCutoffHz = 10.0

// lowpassFilter is a first-order exponential low-pass filter over an
// action vector, matching original_source/firmware/lpf.py's
// apply_lowpass_filter: the smoothing factor is derived from the elapsed
// time since the previous call rather than a fixed per-tick constant, so
// an occasional slow tick doesn't under-smooth the next one.
type lowpassFilter struct {
	prev []float64
	last time.Time
}

// apply returns the filtered action and updates internal state. The first
// call for a given action length passes the action through unchanged and
// seeds the filter state, matching the reference's lpf_carry == None case.
func (f *lowpassFilter) apply(action []float64, now time.Time) []float64 {
	if f.prev == nil || len(f.prev) != len(action) {
		f.prev = append([]float64(nil), action...)
		f.last = now
		return f.prev
	}

	dt := now.Sub(f.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	f.last = now

	alpha := 1.0 - math.Exp(-2.0*math.Pi*lpfCutoffHz*dt)
	out := make([]float64, len(action))
	for i := range action {
		out[i] = f.prev[i] + alpha*(action[i]-f.prev[i])
	}
	f.prev = out
	return out
}
