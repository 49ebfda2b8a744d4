package controlloop

import (
	"math"
	"testing"
	"time"
)

func TestLowpassFilterFirstCallPassesThrough(t *testing.T) {
	var f lowpassFilter
	now := time.Now()
	out := f.apply([]float64{1, 2, 3}, now)
	if out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Fatalf("expected first call to pass through unchanged, got %v", out)
	}
}

func TestLowpassFilterSmoothsTowardTarget(t *testing.T) {
	var f lowpassFilter
	start := time.Now()
	f.apply([]float64{0}, start)

	out := f.apply([]float64{1}, start.Add(20*time.Millisecond))
	if out[0] <= 0 || out[0] >= 1 {
		t.Fatalf("expected smoothed value strictly between 0 and 1, got %v", out[0])
	}

	expectedAlpha := 1.0 - math.Exp(-2.0*math.Pi*lpfCutoffHz*0.020)
	if math.Abs(out[0]-expectedAlpha) > 1e-9 {
		t.Fatalf("expected %v, got %v", expectedAlpha, out[0])
	}
}

func TestLowpassFilterResetsOnLengthChange(t *testing.T) {
	var f lowpassFilter
	now := time.Now()
	f.apply([]float64{1, 2}, now)
	out := f.apply([]float64{5, 6, 7}, now.Add(10*time.Millisecond))
	if len(out) != 3 || out[0] != 5 || out[1] != 6 || out[2] != 7 {
		t.Fatalf("expected reset-and-pass-through on length change, got %v", out)
	}
}
