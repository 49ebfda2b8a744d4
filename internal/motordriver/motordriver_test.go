package motordriver

import (
	"errors"
	"math"
	"testing"

	"github.com/kscalelabs/kmotor/internal/faults"
)

func TestLogRampScaleMonotonicAndBounded(t *testing.T) {
	prev := -1.0
	for i := 0; i < rampSteps; i++ {
		s := logRampScale(i)
		if s <= 0 || s > 1.0001 {
			t.Fatalf("step %d: scale %v out of (0, 1]", i, s)
		}
		if s <= prev {
			t.Fatalf("step %d: expected strictly increasing scale, got %v after %v", i, s, prev)
		}
		prev = s
	}
}

func TestLogRampScaleEndpoints(t *testing.T) {
	if got := logRampScale(0); math.Abs(got-0.001) > 1e-9 {
		t.Errorf("expected first step ~0.001, got %v", got)
	}
	if got := logRampScale(rampSteps - 1); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected last step ~1.0, got %v", got)
	}
}

func TestIsCriticalDetectsCriticalFault(t *testing.T) {
	cf := &faults.CriticalFault{ActuatorID: 11, Description: "over-temperature"}
	if !isCritical(cf) {
		t.Fatal("expected CriticalFault to be detected as critical")
	}
	if isCritical(errors.New("plain error")) {
		t.Fatal("expected plain error to not be detected as critical")
	}
	if isCritical(nil) {
		t.Fatal("expected nil to not be detected as critical")
	}
}
