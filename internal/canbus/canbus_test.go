package canbus

import "testing"

// TestScenario5DiscoveryDedup covers spec.md Scenario 5: actuators 12, 14, 12
// respond (duplicate) -> stored list is [12, 14].
func TestScenario5DiscoveryDedup(t *testing.T) {
	got := dedupe([]uint8{12, 14, 12})
	want := []uint8{12, 14}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := dedupe(nil); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestCandidateIDsRange(t *testing.T) {
	ids := candidateIDs()
	if len(ids) != 40 {
		t.Fatalf("expected 40 candidate ids, got %d", len(ids))
	}
	if ids[0] != 10 || ids[len(ids)-1] != 49 {
		t.Fatalf("expected range [10,49], got first=%d last=%d", ids[0], ids[len(ids)-1])
	}
}
