package canbus

import (
	"fmt"

	"github.com/kscalelabs/kmotor/internal/canframe"
)

// candidateIDs is the range of actuator identifiers probed during discovery,
// [10, 50), matching the reference firmware's actuator_range.
func candidateIDs() []uint8 {
	ids := make([]uint8, 0, 40)
	for id := 10; id < 50; id++ {
		ids = append(ids, uint8(id))
	}
	return ids
}

// Ping sends one ping frame to actuatorID and waits for any reply. It
// returns true only if a non-absent frame with mux == MuxPing is returned
// before the bus times out.
func (b *Interface) Ping(actuatorID uint8) bool {
	if err := b.send(canframe.BuildPing(actuatorID)); err != nil {
		return false
	}
	r, err := b.receiveExpect(canframe.MuxPing, nil)
	if err != nil || r.Absent {
		return false
	}
	return true
}

// Discover first sends a broadcast-style ping (identifier 0). If that
// initial send fails, the bus is declared absent: the caller must discard
// the socket. Otherwise Discover pings every candidate identifier once and
// records the actuators that respond, deduplicated in discovery order. See
// spec.md §8 Scenario 5: duplicate responses for the same id are collapsed
// to a single entry.
func (b *Interface) Discover() error {
	if err := b.send(canframe.BuildPing(0)); err != nil {
		return &ErrBusAbsent{IfaceName: b.Name, Cause: fmt.Errorf("broadcast ping failed: %w", err)}
	}

	var responded []uint8
	for _, id := range candidateIDs() {
		if b.Ping(id) {
			responded = append(responded, id)
		}
	}
	b.Actuators = dedupe(responded)
	return nil
}

// dedupe collapses repeated identifiers to their first occurrence,
// preserving discovery order. Factored out for testing without a live bus.
func dedupe(ids []uint8) []uint8 {
	seen := make(map[uint8]bool, len(ids))
	out := make([]uint8, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
