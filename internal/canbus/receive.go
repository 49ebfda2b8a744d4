package canbus

import (
	"github.com/kscalelabs/kmotor/internal/canframe"
	"github.com/kscalelabs/kmotor/internal/faults"
)

// maxRereads backstops the unexpected-mux/extended-fault retry loop below.
// The per-socket timeout already bounds the loop in the common case (any
// real timeout returns Absent immediately); this just prevents a pathological
// flood of non-matching frames from looping forever.
const maxRereads = 32

// receiveExpect reads frames until one with mux == expectedMux arrives, a
// socket timeout occurs, or maxRereads is exceeded. It is the bounded-loop
// replacement for the source firmware's recursive "keep reading until
// expected mux" receive discipline.
//
// In-band fault flags on every received frame are passed through the short
// taxonomy classifier; a critical match aborts with that error immediately.
// A frame on the extended-fault mux is decoded and classified inline, then
// the loop continues (the originally awaited response is still pending). Any
// other unexpected mux is logged via warn and the loop continues.
func (b *Interface) receiveExpect(expectedMux uint8, warn func(string)) (Reception, error) {
	for attempt := 0; attempt < maxRereads; attempt++ {
		r := b.receive()
		if r.Absent {
			return Reception{Absent: true}, nil
		}

		if err := faults.HandleShort(r.Frame.DestSrc, r.Frame.FaultFlags(), warn); err != nil {
			return Reception{}, err
		}

		switch {
		case r.Frame.Mux == expectedMux:
			return r, nil
		case r.Frame.Mux == canframe.MuxExtendedFault:
			ef := canframe.ParseExtendedFault(r.Frame)
			if err := faults.HandleExtended(r.Frame.DestSrc, ef.FaultBitmap, warn); err != nil {
				return Reception{}, err
			}
			continue
		default:
			if warn != nil {
				warn("canbus: unexpected mux in response, re-reading")
			}
			continue
		}
	}
	return Reception{Absent: true}, nil
}
