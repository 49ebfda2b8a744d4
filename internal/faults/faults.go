// Package faults classifies actuator fault codes against two taxonomies: a
// short in-band 6-bit field carried in every inbound frame's identifier, and
// an extended 32-bit bitmap reported in a dedicated fault frame (mux
// canframe.MuxExtendedFault).
//
// Matching is by equality against a fixed table, not bitmask intersection.
// This mirrors the reference firmware and is preserved deliberately: fault
// registers can carry more than one set bit at a time, in which case
// equality matching silently misses the entry. Whether that is intentional
// or a latent defect in the original design is unresolved; this package
// keeps equality semantics rather than guessing. TODO: revisit if the
// hardware vendor documents bitmask semantics for the extended taxonomy.
package faults

import "fmt"

// Entry is one row of a fault table: a code, its severity, and a
// human-readable description.
type Entry struct {
	Code        uint32
	Critical    bool
	Description string
}

// shortTable is the 6-bit in-band fault-flag taxonomy, carried in the
// counterpart byte of every inbound general-layout frame.
var shortTable = map[uint32]Entry{
	0x01: {Code: 0x01, Critical: true, Description: "over-temperature"},
	0x02: {Code: 0x02, Critical: true, Description: "overcurrent"},
	0x04: {Code: 0x04, Critical: false, Description: "undervoltage"},
	0x08: {Code: 0x08, Critical: false, Description: "encoder not calibrated"},
	0x10: {Code: 0x10, Critical: true, Description: "driver fault"},
	0x20: {Code: 0x20, Critical: false, Description: "overload"},
}

// extendedTable is the 32-bit bitmap taxonomy reported in the extended fault
// response frame's fault-bitmap word.
var extendedTable = map[uint32]Entry{
	0x00000001: {Code: 0x00000001, Critical: true, Description: "over-temperature"},
	0x00000002: {Code: 0x00000002, Critical: true, Description: "overcurrent"},
	0x00000004: {Code: 0x00000004, Critical: false, Description: "undervoltage"},
	0x00000008: {Code: 0x00000008, Critical: false, Description: "encoder not calibrated"},
	0x00000010: {Code: 0x00000010, Critical: true, Description: "driver fault"},
	0x00000020: {Code: 0x00000020, Critical: false, Description: "overload"},
	0x00000040: {Code: 0x00000040, Critical: true, Description: "phase loss"},
}

// CriticalFault is raised when a matched fault entry is critical. It
// propagates out of the driver and aborts the tick.
type CriticalFault struct {
	ActuatorID  uint8
	Description string
}

func (e *CriticalFault) Error() string {
	return fmt.Sprintf("faults: actuator %d critical fault: %s", e.ActuatorID, e.Description)
}

// ClassifyShort looks up code in the short in-band taxonomy. ok is false for
// unmatched codes, which callers must ignore rather than treat as faults.
func ClassifyShort(code uint8) (Entry, bool) {
	e, ok := shortTable[uint32(code)&0x3F]
	return e, ok
}

// ClassifyExtended looks up code in the extended bitmap taxonomy.
func ClassifyExtended(code uint32) (Entry, bool) {
	e, ok := extendedTable[code]
	return e, ok
}

// HandleShort classifies an in-band fault field for actuatorID. If the code
// matches a critical entry it returns a *CriticalFault for the caller to
// propagate. If it matches a non-critical entry, warn is called with a
// human-readable message and nil is returned. Unknown codes are ignored.
func HandleShort(actuatorID uint8, code uint8, warn func(string)) error {
	if code == 0 {
		return nil
	}
	e, ok := ClassifyShort(code)
	if !ok {
		return nil
	}
	if e.Critical {
		return &CriticalFault{ActuatorID: actuatorID, Description: e.Description}
	}
	if warn != nil {
		warn(fmt.Sprintf("actuator %d: %s", actuatorID, e.Description))
	}
	return nil
}

// HandleExtended classifies an extended fault-bitmap word for actuatorID,
// with the same critical/non-critical/unknown disposition as HandleShort.
// The warning bitmap is informational only and is never fatal.
func HandleExtended(actuatorID uint8, faultBitmap uint32, warn func(string)) error {
	if faultBitmap == 0 {
		return nil
	}
	e, ok := ClassifyExtended(faultBitmap)
	if !ok {
		return nil
	}
	if e.Critical {
		return &CriticalFault{ActuatorID: actuatorID, Description: e.Description}
	}
	if warn != nil {
		warn(fmt.Sprintf("actuator %d: %s", actuatorID, e.Description))
	}
	return nil
}
