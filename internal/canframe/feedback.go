package canframe

import "encoding/binary"

// Feedback is the decoded payload of a feedback response frame: raw angle,
// velocity, torque and temperature, all wire-scale.
type Feedback struct {
	RawAngle       uint16
	RawVelocity    uint16
	RawTorque      uint16
	RawTemperature uint16
}

// ParseFeedback decodes a feedback response frame's payload (big-endian
// angle, velocity, torque, temperature uint16s).
func ParseFeedback(p ParsedFrame) Feedback {
	return Feedback{
		RawAngle:       binary.BigEndian.Uint16(p.Payload[0:2]),
		RawVelocity:    binary.BigEndian.Uint16(p.Payload[2:4]),
		RawTorque:      binary.BigEndian.Uint16(p.Payload[4:6]),
		RawTemperature: binary.BigEndian.Uint16(p.Payload[6:8]),
	}
}

// ExtendedFault is the decoded payload of an extended fault-response frame:
// a 32-bit fault bitmap and a 32-bit warning bitmap, both little-endian.
type ExtendedFault struct {
	FaultBitmap   uint32
	WarningBitmap uint32
}

// ParseExtendedFault decodes an extended fault frame's payload.
func ParseExtendedFault(p ParsedFrame) ExtendedFault {
	return ExtendedFault{
		FaultBitmap:   binary.LittleEndian.Uint32(p.Payload[0:4]),
		WarningBitmap: binary.LittleEndian.Uint32(p.Payload[4:8]),
	}
}
