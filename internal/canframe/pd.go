package canframe

import "encoding/binary"

// PDCommand is the outbound position/velocity/gain command frame. Its
// identifier layout differs from the general layout: the actuator id sits in
// byte 0, a 16-bit raw torque feed-forward spans bytes 1-2, and the control
// mux occupies the high byte.
type PDCommand struct {
	ActuatorID uint8
	RawTorque  uint16
	RawAngle   uint16
	RawVelocity uint16
	RawKP      uint16
	RawKD      uint16
}

// Pack encodes the PD command into its 16-byte wire form. The payload is
// angle, velocity, kp, kd as big-endian uint16s.
func (c PDCommand) Pack() Frame {
	id := (uint32(c.ActuatorID) | (uint32(c.RawTorque) << 8) | (uint32(MuxControl&0x1F) << 24)) | EFF

	var payload [8]byte
	binary.BigEndian.PutUint16(payload[0:2], c.RawAngle)
	binary.BigEndian.PutUint16(payload[2:4], c.RawVelocity)
	binary.BigEndian.PutUint16(payload[4:6], c.RawKP)
	binary.BigEndian.PutUint16(payload[6:8], c.RawKD)

	return packRaw(id, payload)
}

// ParsePDCommand decodes a frame previously produced by PDCommand.Pack. It
// does not validate the mux field; callers should check Mux separately when
// the source of the frame is untrusted.
func ParsePDCommand(raw []byte) (PDCommand, error) {
	if len(raw) != FrameSize {
		return PDCommand{}, ErrMalformedFrame
	}
	id := binary.LittleEndian.Uint32(raw[0:4])
	actuatorID := uint8(id)
	rawTorque := uint16(id >> 8)

	return PDCommand{
		ActuatorID:  actuatorID,
		RawTorque:   rawTorque,
		RawAngle:    binary.BigEndian.Uint16(raw[8:10]),
		RawVelocity: binary.BigEndian.Uint16(raw[10:12]),
		RawKP:       binary.BigEndian.Uint16(raw[12:14]),
		RawKD:       binary.BigEndian.Uint16(raw[14:16]),
	}, nil
}

// Mux of a PD command frame, for callers that received raw bytes and need to
// branch on frame type before choosing a parser.
func PDCommandMux(raw []byte) uint8 {
	id := binary.LittleEndian.Uint32(raw[0:4])
	return uint8(id>>24) & 0x1F
}
