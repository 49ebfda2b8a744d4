// Package canframe packs and unpacks the 16-byte SocketCAN frame used by the
// actuator bus, and decodes/encodes the 29-bit extended identifier layout
// described in spec.md §4.B.
//
// Two identifier layouts are in play. The "general" layout (ping, motor
// enable/disable, feedback request/response, extended fault) carries an
// 8-bit destination/source byte, an 8-bit counterpart byte, and a 5-bit mux
// in the low byte of the upper half. The PD command layout is distinct: it
// folds a 16-bit raw torque feed-forward into the identifier alongside the
// actuator id and puts mux in the high byte. See pd.go for the latter.
package canframe

import (
	"encoding/binary"
	"errors"
)

// FrameSize is the fixed wire size of every frame on the bus: 4-byte
// identifier, 1-byte DLC, 3 reserved/padding bytes, 8 payload bytes.
const FrameSize = 16

// EFF marks the identifier as a 29-bit extended-frame identifier.
const EFF uint32 = 0x8000_0000

// Host is the source/destination byte the host places in outbound frames.
const Host uint8 = 0xFD

// Mux values for the actuator protocol's 5-bit multiplex field.
const (
	MuxPing          = 0x00
	MuxControl       = 0x01
	MuxFeedback      = 0x02
	MuxMotorEnable   = 0x03
	MuxMotorDisable  = 0x04
	MuxExtendedFault = 0x15
)

// ErrMalformedFrame is returned by Unpack when the buffer is not exactly
// FrameSize bytes.
var ErrMalformedFrame = errors.New("canframe: malformed frame (wrong length)")

// Frame is the raw, already-wire-shaped 16-byte CAN frame.
type Frame [FrameSize]byte

// Bytes returns the frame's 16 wire bytes.
func (f Frame) Bytes() []byte { return f[:] }

// ParsedFrame is the tagged decode of a general-layout identifier and
// payload, replacing the source's duck-typed maps (see DESIGN.md).
type ParsedFrame struct {
	DestSrc     uint8 // outbound: Host; inbound: actuator id
	Counterpart uint8 // outbound: actuator id; inbound: fault flags (6 bit) + mode status (2 bit)
	Mux         uint8
	Payload     [8]byte
}

// FaultFlags extracts the 6-bit in-band fault field from Counterpart
// (meaningful on inbound frames only).
func (p ParsedFrame) FaultFlags() uint8 { return p.Counterpart & 0x3F }

// ModeStatus extracts the 2-bit mode-status field from Counterpart
// (meaningful on inbound frames only).
func (p ParsedFrame) ModeStatus() uint8 { return (p.Counterpart >> 6) & 0x3 }

func packRaw(id uint32, payload [8]byte) Frame {
	var f Frame
	binary.LittleEndian.PutUint32(f[0:4], id)
	f[4] = 8 // DLC
	f[5] = 0
	f[6] = 0
	f[7] = 0
	copy(f[8:16], payload[:])
	return f
}

// buildGeneral assembles a general-layout identifier: destSrc in bits 0-7,
// counterpart in bits 8-15, mux in bits 16-20, remainder zero, EFF set.
func buildGeneral(destSrc, counterpart, mux uint8) uint32 {
	return (uint32(destSrc) | (uint32(counterpart) << 8) | (uint32(mux&0x1F) << 16)) | EFF
}

// Pack re-encodes a ParsedFrame (general layout) into its 16-byte wire form.
func (p ParsedFrame) Pack() Frame {
	return packRaw(buildGeneral(p.DestSrc, p.Counterpart, p.Mux), p.Payload)
}

// Unpack decodes a raw frame buffer using the general identifier layout. It
// returns ErrMalformedFrame if raw is not exactly FrameSize bytes.
func Unpack(raw []byte) (ParsedFrame, error) {
	if len(raw) != FrameSize {
		return ParsedFrame{}, ErrMalformedFrame
	}
	id := binary.LittleEndian.Uint32(raw[0:4])
	b0 := uint8(id >> 0)
	b1 := uint8(id >> 8)
	mux := uint8(id>>16) & 0x1F

	var payload [8]byte
	copy(payload[:], raw[8:16])

	return ParsedFrame{
		DestSrc:     b0,
		Counterpart: b1,
		Mux:         mux,
		Payload:     payload,
	}, nil
}

// BuildPing builds the broadcast/per-identifier ping frame host -> actuator.
// Discovery sends this with actuatorID 0 for the initial broadcast-style
// probe, then once per candidate identifier.
func BuildPing(actuatorID uint8) Frame {
	return ParsedFrame{DestSrc: Host, Counterpart: actuatorID, Mux: MuxPing}.Pack()
}

// BuildEnable builds a motor-enable frame for actuatorID.
func BuildEnable(actuatorID uint8) Frame {
	return ParsedFrame{DestSrc: Host, Counterpart: actuatorID, Mux: MuxMotorEnable}.Pack()
}

// BuildDisable builds a motor-disable frame for actuatorID.
func BuildDisable(actuatorID uint8) Frame {
	return ParsedFrame{DestSrc: Host, Counterpart: actuatorID, Mux: MuxMotorDisable}.Pack()
}

// BuildFeedbackRequest builds a feedback-request frame for actuatorID.
func BuildFeedbackRequest(actuatorID uint8) Frame {
	return ParsedFrame{DestSrc: Host, Counterpart: actuatorID, Mux: MuxFeedback}.Pack()
}
