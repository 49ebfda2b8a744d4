package canframe

import "testing"

func TestUnpackRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 8, 15, 17, 32} {
		if _, err := Unpack(make([]byte, n)); err != ErrMalformedFrame {
			t.Errorf("len %d: expected ErrMalformedFrame, got %v", n, err)
		}
	}
}

func TestGeneralLayoutRoundTrip(t *testing.T) {
	p := ParsedFrame{DestSrc: 12, Counterpart: Host, Mux: MuxFeedback, Payload: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}
	f := p.Pack()
	if len(f.Bytes()) != FrameSize {
		t.Fatalf("expected %d bytes, got %d", FrameSize, len(f.Bytes()))
	}
	got, err := Unpack(f.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestBuildPingEnableDisableFeedbackRequest(t *testing.T) {
	cases := []struct {
		name string
		f    Frame
		mux  uint8
	}{
		{"ping", BuildPing(11), MuxPing},
		{"enable", BuildEnable(11), MuxMotorEnable},
		{"disable", BuildDisable(11), MuxMotorDisable},
		{"feedback", BuildFeedbackRequest(11), MuxFeedback},
	}
	for _, c := range cases {
		p, err := Unpack(c.f.Bytes())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if p.DestSrc != Host {
			t.Errorf("%s: expected DestSrc=Host, got %d", c.name, p.DestSrc)
		}
		if p.Counterpart != 11 {
			t.Errorf("%s: expected Counterpart=11, got %d", c.name, p.Counterpart)
		}
		if p.Mux != c.mux {
			t.Errorf("%s: expected mux %d, got %d", c.name, c.mux, p.Mux)
		}
	}
}

// TestPDCommandScenario1 covers the framing half of spec.md Scenario 1: pack
// a PD command for actuator id 11 with mid-scale raw angle, velocity and
// torque and zero raw gains. The low byte of the identifier must carry the
// actuator id, the mux field read back from the wire must be MuxControl, and
// the frame must parse back to the same command.
func TestPDCommandScenario1(t *testing.T) {
	cmd := PDCommand{
		ActuatorID:  11,
		RawTorque:   32767,
		RawAngle:    32767, // mid-scale: angle 0.0 rad for a symmetric range
		RawVelocity: 32767,
		RawKP:       0,
		RawKD:       0,
	}
	f := cmd.Pack()
	raw := f.Bytes()
	if raw[0] != 11 {
		t.Fatalf("expected identifier low byte 11, got %d", raw[0])
	}
	if mux := PDCommandMux(raw); mux != MuxControl {
		t.Fatalf("expected mux %d, got %d", MuxControl, mux)
	}
	got, err := ParsePDCommand(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cmd {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, cmd)
	}
}

func TestPDCommandRejectsWrongLength(t *testing.T) {
	if _, err := ParsePDCommand(make([]byte, 10)); err != ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

// TestFeedbackScenario2 covers spec.md Scenario 2: unpack a feedback frame
// whose payload is 00 00 80 00 80 00 00 C8 for the Robstride00 family. Raw
// angle 0x0000, raw velocity/torque 0x8000 (midpoint, i.e. physical 0), and
// raw temperature 0x00C8 (200 -> 20.0C).
func TestFeedbackScenario2(t *testing.T) {
	p := ParsedFrame{
		DestSrc:     15,
		Counterpart: Host,
		Mux:         MuxFeedback,
		Payload:     [8]byte{0x00, 0x00, 0x80, 0x00, 0x80, 0x00, 0x00, 0xC8},
	}
	fb := ParseFeedback(p)
	if fb.RawAngle != 0x0000 {
		t.Errorf("expected raw angle 0x0000, got 0x%04x", fb.RawAngle)
	}
	if fb.RawVelocity != 0x8000 {
		t.Errorf("expected raw velocity 0x8000, got 0x%04x", fb.RawVelocity)
	}
	if fb.RawTorque != 0x8000 {
		t.Errorf("expected raw torque 0x8000, got 0x%04x", fb.RawTorque)
	}
	if fb.RawTemperature != 0x00C8 {
		t.Errorf("expected raw temperature 0x00C8, got 0x%04x", fb.RawTemperature)
	}
}

func TestExtendedFaultDecode(t *testing.T) {
	p := ParsedFrame{
		Mux:     MuxExtendedFault,
		Payload: [8]byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00},
	}
	ef := ParseExtendedFault(p)
	if ef.FaultBitmap != 1 {
		t.Errorf("expected fault bitmap 1, got %d", ef.FaultBitmap)
	}
	if ef.WarningBitmap != 2 {
		t.Errorf("expected warning bitmap 2, got %d", ef.WarningBitmap)
	}
}

func TestFaultFlagsAndModeStatusExtraction(t *testing.T) {
	// Counterpart byte: mode status (bits 6-7) = 0b10, fault flags (bits 0-5) = 0b010101.
	p := ParsedFrame{Counterpart: 0b10_010101}
	if got := p.FaultFlags(); got != 0b010101 {
		t.Errorf("expected fault flags 0b010101, got %06b", got)
	}
	if got := p.ModeStatus(); got != 0b10 {
		t.Errorf("expected mode status 0b10, got %02b", got)
	}
}
