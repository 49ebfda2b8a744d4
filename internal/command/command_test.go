package command

import "testing"

func TestClampVectorBounds(t *testing.T) {
	var v [CommandVectorLen]float64
	v[0], v[1], v[2], v[3] = 1.0, -1.0, 0.1, -0.1
	got := clampVector(v, 0.3)
	var want [CommandVectorLen]float64
	want[0], want[1], want[2], want[3] = 0.3, -0.3, 0.1, -0.1
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUDPListenerHandleResetClearsOverrides(t *testing.T) {
	l := &UDPListener{overrides: map[string]float64{"dof_left_elbow_02": 0.5}}
	l.handlePacket([]byte(`{"type":"reset"}`))
	if len(l.overrides) != 0 {
		t.Fatalf("expected overrides cleared, got %v", l.overrides)
	}
}

func TestUDPListenerHandleNestedCommands(t *testing.T) {
	l := &UDPListener{overrides: map[string]float64{}}
	l.handlePacket([]byte(`{"commands":{"lelbowpitch": 0.25, "unknownjoint": 1.0}}`))
	if got := l.overrides["dof_left_elbow_02"]; got != 0.25 {
		t.Fatalf("expected mapped override 0.25, got %v", got)
	}
	if _, ok := l.overrides["unknownjoint"]; ok {
		t.Fatal("unknown joint alias must be dropped")
	}
}

func TestUDPListenerHandleFlatShape(t *testing.T) {
	l := &UDPListener{overrides: map[string]float64{}}
	l.handlePacket([]byte(`{"rshoulderpitch": 0.1}`))
	if got := l.overrides["dof_right_shoulder_pitch_03"]; got != 0.1 {
		t.Fatalf("expected mapped override 0.1, got %v", got)
	}
}

func TestUDPListenerHandleMalformedJSONIgnored(t *testing.T) {
	l := &UDPListener{overrides: map[string]float64{"dof_left_elbow_02": 0.5}}
	l.handlePacket([]byte(`not json`))
	if got := l.overrides["dof_left_elbow_02"]; got != 0.5 {
		t.Fatalf("expected overrides unchanged on malformed packet, got %v", got)
	}
}
