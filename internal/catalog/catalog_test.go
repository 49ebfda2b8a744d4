package catalog

import (
	"math"
	"testing"
)

func TestBuildRobotConfigHasAllJoints(t *testing.T) {
	cfg := BuildRobotConfig()
	if cfg.Len() != 22 {
		t.Fatalf("expected 22 joints, got %d", cfg.Len())
	}
	for _, id := range []uint8{11, 12, 13, 14, 15, 16, 21, 22, 23, 24, 25, 26, 31, 32, 33, 34, 35, 41, 42, 43, 44, 45} {
		if _, ok := cfg.Descriptor(id); !ok {
			t.Errorf("missing descriptor for id %d", id)
		}
	}
}

func TestIDsSortedAscending(t *testing.T) {
	cfg := BuildRobotConfig()
	ids := cfg.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not strictly ascending at %d: %v", i, ids)
		}
	}
}

func TestNameStripsPrefixAndFamilySuffix(t *testing.T) {
	d := Descriptor{FullName: "dof_left_shoulder_pitch_03"}
	if got := d.Name(); got != "left_shoulder_pitch" {
		t.Fatalf("got %q", got)
	}
}

func TestPhysicalToWireRoundTripScenario1(t *testing.T) {
	// Scenario from spec: id=11, angle=0.0 rad, family Robstride03.
	r := Robstride03.Ranges()
	raw := PhysicalToWire(r, FieldAngle, 0.0)
	if raw < 32760 || raw > 32775 {
		t.Fatalf("expected mid-range raw angle near 32767, got %d", raw)
	}
}

func TestWireToPhysicalRoundTripScenario2(t *testing.T) {
	// Scenario 2: payload bytes imply angle_raw=0x0000, vel_raw=0x8000,
	// torque_raw=0x8000, temp_raw=0x00C8 for Robstride00.
	r := Robstride00.Ranges()
	angle := WireToPhysical(r, FieldAngle, 0x0000)
	if math.Abs(angle-(-4*math.Pi)) > 1e-9 {
		t.Fatalf("expected angle -4pi, got %v", angle)
	}
	vel := WireToPhysical(r, FieldVelocity, 0x8000)
	if math.Abs(vel-0.0) > 0.01 {
		t.Fatalf("expected velocity ~0.0, got %v", vel)
	}
	torque := WireToPhysical(r, FieldTorque, 0x8000)
	if math.Abs(torque-0.0) > 0.01 {
		t.Fatalf("expected torque ~0.0, got %v", torque)
	}
	temp := WireToTemperature(0x00C8)
	if math.Abs(temp-20.0) > 1e-9 {
		t.Fatalf("expected temp 20.0, got %v", temp)
	}
}

func TestConversionRoundTripWithinOneLSB(t *testing.T) {
	r := Robstride04.Ranges()
	for _, raw := range []uint16{0, 1, 1000, 32767, 65534, 65535} {
		phys := WireToPhysical(r, FieldTorque, raw)
		back := PhysicalToWire(r, FieldTorque, phys)
		diff := int(back) - int(raw)
		if diff < -1 || diff > 1 {
			t.Errorf("raw=%d round-tripped to %d, diff %d exceeds 1 LSB", raw, back, diff)
		}
	}
}

func TestPhysicalToWireSaturatesOutOfRange(t *testing.T) {
	r := Robstride00.Ranges()
	if got := PhysicalToWire(r, FieldAngle, -1000.0); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := PhysicalToWire(r, FieldAngle, 1000.0); got != 65535 {
		t.Fatalf("expected clamp to 65535, got %d", got)
	}
}
