package faults

import "testing"

// TestScenario3 covers spec.md Scenario 3: an extended fault bitmap of
// 0x00000004 (undervoltage) is non-critical and must only warn.
func TestScenario3UndervoltageWarns(t *testing.T) {
	var warned string
	err := HandleExtended(21, 0x00000004, func(msg string) { warned = msg })
	if err != nil {
		t.Fatalf("expected no error for non-critical fault, got %v", err)
	}
	if warned == "" {
		t.Fatal("expected a warning to be logged")
	}
}

// TestScenario4 covers spec.md Scenario 4: an extended fault bitmap of
// 0x00000001 (over-temperature) is critical and must raise CriticalFault.
func TestScenario4OverTemperatureCritical(t *testing.T) {
	err := HandleExtended(21, 0x00000001, nil)
	cf, ok := err.(*CriticalFault)
	if !ok {
		t.Fatalf("expected *CriticalFault, got %v (%T)", err, err)
	}
	if cf.ActuatorID != 21 {
		t.Errorf("expected actuator id 21, got %d", cf.ActuatorID)
	}
	if cf.Description != "over-temperature" {
		t.Errorf("expected over-temperature description, got %q", cf.Description)
	}
}

func TestHandleShortIgnoresZeroAndUnknown(t *testing.T) {
	if err := HandleShort(1, 0, nil); err != nil {
		t.Fatalf("expected nil for zero code, got %v", err)
	}
	called := false
	if err := HandleShort(1, 0x3F, func(string) { called = true }); err != nil {
		t.Fatalf("expected nil for unmatched composite code, got %v", err)
	}
	if called {
		t.Fatal("unknown composite code must not warn (equality matching only)")
	}
}

func TestHandleShortCriticalPropagates(t *testing.T) {
	err := HandleShort(5, 0x01, nil)
	cf, ok := err.(*CriticalFault)
	if !ok {
		t.Fatalf("expected *CriticalFault, got %v", err)
	}
	if cf.ActuatorID != 5 {
		t.Errorf("expected actuator id 5, got %d", cf.ActuatorID)
	}
}

func TestEqualityNotBitmaskSemantics(t *testing.T) {
	// 0x05 sets both the over-temperature (0x01, critical) and undervoltage
	// (0x04) bits simultaneously. Equality matching must miss both entries
	// since neither 0x01 nor 0x04 equals 0x05, per the preserved-as-is
	// open question on fault matching semantics.
	if _, ok := ClassifyShort(0x05); ok {
		t.Fatal("composite code must not match any single-bit table entry under equality semantics")
	}
}
