package catalog

import "fmt"

// Descriptor is the static metadata for one actuator joint.
type Descriptor struct {
	ID       uint8 // CAN bus identifier, in [10, 50)
	FullName string
	Family   Family
	KP       float64
	KD       float64
	HomeBias float64 // radians
}

// Name is FullName with the "dof_" prefix and family suffix stripped, e.g.
// "dof_left_shoulder_pitch_03" -> "left_shoulder_pitch".
func (d Descriptor) Name() string {
	s := d.FullName
	const prefix = "dof_"
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		s = s[len(prefix):]
	}
	idx := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '_' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	return s[:idx]
}

// RawKP returns the wire-scale proportional gain at full (1.0) scaling.
func (d Descriptor) RawKP() uint16 {
	return PhysicalToWire(d.Family.Ranges(), FieldKP, d.KP)
}

// RawKD returns the wire-scale derivative gain at full (1.0) scaling.
func (d Descriptor) RawKD() uint16 {
	return PhysicalToWire(d.Family.Ranges(), FieldKD, d.KD)
}

// RobotConfig is the immutable identifier -> descriptor mapping for all
// joints. Built once at startup; never mutated thereafter.
type RobotConfig struct {
	actuators        map[uint8]Descriptor
	fullNameToID     map[string]uint8
	orderedIDs       []uint8
}

// Descriptor returns the descriptor for id and whether it exists.
func (c *RobotConfig) Descriptor(id uint8) (Descriptor, bool) {
	d, ok := c.actuators[id]
	return d, ok
}

// IDForFullName resolves a joint's canonical full name (e.g.
// "dof_left_shoulder_pitch_03") to its CAN identifier.
func (c *RobotConfig) IDForFullName(fullName string) (uint8, bool) {
	id, ok := c.fullNameToID[fullName]
	return id, ok
}

// IDs returns every configured actuator identifier, ascending.
func (c *RobotConfig) IDs() []uint8 {
	out := make([]uint8, len(c.orderedIDs))
	copy(out, c.orderedIDs)
	return out
}

// Len returns the number of configured joints.
func (c *RobotConfig) Len() int { return len(c.actuators) }

// All returns a snapshot copy of the full identifier -> descriptor map.
func (c *RobotConfig) All() map[uint8]Descriptor {
	out := make(map[uint8]Descriptor, len(c.actuators))
	for id, d := range c.actuators {
		out[id] = d
	}
	return out
}

func bias(deg float64) float64 {
	return deg * 3.14159265358979323846 / 180.0
}

// BuildRobotConfig constructs the hard-coded 22-joint table covering both
// arms and both legs. Values are taken verbatim from the reference robot's
// actuator table.
func BuildRobotConfig() *RobotConfig {
	raw := []Descriptor{
		// Left arm
		{ID: 11, FullName: "dof_left_shoulder_pitch_03", Family: Robstride03, KP: 100.0, KD: 8.284, HomeBias: 0.0},
		{ID: 12, FullName: "dof_left_shoulder_roll_03", Family: Robstride03, KP: 100.0, KD: 8.257, HomeBias: bias(10.0)},
		{ID: 13, FullName: "dof_left_shoulder_yaw_02", Family: Robstride02, KP: 100.0, KD: 2.945, HomeBias: 0.0},
		{ID: 14, FullName: "dof_left_elbow_02", Family: Robstride02, KP: 80.0, KD: 2.266, HomeBias: bias(-90.0)},
		{ID: 15, FullName: "dof_left_wrist_00", Family: Robstride00, KP: 20.0, KD: 0.295, HomeBias: 0.0},
		{ID: 16, FullName: "dof_left_wrist_gripper_05", Family: Robstride00, KP: 4.0, KD: 0.06, HomeBias: 0.0},
		// Right arm
		{ID: 21, FullName: "dof_right_shoulder_pitch_03", Family: Robstride03, KP: 100.0, KD: 8.284, HomeBias: 0.0},
		{ID: 22, FullName: "dof_right_shoulder_roll_03", Family: Robstride03, KP: 100.0, KD: 8.257, HomeBias: bias(-10.0)},
		{ID: 23, FullName: "dof_right_shoulder_yaw_02", Family: Robstride02, KP: 100.0, KD: 2.945, HomeBias: 0.0},
		{ID: 24, FullName: "dof_right_elbow_02", Family: Robstride02, KP: 100.0, KD: 2.266, HomeBias: bias(90.0)},
		{ID: 25, FullName: "dof_right_wrist_00", Family: Robstride00, KP: 20.0, KD: 0.295, HomeBias: 0.0},
		{ID: 26, FullName: "dof_right_wrist_gripper_05", Family: Robstride00, KP: 4.0, KD: 0.06, HomeBias: 0.0},
		// Left leg
		{ID: 31, FullName: "dof_left_hip_pitch_04", Family: Robstride04, KP: 150.0, KD: 24.722, HomeBias: bias(20.0)},
		{ID: 32, FullName: "dof_left_hip_roll_03", Family: Robstride03, KP: 200.0, KD: 26.387, HomeBias: 0.0},
		{ID: 33, FullName: "dof_left_hip_yaw_03", Family: Robstride03, KP: 100.0, KD: 3.419, HomeBias: 0.0},
		{ID: 34, FullName: "dof_left_knee_04", Family: Robstride04, KP: 150.0, KD: 8.654, HomeBias: bias(50.0)},
		{ID: 35, FullName: "dof_left_ankle_02", Family: Robstride02, KP: 40.0, KD: 0.99, HomeBias: bias(-30.0)},
		// Right leg
		{ID: 41, FullName: "dof_right_hip_pitch_04", Family: Robstride04, KP: 150.0, KD: 24.722, HomeBias: bias(-20.0)},
		{ID: 42, FullName: "dof_right_hip_roll_03", Family: Robstride03, KP: 200.0, KD: 26.387, HomeBias: 0.0},
		{ID: 43, FullName: "dof_right_hip_yaw_03", Family: Robstride03, KP: 100.0, KD: 3.419, HomeBias: 0.0},
		{ID: 44, FullName: "dof_right_knee_04", Family: Robstride04, KP: 150.0, KD: 8.654, HomeBias: bias(-50.0)},
		{ID: 45, FullName: "dof_right_ankle_02", Family: Robstride02, KP: 40.0, KD: 0.99, HomeBias: bias(30.0)},
	}

	c := &RobotConfig{
		actuators:    make(map[uint8]Descriptor, len(raw)),
		fullNameToID: make(map[string]uint8, len(raw)),
	}
	for _, d := range raw {
		c.actuators[d.ID] = d
		c.fullNameToID[d.FullName] = d.ID
		c.orderedIDs = append(c.orderedIDs, d.ID)
	}
	return c
}

// ErrUnknownActuator is returned when an identifier has no descriptor.
type ErrUnknownActuator struct{ ID uint8 }

func (e ErrUnknownActuator) Error() string {
	return fmt.Sprintf("catalog: unknown actuator id %d", e.ID)
}
