package motordriver

import (
	"context"
	"sync"

	"github.com/kscalelabs/kmotor/internal/canbus"
	"github.com/kscalelabs/kmotor/internal/canframe"
	"github.com/kscalelabs/kmotor/internal/catalog"
)

// JointState is one actuator's physical-unit feedback for the current tick,
// tagged with whether it came from a fresh read or the last-known-good
// cache.
type JointState struct {
	Angle       float64
	Velocity    float64
	Torque      float64
	Temperature float64
	Stale       bool // true if carried over from a previous successful read
}

// GetJointAnglesAndVelocities requests feedback from every actuator on every
// bus and returns one JointState per actuator id, in physical units. A
// timed-out actuator is covered by the last successful reading for that id;
// per spec.md §4.B this is never fabricated as zero once at least one
// successful read has occurred. Missing entirely (never read successfully)
// actuators are simply absent from the returned map.
func (d *Driver) GetJointAnglesAndVelocities(ctx context.Context) (map[uint8]JointState, error) {
	var mu sync.Mutex
	raw := make(map[uint8]canframe.Feedback)

	err := d.fanout(ctx, func(ctx context.Context, b *canbus.Interface) error {
		results, err := b.ExchangeFeedback(warnFn)
		if err != nil {
			return err
		}
		mu.Lock()
		for _, r := range results {
			if !r.Absent {
				raw[r.ActuatorID] = r.Feedback
			}
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, fb := range raw {
		d.lastKnown[id] = fb
	}

	out := make(map[uint8]JointState, len(d.lastKnown))
	for id, fb := range d.lastKnown {
		desc, ok := d.robot.Descriptor(id)
		if !ok {
			continue
		}
		ranges := desc.Family.Ranges()
		_, fresh := raw[id]
		out[id] = JointState{
			Angle:       catalog.WireToPhysical(ranges, catalog.FieldAngle, fb.RawAngle),
			Velocity:    catalog.WireToPhysical(ranges, catalog.FieldVelocity, fb.RawVelocity),
			Torque:      catalog.WireToPhysical(ranges, catalog.FieldTorque, fb.RawTorque),
			Temperature: catalog.WireToTemperature(fb.RawTemperature),
			Stale:       !fresh,
		}
	}
	return out, nil
}

// IDForFullName resolves a joint's canonical full name to its CAN
// identifier, delegating to the robot configuration.
func (d *Driver) IDForFullName(fullName string) (uint8, bool) {
	return d.robot.IDForFullName(fullName)
}

// OrderedJointData returns parallel slices (angle, velocity, torque,
// temperature) ordered by jointOrder, resolving each name through the robot
// configuration's full-name index.
func (d *Driver) OrderedJointData(ctx context.Context, jointOrder []string) (angles, velocities, torques, temps []float64, err error) {
	joints, err := d.GetJointAnglesAndVelocities(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	angles = make([]float64, len(jointOrder))
	velocities = make([]float64, len(jointOrder))
	torques = make([]float64, len(jointOrder))
	temps = make([]float64, len(jointOrder))
	for i, name := range jointOrder {
		id, ok := d.robot.IDForFullName(name)
		if !ok {
			return nil, nil, nil, nil, catalog.ErrUnknownActuator{ID: 0}
		}
		js := joints[id]
		angles[i] = js.Angle
		velocities[i] = js.Velocity
		torques[i] = js.Torque
		temps[i] = js.Temperature
	}
	return angles, velocities, torques, temps, nil
}
