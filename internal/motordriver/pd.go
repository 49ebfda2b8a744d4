package motordriver

import (
	"context"

	"github.com/kscalelabs/kmotor/internal/canbus"
	"github.com/kscalelabs/kmotor/internal/canframe"
	"github.com/kscalelabs/kmotor/internal/catalog"
)

// SetPDTargets sends one PD command per actuator named in targets (radians),
// scaled uniformly by scaling in [0, 1] applied to proportional and
// derivative gains. Each command's feedback response is read (bounded by the
// bus receive timeout) and discarded; only a critical fault found in a
// response is reported.
func (d *Driver) SetPDTargets(ctx context.Context, targets map[uint8]float64, scaling float64) error {
	if scaling < 0 {
		scaling = 0
	}
	if scaling > 1 {
		scaling = 1
	}
	d.mu.Lock()
	d.lastScaling = scaling
	d.mu.Unlock()

	return d.fanout(ctx, func(ctx context.Context, b *canbus.Interface) error {
		for _, id := range b.Actuators {
			angle, ok := targets[id]
			if !ok {
				continue
			}
			desc, ok := d.robot.Descriptor(id)
			if !ok {
				continue
			}
			ranges := desc.Family.Ranges()
			cmd := canframe.PDCommand{
				ActuatorID:  id,
				RawTorque:   catalog.PhysicalToWire(ranges, catalog.FieldTorque, 0),
				RawAngle:    catalog.PhysicalToWire(ranges, catalog.FieldAngle, angle),
				RawVelocity: catalog.PhysicalToWire(ranges, catalog.FieldVelocity, 0),
				RawKP:       uint16(float64(desc.RawKP()) * scaling),
				RawKD:       uint16(float64(desc.RawKD()) * scaling),
			}
			if err := b.SendPDTarget(cmd, warnFn); err != nil {
				return err
			}
		}
		return nil
	})
}

// FlushCANBuses drains any queued responses on every bus. Called once per
// control-loop tick after the PD targets are sent, and once before the
// ramp-down, to keep socket buffers from accumulating stale frames.
func (d *Driver) FlushCANBuses(ctx context.Context) error {
	return d.fanout(ctx, func(ctx context.Context, b *canbus.Interface) error {
		b.Flush()
		return nil
	})
}

// EnableMotors enables every discovered actuator on every bus.
func (d *Driver) EnableMotors(ctx context.Context) error {
	err := d.fanout(ctx, func(ctx context.Context, b *canbus.Interface) error {
		return b.EnableAll(warnFn)
	})
	if err == nil {
		d.mu.Lock()
		d.motorsEnabled = true
		d.mu.Unlock()
	}
	return err
}

// DisableMotors disables every discovered actuator on every bus.
func (d *Driver) DisableMotors(ctx context.Context) error {
	err := d.fanout(ctx, func(ctx context.Context, b *canbus.Interface) error {
		return b.DisableAll(warnFn)
	})
	d.mu.Lock()
	d.motorsEnabled = false
	d.mu.Unlock()
	return err
}
