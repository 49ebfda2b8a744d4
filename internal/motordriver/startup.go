package motordriver

import (
	"context"
	"math"
	"time"

	"github.com/fatih/color"
)

// rampSteps is the number of log-spaced gain-scale steps used by both the
// homing ramp-up and the shutdown ramp-down.
const rampSteps = 30

// rampStepInterval is the pacing between ramp steps.
const rampStepInterval = 100 * time.Millisecond

// logRampScale returns the scaling factor at step i of rampSteps, following
// an exponential curve from 0.001 to 1.0 so early steps move the actuator
// gently and later steps approach full authority.
func logRampScale(i int) float64 {
	progress := float64(i) / float64(rampSteps-1)
	return math.Exp(math.Log(0.001) + (math.Log(1.0)-math.Log(0.001))*progress)
}

// StartupSequence reads every actuator's current angle and fails fast if any
// joint is further than startupAngleThreshold radians from zero - a sign the
// robot was not parked near its home pose before boot.
func (d *Driver) StartupSequence(ctx context.Context) (map[uint8]JointState, error) {
	joints, err := d.GetJointAnglesAndVelocities(ctx)
	if err != nil {
		return nil, err
	}
	for id, js := range joints {
		if math.Abs(js.Angle) > startupAngleThreshold {
			return nil, &ErrStartupInvariantViolated{Reason: "actuator angles too far from zero, move joints closer to home position"}
		}
		_ = id
	}
	return joints, nil
}

// EnableAndHome enables every actuator then ramps the proportional/
// derivative gain scale from near-zero up to maxScaling over rampSteps
// steps, driving every joint toward its configured home bias.
func (d *Driver) EnableAndHome(ctx context.Context) error {
	if err := d.EnableMotors(ctx); err != nil {
		return err
	}
	color.Green("All motors enabled")

	home := make(map[uint8]float64)
	for _, id := range d.robot.IDs() {
		desc, _ := d.robot.Descriptor(id)
		home[id] = desc.HomeBias
	}

	color.Cyan("Homing...")
	for i := 0; i < rampSteps; i++ {
		scale := logRampScale(i) * d.maxScaling
		if err := d.SetPDTargets(ctx, home, scale); err != nil {
			return err
		}
		time.Sleep(rampStepInterval)
	}
	color.Green("Homing complete")
	return nil
}

// RampDown brings every actuator from its last commanded gain scale down to
// zero over rampSteps steps, holding each joint at its CURRENT angle rather
// than home - the reference firmware's ramp-down target is "wherever the
// joint already is", not the home pose, since driving toward home during
// shutdown can itself be an uncommanded, unsafe motion.
func (d *Driver) RampDown(ctx context.Context) error {
	d.mu.Lock()
	enabled := d.motorsEnabled
	startScale := d.lastScaling
	d.mu.Unlock()
	if !enabled {
		return nil
	}

	if err := d.FlushCANBuses(ctx); err != nil {
		color.Red("error flushing CAN buses before ramp down: %v", err)
	}

	joints, err := d.GetJointAnglesAndVelocities(ctx)
	if err != nil {
		color.Red("error during ramp down: %v", err)
		return d.DisableMotors(ctx)
	}
	if len(joints) == 0 {
		color.Yellow("no actuators responding, skipping ramp down")
		d.mu.Lock()
		d.motorsEnabled = false
		d.mu.Unlock()
		return nil
	}

	color.Cyan("Ramping down %d actuators", len(joints))
	angles := make(map[uint8]float64, len(joints))
	for id, js := range joints {
		angles[id] = js.Angle
	}

	for i := 0; i < rampSteps; i++ {
		scale := startScale * logRampScale(rampSteps-1-i)
		if err := d.SetPDTargets(ctx, angles, scale); err != nil {
			color.Red("error during ramp down step %d: %v", i, err)
			break
		}
		time.Sleep(rampStepInterval)
	}
	if err := d.SetPDTargets(ctx, angles, 0.0); err != nil {
		color.Red("error zeroing gains at end of ramp down: %v", err)
	}

	d.mu.Lock()
	d.motorsEnabled = false
	d.mu.Unlock()

	return d.DisableMotors(ctx)
}
