// Package controlloop drives the fixed-rate tick that ties the motor
// driver, IMU reader, command source, policy runtime, and telemetry logger
// together. See spec.md §4.E.
//
// Each tick: poll joints, poll the IMU, poll the command source, step the
// policy, issue PD targets, flush CAN buses once, log the tick, then sleep
// to the next deadline. Pacing is a soft deadline (max(0, period-elapsed)),
// matching the reference firmware's best-effort 50Hz loop rather than a
// hard real-time scheduler.
package controlloop

import (
	"context"
	"time"

	"github.com/fatih/color"

	"github.com/kscalelabs/kmotor/internal/command"
	"github.com/kscalelabs/kmotor/internal/imu"
	"github.com/kscalelabs/kmotor/internal/motordriver"
	"github.com/kscalelabs/kmotor/internal/policy"
	"github.com/kscalelabs/kmotor/internal/telemetry"
)

// TickPeriod is the wall-clock budget for a single tick, giving a 50Hz
// control rate.
const TickPeriod = time.Second / 50

// Loop owns every collaborator a tick touches and the joint ordering the
// policy archive declared.
type Loop struct {
	Driver  *motordriver.Driver
	IMU     imu.Reader
	Command command.Source
	Runtime policy.Runtime
	Logger  *telemetry.Logger

	JointOrder []string
	MaxScaling float64

	carry policy.Carry
	tick  int64
	lpf   lowpassFilter
}

// Run blocks ticking every TickPeriod until ctx is cancelled or a policy step or
// PD issue fails with a critical error.
func (l *Loop) Run(ctx context.Context) error {
	carry, err := l.Runtime.Init()
	if err != nil {
		return err
	}
	l.carry = carry

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		start := time.Now()
		if err := l.tickOnce(ctx); err != nil {
			return err
		}
		elapsed := time.Since(start)

		sleep := TickPeriod - elapsed
		if sleep < 0 {
			sleep = 0
			color.Yellow("tick %d overran budget: %s", l.tick, elapsed)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(sleep):
		}
		l.tick++
	}
}

func (l *Loop) tickOnce(ctx context.Context) error {
	rec := telemetry.Record{Tick: l.tick, Timestamp: float64(time.Now().UnixNano()) / 1e9}

	t0 := time.Now()
	angles, velocities, torques, temps, err := l.Driver.OrderedJointData(ctx, l.JointOrder)
	if err != nil {
		return err
	}
	rec.JointsReadUS = time.Since(t0).Microseconds()
	rec.JointAngles = angles
	rec.JointVelocities = velocities
	rec.JointTorques = torques
	rec.JointTemperatures = temps

	t1 := time.Now()
	sample := l.IMU.Latest()
	rec.IMUReadUS = time.Since(t1).Microseconds()
	rec.ProjectedGravity = sample.ProjectedGravity[:]
	rec.Gyroscope = sample.Gyroscope[:]

	t2 := time.Now()
	cmd := l.Command.Poll()
	rec.CommandReadUS = time.Since(t2).Microseconds()
	rec.Command = cmd.Vector[:]

	observation := buildObservation(angles, velocities, sample, cmd)

	t3 := time.Now()
	action, nextCarry, err := l.Runtime.Step(observation, l.carry)
	if err != nil {
		return err
	}
	l.carry = nextCarry
	rec.PolicyStepUS = time.Since(t3).Microseconds()

	action = l.lpf.apply(action, time.Now())
	rec.Action = action

	t4 := time.Now()
	targets := make(map[uint8]float64, len(l.JointOrder))
	for i, name := range l.JointOrder {
		id, ok := l.Driver.IDForFullName(name)
		if !ok {
			continue
		}
		angle := action[i]
		if override, ok := cmd.Overrides[name]; ok {
			angle = override
		}
		targets[id] = angle
	}
	if err := l.Driver.SetPDTargets(ctx, targets, l.MaxScaling); err != nil {
		return err
	}
	rec.ActionApplyUS = time.Since(t4).Microseconds()

	t5 := time.Now()
	if err := l.Driver.FlushCANBuses(ctx); err != nil {
		color.Yellow("WARNING: bus flush error: %v", err)
	}
	rec.BusFlushUS = time.Since(t5).Microseconds()

	if l.Logger != nil {
		l.Logger.Record(rec)
	}
	return nil
}

// buildObservation concatenates joint angles, joint velocities, projected
// gravity, gyroscope, and the command vector into the flat vector the
// policy archive expects, following original_source/firmware/policy.py's
// fixed observation layout.
func buildObservation(angles, velocities []float64, sample imu.Sample, cmd command.Command) []float64 {
	obs := make([]float64, 0, len(angles)+len(velocities)+3+3+command.CommandVectorLen)
	obs = append(obs, angles...)
	obs = append(obs, velocities...)
	obs = append(obs, sample.ProjectedGravity[:]...)
	obs = append(obs, sample.Gyroscope[:]...)
	obs = append(obs, cmd.Vector[:]...)
	return obs
}
