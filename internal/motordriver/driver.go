// Package motordriver aggregates per-bus CAN interfaces into a single
// robot-wide actuator driver: discovery across up to seven buses, ordered
// request/response fan-out, startup safety checks, homing, and ramp-down.
// See spec.md §4.D.
package motordriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fatih/color"

	"github.com/kscalelabs/kmotor/internal/canbus"
	"github.com/kscalelabs/kmotor/internal/canframe"
	"github.com/kscalelabs/kmotor/internal/catalog"
)

// fanoutTimeout is the deadline on the context handed to each bus during one
// round of a fanned-out operation (errgroup paired with context.WithTimeout).
// The per-bus socket calls do not observe that context, so the deadline does
// not cut a round short: fanout returns only once every bus has finished.
const fanoutTimeout = 100 * time.Millisecond

// ErrStartupInvariantViolated is fatal: no buses were discovered, or a
// joint's angle is further than the safety threshold from zero at startup.
type ErrStartupInvariantViolated struct {
	Reason string
}

func (e *ErrStartupInvariantViolated) Error() string {
	return fmt.Sprintf("motordriver: startup invariant violated: %s", e.Reason)
}

// startupAngleThreshold is the maximum |angle| in radians tolerated at
// startup before refusing to enable motors. The value is carried over
// verbatim from the reference firmware, which treats it as a fixed
// constant rather than a per-deployment setting.
const startupAngleThreshold = 2.0

// Driver owns one canbus.Interface per discovered bus and the static robot
// configuration.
type Driver struct {
	buses      []*canbus.Interface
	robot      *catalog.RobotConfig
	maxScaling float64

	mu            sync.Mutex
	lastKnown     map[uint8]canframe.Feedback
	motorsEnabled bool
	lastScaling   float64
}

// Open binds one canbus.Interface per entry in ifaceNames, discovers
// actuators on each, and drops buses whose open or discovery fails. It
// returns *ErrStartupInvariantViolated if zero buses survive.
func Open(ifaceNames []string, robot *catalog.RobotConfig, maxScaling float64) (*Driver, error) {
	color.Cyan("Initializing CAN buses...")
	var buses []*canbus.Interface
	for _, name := range ifaceNames {
		iface, err := canbus.Open(name)
		if err != nil {
			color.Yellow("WARNING: failed to initialize %s: %v", name, err)
			continue
		}
		if err := iface.Discover(); err != nil {
			color.Yellow("WARNING: bus %s declared absent: %v", name, err)
			iface.Close()
			continue
		}
		if len(iface.Actuators) == 0 {
			iface.Close()
			continue
		}
		buses = append(buses, iface)
	}

	if len(buses) == 0 {
		color.Red("ERROR: no CAN buses initialized successfully")
		return nil, &ErrStartupInvariantViolated{Reason: "no buses discovered"}
	}

	total := 0
	for _, b := range buses {
		total += len(b.Actuators)
	}
	color.Green("Initialized %d buses with %d total actuators", len(buses), total)

	return &Driver{
		buses:     buses,
		robot:     robot,
		maxScaling: maxScaling,
		lastKnown: make(map[uint8]canframe.Feedback),
	}, nil
}

// Close shuts down every bus's socket. Idempotent per-bus errors are logged,
// not propagated, matching the reference cleanup's best-effort close loop.
func (d *Driver) Close() {
	color.Cyan("Shutting down CAN buses...")
	for _, b := range d.buses {
		if err := b.Close(); err != nil {
			color.Red("error closing CAN bus %s: %v", b.Name, err)
		}
	}
	d.buses = nil
	color.Green("Motor driver shutdown complete")
}

// fanout runs fn once per bus concurrently and waits for every bus to
// finish. Any per-bus error is logged as a warning and that bus's
// contribution is dropped, EXCEPT a *faults.CriticalFault, which fanout
// returns. The context passed to fn carries fanoutTimeout and is cancelled
// on the first critical fault, but the canbus calls do not observe it, so
// the other buses still run their work to completion before the error is
// returned.
func (d *Driver) fanout(ctx context.Context, fn func(ctx context.Context, b *canbus.Interface) error) error {
	ctx, cancel := context.WithTimeout(ctx, fanoutTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range d.buses {
		b := b
		g.Go(func() error {
			err := fn(ctx, b)
			if err == nil {
				return nil
			}
			if isCritical(err) {
				return err
			}
			color.Yellow("WARNING: error on bus %s: %v", b.Name, err)
			return nil
		})
	}
	return g.Wait()
}
