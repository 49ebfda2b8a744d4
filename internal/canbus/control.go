package canbus

import (
	"time"

	"github.com/kscalelabs/kmotor/internal/canframe"
)

// disablePacing is the minimum gap between consecutive disable commands,
// matching the actuator's state-change rate limit.
const disablePacing = 10 * time.Millisecond

// Enable sends a motor-enable frame to actuatorID and consumes exactly one
// feedback response frame.
func (b *Interface) Enable(actuatorID uint8, warn func(string)) error {
	if err := b.send(canframe.BuildEnable(actuatorID)); err != nil {
		return nil
	}
	_, err := b.receiveExpect(canframe.MuxFeedback, warn)
	return err
}

// Disable sends a motor-disable frame to actuatorID and drops the response.
func (b *Interface) Disable(actuatorID uint8, warn func(string)) error {
	if err := b.send(canframe.BuildDisable(actuatorID)); err != nil {
		return nil
	}
	_, err := b.receiveExpect(canframe.MuxMotorDisable, warn)
	return err
}

// EnableAll enables every discovered actuator on this bus, in discovery
// order.
func (b *Interface) EnableAll(warn func(string)) error {
	for _, id := range b.Actuators {
		if err := b.Enable(id, warn); err != nil {
			return err
		}
	}
	return nil
}

// DisableAll disables every discovered actuator on this bus, in discovery
// order, pacing each disable by disablePacing to satisfy the actuator's
// state-change rate.
func (b *Interface) DisableAll(warn func(string)) error {
	for i, id := range b.Actuators {
		if i > 0 {
			time.Sleep(disablePacing)
		}
		if err := b.Disable(id, warn); err != nil {
			return err
		}
	}
	return nil
}

// SendPDTarget sends one PD command frame and consumes exactly one feedback
// response frame.
func (b *Interface) SendPDTarget(cmd canframe.PDCommand, warn func(string)) error {
	if err := b.send(cmd.Pack()); err != nil {
		return nil
	}
	_, err := b.receiveExpect(canframe.MuxFeedback, warn)
	return err
}

// Flush drains any frames already queued on the socket without blocking
// past the receive timeout, used after a burst of sends to keep the kernel
// socket buffer from accumulating stale responses.
func (b *Interface) Flush() {
	for {
		r := b.receive()
		if r.Absent {
			return
		}
	}
}
