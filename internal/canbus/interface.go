// Package canbus owns one raw SocketCAN socket per discovered bus and
// implements the ping-scan, enable/disable, feedback-exchange, and
// PD-command paths described in spec.md §4.C.
//
// It talks directly to the kernel's CAN_RAW socket family via
// golang.org/x/sys/unix rather than a pub/sub CAN library. The actuator
// protocol depends on bit-exact control of the 29-bit extended identifier
// (EFF flag, destination/counterpart/mux packing) on every frame; a
// higher-level frame-bus abstraction would need to be unwrapped on every
// send and receive to get at those bits, so talking to AF_CAN directly is
// the more direct translation of the reference firmware's raw socket usage.
package canbus

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kscalelabs/kmotor/internal/canframe"
)

// receiveTimeout bounds how long a single read blocks before the kernel
// returns EAGAIN.
const receiveTimeout = 2 * time.Millisecond

// Reception is the two-variant result of a bus read: either a parsed frame
// or an explicit absence (timeout or malformed buffer). It replaces the
// sentinel-mixing of -1/None/missing-key in the source firmware.
type Reception struct {
	Frame  canframe.ParsedFrame
	Absent bool
}

// Interface owns one CAN network interface (e.g. can0) and the actuators
// discovered on it.
type Interface struct {
	Name      string
	fd        int
	Actuators []uint8

	misses int
}

// ErrBusAbsent is returned by Open when the socket could not be created or
// bound to ifaceName.
type ErrBusAbsent struct {
	IfaceName string
	Cause     error
}

func (e *ErrBusAbsent) Error() string {
	return fmt.Sprintf("canbus: bus %s unavailable: %v", e.IfaceName, e.Cause)
}

func (e *ErrBusAbsent) Unwrap() error { return e.Cause }

// Open creates a CAN_RAW socket, binds it to ifaceName, and sets the receive
// timeout. It returns *ErrBusAbsent on any failure, matching the reference
// firmware's "bind failed, drop the bus, continue" discovery behavior.
func Open(ifaceName string) (*Interface, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, &ErrBusAbsent{IfaceName: ifaceName, Cause: err}
	}

	ifi, err := unix.NameToIndex(ifaceName)
	if err != nil {
		unix.Close(fd)
		return nil, &ErrBusAbsent{IfaceName: ifaceName, Cause: err}
	}

	addr := &unix.SockaddrCAN{Ifindex: int(ifi)}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, &ErrBusAbsent{IfaceName: ifaceName, Cause: err}
	}

	tv := unix.NsecToTimeval(receiveTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, &ErrBusAbsent{IfaceName: ifaceName, Cause: err}
	}

	return &Interface{Name: ifaceName, fd: fd}, nil
}

// Close releases the underlying socket.
func (b *Interface) Close() error {
	return unix.Close(b.fd)
}

// send writes a 16-byte frame to the bus and returns any write error. Most
// callers treat that error like a missed response (Ping reports no reply, a
// feedback request counts a miss, enable/disable/PD sends return nil without
// reading a response); Discover's broadcast ping turns it into ErrBusAbsent.
func (b *Interface) send(f canframe.Frame) error {
	_, err := unix.Write(b.fd, f.Bytes())
	return err
}

// receive reads exactly one 16-byte frame, bounded by receiveTimeout. A
// kernel timeout or a malformed buffer both surface as Reception{Absent:
// true} rather than an error, since both are routine and expected during
// normal operation.
func (b *Interface) receive() Reception {
	buf := make([]byte, canframe.FrameSize)
	n, err := unix.Read(b.fd, buf)
	if err != nil {
		return Reception{Absent: true}
	}
	p, err := canframe.Unpack(buf[:n])
	if err != nil {
		return Reception{Absent: true}
	}
	return Reception{Frame: p}
}
