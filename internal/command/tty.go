package command

import (
	"bufio"
	"os"
	"sync"

	"golang.org/x/term"
)

// ttyClamp bounds the base command vector to +/-0.3, one of the clamp
// values seen across reference firmware variants (see the open question in
// command.go).
const ttyClamp = 0.3

// baseStep and poseStep are the per-keypress increments for the base
// velocity command and the pose adjustment channels, respectively.
const baseStep = 0.1
const poseStep = 0.05

// TTYReader reads single keystrokes from stdin in raw mode (the closest
// equivalent golang.org/x/term offers to the reference firmware's cbreak
// mode: canonical mode and echo are both disabled) and maps them to command
// vector adjustments on a background goroutine.
type TTYReader struct {
	restoreState *term.State
	fd           int

	mu  sync.Mutex
	cmd [CommandVectorLen]float64

	stop chan struct{}
	done chan struct{}
}

// OpenTTY puts stdin into raw mode and starts the background key-reading
// goroutine.
func OpenTTY() (*TTYReader, error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	r := &TTYReader{
		restoreState: state,
		fd:           fd,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go r.run()
	return r, nil
}

func (r *TTYReader) run() {
	defer close(r.done)
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-r.stop:
			return
		default:
		}
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		r.apply(b)
	}
}

func (r *TTYReader) apply(b byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch b {
	case '0':
		r.cmd = [CommandVectorLen]float64{}
		return
	case 'w':
		r.cmd[0] += baseStep
	case 's':
		r.cmd[0] -= baseStep
	case 'a':
		r.cmd[1] += baseStep
	case 'd':
		r.cmd[1] -= baseStep
	case 'q':
		r.cmd[2] += baseStep
	case 'e':
		r.cmd[2] -= baseStep
	case '=':
		r.cmd[3] += poseStep
	case '-':
		r.cmd[3] -= poseStep
	case 'r':
		r.cmd[4] += baseStep
	case 'f':
		r.cmd[4] -= baseStep
	case 't':
		r.cmd[5] += baseStep
	case 'g':
		r.cmd[5] -= baseStep
	default:
		return
	}
	r.cmd = clampVector(r.cmd, ttyClamp)
}

// Poll returns the current command vector snapshot. Overrides is always nil
// for the TTY source: it drives the base velocity/pose vector only.
func (r *TTYReader) Poll() Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Command{Vector: r.cmd}
}

// Close stops the reading goroutine and restores the terminal's original
// mode.
func (r *TTYReader) Close() error {
	close(r.stop)
	<-r.done
	return term.Restore(r.fd, r.restoreState)
}
