// Package shutdown implements an ordered, at-most-once cleanup registry.
// Callbacks run in reverse registration order (LIFO) exactly once, whether
// triggered by a normal exit, an OS termination signal, or an explicit call
// from main. See spec.md §4.E.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
)

// cleanup pairs a registered callback with the name it was registered
// under, so failures can be logged with useful context.
type cleanup struct {
	name string
	fn   func()
}

// Manager is a single owned registry, created once at program entry and
// passed by handle to each subsystem that needs to register teardown work.
// It is safe for concurrent registration and idempotent under concurrent or
// repeated shutdown triggers.
type Manager struct {
	mu        sync.Mutex
	callbacks []cleanup
	done      bool
	sigCh     chan os.Signal
}

// New constructs an empty Manager and begins listening for SIGINT/SIGTERM.
// Call Stop to release the signal listener if the manager is no longer
// needed (normal programs simply let it run until process exit).
func New() *Manager {
	m := &Manager{sigCh: make(chan os.Signal, 1)}
	signal.Notify(m.sigCh, os.Interrupt, syscall.SIGTERM)
	go m.waitForSignal()
	return m
}

func (m *Manager) waitForSignal() {
	sig, ok := <-m.sigCh
	if !ok {
		return
	}
	color.Yellow("received signal %v, shutting down", sig)
	m.Execute()
}

// Register appends a named cleanup callback. Callbacks run in reverse
// registration order: the most recently registered callback runs first.
func (m *Manager) Register(name string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cleanup{name: name, fn: fn})
}

// Execute runs every registered callback in reverse order, exactly once. A
// panic inside one callback is recovered and logged so the remaining
// callbacks still get a chance to run.
func (m *Manager) Execute() {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	callbacks := m.callbacks
	m.mu.Unlock()

	for i := len(callbacks) - 1; i >= 0; i-- {
		runCallback(callbacks[i])
	}
}

func runCallback(c cleanup) {
	defer func() {
		if r := recover(); r != nil {
			color.Red("shutdown: cleanup %q panicked: %v", c.name, r)
		}
	}()
	c.fn()
}

// Stop cancels the signal listener without running any callback. Used by
// tests and by short-lived tools that construct a Manager but never intend
// to reach process exit through it.
func (m *Manager) Stop() {
	signal.Stop(m.sigCh)
	close(m.sigCh)
}
