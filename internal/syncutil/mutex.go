// Package syncutil provides the harness's lock primitives: order-instrumented
// mutexes wrapping go-deadlock, a non-sleepable spin lock, and the atomic
// context bookkeeping that backs the scheduling-while-atomic trap.
package syncutil

import (
	"io"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Detection is always on. The harness exists to trip the detector, so there
// is no build-tagged fallback to bare sync mutexes.

// Mutex is an exclusive lock whose acquisition order is recorded. Acquiring
// two Mutexes in inverted order across call sites is reported fatally by the
// detector, which is the behavior the lock-order inversion recipe relies on.
type Mutex struct {
	mu deadlock.Mutex
}

func (m *Mutex) Lock()   { m.mu.Lock() }
func (m *Mutex) Unlock() { m.mu.Unlock() }

// RWMutex is a sleep-capable reader/writer lock with the same order
// instrumentation. Acquiring it is a scheduling point and is therefore
// checked against atomic context.
type RWMutex struct {
	mu deadlock.RWMutex
}

func (m *RWMutex) Lock() {
	MightSleep("rwmutex write acquire")
	m.mu.Lock()
}

func (m *RWMutex) Unlock() { m.mu.Unlock() }

func (m *RWMutex) RLock() {
	MightSleep("rwmutex read acquire")
	m.mu.RLock()
}

func (m *RWMutex) RUnlock() { m.mu.RUnlock() }

// ConfigureDetector redirects the detector's report stream and the handler
// invoked on a potential deadlock. The default handler terminates the
// process with exit code 2 after the report is written, which is the
// wanted production outcome. Tests install a recording handler instead.
func ConfigureDetector(logBuf io.Writer, onPotentialDeadlock func()) {
	if logBuf != nil {
		deadlock.Opts.LogBuf = logBuf
	}
	if onPotentialDeadlock != nil {
		deadlock.Opts.OnPotentialDeadlock = onPotentialDeadlock
	}
}

// DisableWaitTimeout turns off the "lock held too long" watchdog while
// keeping order detection. Recipes park forever while holding locks on
// purpose; without this the detector would fire on the wrong signal.
func DisableWaitTimeout() {
	deadlock.Opts.DeadlockTimeout = 0
}
