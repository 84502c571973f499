package syncutil

import (
	"fmt"
	"sync/atomic"
	"time"
)

// preemptCount tracks how many non-sleepable locks the calling context
// holds. While it is above zero the context is atomic: any operation that
// could suspend the caller is a fatal violation. A single counter (rather
// than per-goroutine state) matches the dispatch model, where exactly one
// thread ever executes recipes.
var preemptCount atomic.Int32

// DisablePreempt marks entry into atomic context.
func DisablePreempt() { preemptCount.Add(1) }

// EnablePreempt marks exit from atomic context.
func EnablePreempt() {
	if preemptCount.Add(-1) < 0 {
		panic("syncutil: preempt count underflow")
	}
}

// PreemptCount returns the current atomic-context depth.
func PreemptCount() int32 { return preemptCount.Load() }

// MightSleep is the scheduling-point assertion: called at the top of every
// operation that may suspend the caller. In atomic context it terminates
// the process through an unrecovered panic whose message carries the
// classic signature.
func MightSleep(op string) {
	if n := preemptCount.Load(); n > 0 {
		panic(fmt.Sprintf("scheduling while atomic: %s (preempt_count=%d)", op, n))
	}
}

// CheckedSleep suspends the caller for d after asserting the context
// allows it.
func CheckedSleep(d time.Duration) {
	MightSleep("sleep")
	time.Sleep(d)
}

// SpinRWLock is a reader/writer spin lock. It never sleeps: acquisition
// busy-waits, and holding it in either mode puts the caller in atomic
// context. state is -1 when write-held, otherwise the reader count.
//
// Contention is not a design concern. In the dispatch model a single
// thread takes these locks, so the spin paths exist for correctness of
// the state machine, not throughput.
type SpinRWLock struct {
	state atomic.Int32
}

func (l *SpinRWLock) Lock() {
	DisablePreempt()
	for !l.state.CompareAndSwap(0, -1) {
	}
}

func (l *SpinRWLock) Unlock() {
	if !l.state.CompareAndSwap(-1, 0) {
		panic("syncutil: unlock of non-write-held SpinRWLock")
	}
	EnablePreempt()
}

func (l *SpinRWLock) RLock() {
	DisablePreempt()
	for {
		n := l.state.Load()
		if n >= 0 && l.state.CompareAndSwap(n, n+1) {
			return
		}
	}
}

func (l *SpinRWLock) RUnlock() {
	if l.state.Add(-1) < 0 {
		panic("syncutil: read-unlock of non-read-held SpinRWLock")
	}
	EnablePreempt()
}
