package syncutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreemptCountLifecycle(t *testing.T) {
	assert.Equal(t, int32(0), PreemptCount())

	DisablePreempt()
	DisablePreempt()
	assert.Equal(t, int32(2), PreemptCount())

	EnablePreempt()
	assert.Equal(t, int32(1), PreemptCount())
	EnablePreempt()
	assert.Equal(t, int32(0), PreemptCount())
}

func TestEnablePreemptUnderflowPanics(t *testing.T) {
	assert.Panics(t, func() {
		EnablePreempt()
	})
	// The failed Add still decremented; restore balance for later tests.
	DisablePreempt()
	assert.Equal(t, int32(0), PreemptCount())
}

func TestMightSleepOutsideAtomicContext(t *testing.T) {
	assert.NotPanics(t, func() {
		MightSleep("probe")
	})
}

func TestMightSleepInAtomicContext(t *testing.T) {
	DisablePreempt()
	defer EnablePreempt()

	assert.PanicsWithValue(t,
		"scheduling while atomic: probe (preempt_count=1)",
		func() { MightSleep("probe") },
	)
}

func TestCheckedSleepOutsideAtomicContext(t *testing.T) {
	start := time.Now()
	assert.NotPanics(t, func() {
		CheckedSleep(10 * time.Millisecond)
	})
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSpinRWLockReadEntersAtomicContext(t *testing.T) {
	var l SpinRWLock

	l.RLock()
	assert.Equal(t, int32(1), PreemptCount())
	assert.Panics(t, func() { CheckedSleep(time.Millisecond) })
	l.RUnlock()
	assert.Equal(t, int32(0), PreemptCount())
}

func TestSpinRWLockWriteEntersAtomicContext(t *testing.T) {
	var l SpinRWLock

	l.Lock()
	assert.Equal(t, int32(1), PreemptCount())
	l.Unlock()
	assert.Equal(t, int32(0), PreemptCount())
}

func TestSpinRWLockNestedReaders(t *testing.T) {
	var l SpinRWLock

	l.RLock()
	l.RLock()
	assert.Equal(t, int32(2), PreemptCount())
	l.RUnlock()
	l.RUnlock()
	assert.Equal(t, int32(0), PreemptCount())
}

func TestSpinRWLockMisuse(t *testing.T) {
	t.Run("unlock without lock", func(t *testing.T) {
		var l SpinRWLock
		assert.Panics(t, func() { l.Unlock() })
	})

	t.Run("read-unlock without read-lock", func(t *testing.T) {
		var l SpinRWLock
		assert.Panics(t, func() { l.RUnlock() })
		// The panic fires before EnablePreempt, so the global
		// counter is untouched.
		assert.Equal(t, int32(0), PreemptCount())
	})
}
