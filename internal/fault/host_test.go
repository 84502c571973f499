package fault

import (
	"os"
	"runtime/debug"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/syncutil"
)

// memsetTarget lives at package scope so its backing array escapes to the
// heap and the address handed to the executor cannot move mid-test.
var memsetTarget *[16]byte

// plantAnchor is a real variable whose address survives the validator's
// probe load, so corruption tests end in a recoverable panic instead of a
// protection fault.
var plantAnchor byte

func TestGuardPageIsStableMappedAndAligned(t *testing.T) {
	x := NewHostExecutor()

	g1 := x.GuardPage()
	g2 := x.GuardPage()

	require.NotZero(t, g1)
	assert.Equal(t, g1, g2)
	assert.Zero(t, int(g1)%os.Getpagesize())
}

func TestAllocatorRejectsRequestsOutsideTheTrackedClass(t *testing.T) {
	x := NewHostExecutor()

	assert.Panics(t, func() { x.Alloc(0) })
	assert.Panics(t, func() { x.Alloc(-8) })
	assert.Panics(t, func() { x.Alloc(4096) })
}

func TestAllocThenCleanFreeLeavesHeapIntact(t *testing.T) {
	x := NewHostExecutor()

	base := x.Alloc(1020)
	require.NotZero(t, base)
	assert.NotPanics(t, func() { x.Free(base) })
	assert.NotPanics(t, func() { x.ForceGC() })
}

func TestFreeOfUntrackedAddressPanics(t *testing.T) {
	x := NewHostExecutor()

	assert.Panics(t, func() { x.Free(0xdeadbeef) })
}

func TestFreeDetectsAWriteBeyondTheAllocation(t *testing.T) {
	x := NewHostExecutor()

	base := x.Alloc(1020)
	require.NotZero(t, base)

	// One word past the tracked class boundary lands in the first pointer
	// slot of the adjacent block. Planting a live address keeps the
	// validator's probe load survivable.
	x.StoreUint64(base+1024, uint64(uintptr(unsafe.Pointer(&plantAnchor))))

	defer func() {
		r := recover()
		require.NotNil(t, r, "free accepted a smashed neighbor")
		msg, ok := r.(string)
		require.True(t, ok)
		assert.Contains(t, msg, "heap corruption")
	}()
	x.Free(base)
}

func TestMemsetFillsExactlyTheRequestedRange(t *testing.T) {
	x := NewHostExecutor()

	memsetTarget = new([16]byte)
	addr := uintptr(unsafe.Pointer(memsetTarget))

	x.Memset(addr+4, 0xAB, 8)

	for i, b := range memsetTarget {
		if i >= 4 && i < 12 {
			assert.Equal(t, byte(0xAB), b, "byte %d", i)
		} else {
			assert.Zero(t, b, "byte %d", i)
		}
	}
}

func TestWordStoresAndLoadsRoundTrip(t *testing.T) {
	x := NewHostExecutor()

	memsetTarget = new([16]byte)
	addr := uintptr(unsafe.Pointer(memsetTarget))

	x.StoreUint32(addr, 0x12345678)
	assert.Equal(t, uint32(0x12345678), x.LoadUint32(addr))

	x.StoreUint64(addr+8, 0xA5A5A5A55A5A5A5A)
	assert.Equal(t, uint32(0x12345678), x.LoadUint32(addr), "low word untouched by the high store")
}

func TestFailPanicsWithTheGivenMessage(t *testing.T) {
	x := NewHostExecutor()

	assert.PanicsWithValue(t, "boom", func() { x.Fail("boom") })
}

func TestYieldAndUncheckedSleepReturn(t *testing.T) {
	x := NewHostExecutor()

	x.Yield()

	start := time.Now()
	x.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestSleepInsideAtomicContextPanics(t *testing.T) {
	x := NewHostExecutor()

	x.AcquireAtomicShared(LockAtomic)
	assert.Panics(t, func() { x.Sleep(time.Millisecond) })
	x.ReleaseAtomicShared(LockAtomic)

	assert.Zero(t, syncutil.PreemptCount())
}

func TestSleepableSharedAcquireIsASchedulingPoint(t *testing.T) {
	x := NewHostExecutor()

	x.AcquireAtomicShared(LockAtomic)
	assert.Panics(t, func() { x.AcquireSleepableShared(LockSleep) })
	x.ReleaseAtomicShared(LockAtomic)

	x.AcquireSleepableShared(LockSleep)
	x.ReleaseSleepableShared(LockSleep)
	assert.Zero(t, syncutil.PreemptCount())
}

func TestSpinLockPairTracksAtomicDepth(t *testing.T) {
	x := NewHostExecutor()

	x.Lock(LockOne)
	x.Lock(LockTwo)
	assert.Equal(t, int32(2), syncutil.PreemptCount())

	x.Unlock(LockTwo)
	x.Unlock(LockOne)
	assert.Zero(t, syncutil.PreemptCount())
}

func TestLockPrimitivesRejectForeignIDs(t *testing.T) {
	x := NewHostExecutor()

	assert.Panics(t, func() { x.Lock(LockSleep) })
	assert.Panics(t, func() { x.AcquireSleepableShared(LockOne) })
	assert.Panics(t, func() { x.AcquireAtomicShared(LockTwo) })

	assert.Zero(t, syncutil.PreemptCount())
}

func TestClaimStackAccumulates(t *testing.T) {
	x := NewHostExecutor()

	x.ClaimStack(1 << 20)
	x.ClaimStack(1 << 20)
	assert.Equal(t, int64(2<<20), x.ClaimedStack())
}

func TestLimitStackAppliesTheCap(t *testing.T) {
	x := NewHostExecutor()

	restore := debug.SetMaxStack(64 << 20)
	x.LimitStack(128 << 20)
	got := debug.SetMaxStack(restore)

	assert.Equal(t, 128<<20, got)
}
