package fault

import (
	"time"
	"unsafe"
)

const (
	// stackBudget caps the dispatch goroutine's stack for the overflow
	// recipe. Eight full frames do not fit.
	stackBudget = 8 << 20
	// overflowFrameSize is one eighth of the budget, claimed per frame.
	overflowFrameSize = stackBudget / 8
	// overflowDepth bounds the recursion regardless of the cap, so the
	// recipe terminates when the overflow is neutralized.
	overflowDepth = 40

	// corruptRunLength is the overrun applied to an 8-byte stack local.
	corruptRunLength = 64

	overwriteAllocLen = 1020
	overwriteOffset   = 1024
	plantedPattern    = 0x12345678
	plantedAltPattern = 0x87654321

	useAfterFreeLen  = 1024
	useAfterFreeFill = 0x78

	atomicSleepQuantum = time.Millisecond
)

func buildRecipes() []Recipe {
	return []Recipe{
		{
			Kind:      KindPanic,
			Label:     "PANIC",
			Summary:   "Terminate the process abnormally with a farewell message.",
			Signature: "SIGABRT with runtime state dumped; no unwind, no deferred functions",
			Run:       runPanic,
		},
		{
			Kind:      KindBug,
			Label:     "BUG",
			Summary:   "Trip a deliberate invariant failure.",
			Signature: "unrecovered panic with backtrace: deliberate BUG invariant trap",
			Run:       runBug,
		},
		{
			Kind:      KindException,
			Label:     "EXCEPTION",
			Summary:   "Store through a guarded page.",
			Signature: "fatal protection fault at a mapped, access-revoked address",
			Run:       runException,
		},
		{
			Kind:      KindLoop,
			Label:     "LOOP",
			Summary:   "Spin forever without yielding.",
			Signature: "dispatch thread pegged at 100% CPU; never returns",
			Run:       runLoop,
		},
		{
			Kind:      KindOverflow,
			Label:     "OVERFLOW",
			Summary:   "Recurse with oversized frames until the stack cap is exceeded.",
			Signature: "fatal error: stack overflow once claimed frames exceed the cap",
			Run:       runOverflow,
		},
		{
			Kind:      KindCorruptStack,
			Label:     "CORRUPT_STACK",
			Summary:   "Overrun a small stack local into its frame's saved state.",
			Signature: "control-flow corruption when the poisoned frame returns",
			Run:       runCorruptStack,
		},
		{
			Kind:      KindUnalignedLoadStoreWrite,
			Label:     "UNALIGNED_LOAD_STORE_WRITE",
			Summary:   "Load and store 4 bytes through a misaligned pointer.",
			Signature: "alignment fault on strict-alignment architectures; silent elsewhere",
			Run:       runUnalignedLoadStoreWrite,
		},
		{
			Kind:      KindOverwriteAllocation,
			Label:     "OVERWRITE_ALLOCATION",
			Summary:   "Write past the end of a heap allocation into its neighbor.",
			Signature: "heap validation fault at the planted value after collection",
			Run:       runOverwriteAllocation,
		},
		{
			Kind:      KindWriteAfterFree,
			Label:     "WRITE_AFTER_FREE",
			Summary:   "Write through a freed allocation after a scheduling point.",
			Signature: "heap validation fault on reused memory filled with the poison byte",
			Run:       runWriteAfterFree,
		},
		{
			Kind:      KindSoftLockup,
			Label:     "SOFTLOCKUP",
			Summary:   "Spin with preemption disabled.",
			Signature: "unpreemptable spin; the scheduler is starved while the host stays up",
			Run:       runSoftLockup,
		},
		{
			Kind:      KindHardLockup,
			Label:     "HARDLOCKUP",
			Summary:   "Spin with preemption and thread interrupts disabled.",
			Signature: "spin with all asynchronous signals masked on the faulting thread",
			Run:       runHardLockup,
		},
		{
			Kind:      KindHungTask,
			Label:     "HUNG_TASK",
			Summary:   "Park the dispatch thread in an uninterruptible wait.",
			Signature: "permanent uninterruptible block at 0% CPU",
			Run:       runHungTask,
		},
		{
			Kind:      KindSchedulingWhileAtomic,
			Label:     "SCHEDULING_WHILE_ATOMIC",
			Summary:   "Sleep while holding a non-sleepable lock.",
			Signature: "fatal scheduling-while-atomic report from the lock discipline layer",
			Run:       runSchedulingWhileAtomic,
		},
		{
			Kind:      KindDeadlock,
			Label:     "DEADLOCK",
			Summary:   "Acquire two locks in both orders.",
			Signature: "lock order inversion report, then exit code 2",
			Run:       runDeadlock,
		},
	}
}

func runPanic(x Executor) {
	x.Abort("have a nice day... ;-)")
}

func runBug(x Executor) {
	x.Fail("deliberate BUG invariant trap")
}

func runException(x Executor) {
	x.StoreUint32(x.GuardPage(), 0)
}

func runLoop(x Executor) {
	x.Spin()
}

func runOverflow(x Executor) {
	x.LimitStack(stackBudget)
	recurse(x, overflowDepth)
}

// recurse claims one oversized frame per call. The frame array must stay on
// this stack and stay live, so it is filled and read here rather than handed
// to the executor.
//
//go:noinline
func recurse(x Executor, depth int) byte {
	var frame [overflowFrameSize]byte
	x.ClaimStack(len(frame))
	for i := range frame {
		frame[i] = 0xFF
	}
	if depth > 1 {
		frame[0] = recurse(x, depth-1)
	}
	return frame[len(frame)-1]
}

func runCorruptStack(x Executor) {
	trashFrame(x)
}

var frameSink byte

// trashFrame passes the local's address as a plain integer so the array
// cannot be moved to the heap, then reads it back so it is live across the
// overrun.
//
//go:noinline
func trashFrame(x Executor) {
	var data [8]byte
	x.Memset(uintptr(unsafe.Pointer(&data)), 0xFF, corruptRunLength)
	frameSink = data[7]
}

// unalignedScratch keeps a 5-byte buffer pinned at a 4-aligned base so that
// base+1 is misaligned for any 4-byte access.
var unalignedScratch = struct {
	_    uint32
	data [5]byte
}{data: [5]byte{1, 2, 3, 4, 5}}

func runUnalignedLoadStoreWrite(x Executor) {
	p := uintptr(unsafe.Pointer(&unalignedScratch.data[1]))
	val := uint32(plantedPattern)
	if x.LoadUint32(p) == 0 {
		val = plantedAltPattern
	}
	x.StoreUint32(p, val)
}

func runOverwriteAllocation(x Executor) {
	base := x.Alloc(overwriteAllocLen)
	x.StoreUint64(base+overwriteOffset, plantedPattern)
	x.Free(base)
	x.ForceGC()
}

func runWriteAfterFree(x Executor) {
	base := x.Alloc(useAfterFreeLen)
	x.Free(base)
	x.Yield()
	x.Memset(base, useAfterFreeFill, useAfterFreeLen)
	x.ForceGC()
}

func runSoftLockup(x Executor) {
	x.DisablePreemption()
	x.Spin()
}

func runHardLockup(x Executor) {
	x.DisableInterrupts()
	x.Spin()
}

func runHungTask(x Executor) {
	x.BlockForever()
}

func runSchedulingWhileAtomic(x Executor) {
	x.AcquireSleepableShared(LockSleep)
	x.AcquireAtomicShared(LockAtomic)
	x.Sleep(atomicSleepQuantum)
	x.ReleaseAtomicShared(LockAtomic)
	x.ReleaseSleepableShared(LockSleep)
}

func runDeadlock(x Executor) {
	x.Lock(LockOne)
	x.Lock(LockTwo)
	x.Unlock(LockTwo)
	x.Unlock(LockOne)
	x.Lock(LockTwo)
	x.Lock(LockOne)
	x.Unlock(LockOne)
	x.Unlock(LockTwo)
}
