package fault

import "time"

//go:generate mockgen -destination=mocks/executor.go -package=mocks faultline/internal/fault Executor

// Executor performs the primitive operations recipes are described in terms
// of. The host implementation carries out each operation for real and most of
// them never return; the generated mock records calls and returns so recipe
// structure can be asserted without harming the test process.
type Executor interface {
	// Abort terminates the process abnormally with msg on stderr. No
	// unwind, no deferred functions.
	Abort(msg string)
	// Fail raises an invariant-violation trap that unwinds the dispatch
	// thread and takes the process down with a backtrace.
	Fail(msg string)

	// GuardPage returns the address of a mapped page with all access
	// revoked. Any load or store through it is a protection fault.
	GuardPage() uintptr
	// Alloc returns the base address of a live allocation of n bytes,
	// placed adjacent to tracked allocations of the same size class so
	// out-of-bounds damage lands somewhere observable.
	Alloc(n int) uintptr
	// Free releases an allocation obtained from Alloc and encourages
	// immediate reuse of its memory.
	Free(addr uintptr)

	LoadUint32(addr uintptr) uint32
	StoreUint32(addr uintptr, v uint32)
	StoreUint64(addr uintptr, v uint64)
	// Memset writes n copies of b starting at addr, regardless of what
	// addr points into.
	Memset(addr uintptr, b byte, n int)
	// ForceGC runs the collector so heap damage is validated now rather
	// than at some later allocation.
	ForceGC()

	// Spin burns CPU forever without any scheduling point.
	Spin()
	// Yield is a single voluntary scheduling point.
	Yield()
	// Sleep blocks for d and is checked against atomic context.
	Sleep(d time.Duration)
	// BlockForever parks the calling thread in an uninterruptible wait.
	BlockForever()

	// DisablePreemption makes the calling thread unpreemptable until the
	// process dies: no involuntary scheduling points will be delivered.
	DisablePreemption()
	// DisableInterrupts additionally masks asynchronous signals on the
	// calling thread, so not even diagnostic interrupts land there.
	DisableInterrupts()

	// LimitStack caps the growable stack of the calling goroutine's
	// world at n bytes.
	LimitStack(n int)
	// ClaimStack accounts n bytes of stack consumed by the caller's
	// frame. The host implementation keeps the claimed region live.
	ClaimStack(n int)

	Lock(id LockID)
	Unlock(id LockID)
	// AcquireSleepableShared takes id in shared mode through a lock that
	// is allowed to sleep.
	AcquireSleepableShared(id LockID)
	ReleaseSleepableShared(id LockID)
	// AcquireAtomicShared takes id in shared mode through a non-sleepable
	// lock; the calling thread is in atomic context until release.
	AcquireAtomicShared(id LockID)
	ReleaseAtomicShared(id LockID)
}
