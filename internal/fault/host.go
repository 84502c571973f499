package fault

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"faultline/internal/syncutil"
)

const (
	// nodeSize matches the allocator size class the heap recipes target.
	nodeSize = 1024

	allocBatch     = 16
	allocAttempts  = 8
	freeRepopulate = 8

	nodeTag = 0xA5A5A5A5A5A5A5A5
)

// heapNode fills one nodeSize-class slot with pointer slots plus a tag word,
// so any byte an errant write lands on overlays state the validator checks.
type heapNode struct {
	ptrs [(nodeSize - 8) / unsafe.Sizeof(uintptr(0))]*byte
	tag  uint64
}

// canarySentinel is the one legal target for every node pointer slot.
var canarySentinel byte

// memProbeSink forces validation loads to happen.
var memProbeSink byte

func newHeapNode() *heapNode {
	n := new(heapNode)
	for i := range n.ptrs {
		n.ptrs[i] = &canarySentinel
	}
	n.tag = nodeTag
	return n
}

// HostExecutor carries recipes out for real. Apart from the catalog-safe
// primitives (Yield, accounting, lock acquisition in consistent order), its
// operations damage or wedge the calling process and most never return.
type HostExecutor struct {
	mu      sync.Mutex
	heap    map[uintptr]int
	pinned  []*heapNode
	claimed atomic.Int64

	guardOnce sync.Once
	guard     []byte
	guardAddr uintptr

	spins      map[LockID]*syncutil.Mutex
	sleepables map[LockID]*syncutil.RWMutex
	atomics    map[LockID]*syncutil.SpinRWLock

	park chan struct{}
}

var _ Executor = (*HostExecutor)(nil)

func NewHostExecutor() *HostExecutor {
	return &HostExecutor{
		heap: make(map[uintptr]int),
		spins: map[LockID]*syncutil.Mutex{
			LockOne: {},
			LockTwo: {},
		},
		sleepables: map[LockID]*syncutil.RWMutex{
			LockSleep: {},
		},
		atomics: map[LockID]*syncutil.SpinRWLock{
			LockAtomic: {},
		},
		park: make(chan struct{}),
	}
}

func (e *HostExecutor) Abort(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	_ = unix.Kill(unix.Getpid(), unix.SIGABRT)
	select {}
}

func (e *HostExecutor) Fail(msg string) {
	panic(msg)
}

func (e *HostExecutor) GuardPage() uintptr {
	e.guardOnce.Do(func() {
		pg, err := unix.Mmap(-1, 0, os.Getpagesize(),
			unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
		if err != nil {
			panic(fmt.Sprintf("fault: mapping guard page: %v", err))
		}
		e.guard = pg
		e.guardAddr = uintptr(unsafe.Pointer(&pg[0]))
	})
	return e.guardAddr
}

// Alloc returns a nodeSize-class block flanked on both sides by tracked
// blocks of the same class. The whole batch stays pinned so the collector
// and the validator keep seeing the neighbors.
func (e *HostExecutor) Alloc(n int) uintptr {
	if n <= 0 || n > nodeSize {
		panic(fmt.Sprintf("fault: alloc of %d bytes is outside the tracked class", n))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for range allocAttempts {
		batch := make([]*heapNode, allocBatch)
		for i := range batch {
			batch[i] = newHeapNode()
		}
		base := len(e.pinned)
		e.pinned = append(e.pinned, batch...)
		for i := 0; i+2 < len(batch); i++ {
			a := uintptr(unsafe.Pointer(batch[i]))
			b := uintptr(unsafe.Pointer(batch[i+1]))
			c := uintptr(unsafe.Pointer(batch[i+2]))
			if b == a+nodeSize && c == b+nodeSize {
				e.heap[b] = base + i + 1
				return b
			}
		}
	}
	panic("fault: no adjacent run obtained in the tracked size class")
}

// Free validates every tracked block, releases the target, and repopulates
// its size class so the freed slot is reused by pointer-bearing memory.
func (e *HostExecutor) Free(addr uintptr) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.heap[addr]
	if !ok {
		panic(fmt.Sprintf("fault: free of untracked address %#x", addr))
	}
	e.validate()
	e.pinned[idx] = nil
	delete(e.heap, addr)
	runtime.GC()
	for range freeRepopulate {
		e.pinned = append(e.pinned, newHeapNode())
	}
}

func (e *HostExecutor) LoadUint32(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

func (e *HostExecutor) StoreUint32(addr uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v
}

func (e *HostExecutor) StoreUint64(addr uintptr, v uint64) {
	*(*uint64)(unsafe.Pointer(addr)) = v
}

func (e *HostExecutor) Memset(addr uintptr, b byte, n int) {
	for i := 0; i < n; i++ {
		*(*byte)(unsafe.Pointer(addr + uintptr(i))) = b
	}
}

func (e *HostExecutor) ForceGC() {
	runtime.GC()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.validate()
}

// validate walks every pinned block. A pointer slot holding anything but the
// sentinel is corruption; the stored value is loaded through first so the
// crash report names the planted address.
func (e *HostExecutor) validate() {
	for _, n := range e.pinned {
		if n == nil {
			continue
		}
		for i, p := range n.ptrs {
			if p == &canarySentinel {
				continue
			}
			if p != nil {
				memProbeSink = *p
			}
			panic(fmt.Sprintf("fault: heap corruption in block %p slot %d: %#x",
				n, i, uintptr(unsafe.Pointer(p))))
		}
		if n.tag != nodeTag {
			panic(fmt.Sprintf("fault: heap corruption in block %p tag: %#x", n, n.tag))
		}
	}
}

func (e *HostExecutor) Spin() {
	for {
	}
}

func (e *HostExecutor) Yield() {
	runtime.Gosched()
}

func (e *HostExecutor) Sleep(d time.Duration) {
	syncutil.CheckedSleep(d)
}

func (e *HostExecutor) BlockForever() {
	runtime.LockOSThread()
	maskSignals(nil)
	<-e.park
}

// DisablePreemption pins the calling goroutine to its thread, shrinks the
// scheduler to one processor, and masks the runtime's preemption signal on
// this thread. A subsequent spin starves everything else in the process.
func (e *HostExecutor) DisablePreemption() {
	runtime.LockOSThread()
	runtime.GOMAXPROCS(1)
	syncutil.DisablePreempt()
	maskSignals([]unix.Signal{unix.SIGURG})
}

// DisableInterrupts is DisablePreemption plus a full signal mask, so no
// asynchronous delivery of any kind lands on the faulting thread.
func (e *HostExecutor) DisableInterrupts() {
	runtime.LockOSThread()
	runtime.GOMAXPROCS(1)
	syncutil.DisablePreempt()
	maskSignals(nil)
}

// maskSignals blocks the given signals on the calling thread; nil blocks
// every signal the kernel allows a thread to block.
func maskSignals(signos []unix.Signal) {
	var set unix.Sigset_t
	if signos == nil {
		for i := range set.Val {
			set.Val[i] = ^uint64(0)
		}
	} else {
		for _, s := range signos {
			idx := (int(s) - 1) / 64
			set.Val[idx] |= uint64(1) << ((int(s) - 1) % 64)
		}
	}
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil); err != nil {
		panic(fmt.Sprintf("fault: masking thread signals: %v", err))
	}
}

func (e *HostExecutor) LimitStack(n int) {
	debug.SetMaxStack(n)
}

func (e *HostExecutor) ClaimStack(n int) {
	e.claimed.Add(int64(n))
}

// ClaimedStack reports the total stack bytes recipes have claimed.
func (e *HostExecutor) ClaimedStack() int64 {
	return e.claimed.Load()
}

func (e *HostExecutor) Lock(id LockID) {
	l := e.spin(id)
	syncutil.DisablePreempt()
	l.Lock()
}

func (e *HostExecutor) Unlock(id LockID) {
	l := e.spin(id)
	l.Unlock()
	syncutil.EnablePreempt()
}

func (e *HostExecutor) AcquireSleepableShared(id LockID) {
	e.sleepable(id).RLock()
}

func (e *HostExecutor) ReleaseSleepableShared(id LockID) {
	e.sleepable(id).RUnlock()
}

func (e *HostExecutor) AcquireAtomicShared(id LockID) {
	e.atomicShared(id).RLock()
}

func (e *HostExecutor) ReleaseAtomicShared(id LockID) {
	e.atomicShared(id).RUnlock()
}

func (e *HostExecutor) spin(id LockID) *syncutil.Mutex {
	l, ok := e.spins[id]
	if !ok {
		panic(fmt.Sprintf("fault: %s is not a spin lock", id))
	}
	return l
}

func (e *HostExecutor) sleepable(id LockID) *syncutil.RWMutex {
	l, ok := e.sleepables[id]
	if !ok {
		panic(fmt.Sprintf("fault: %s is not a sleepable lock", id))
	}
	return l
}

func (e *HostExecutor) atomicShared(id LockID) *syncutil.SpinRWLock {
	l, ok := e.atomics[id]
	if !ok {
		panic(fmt.Sprintf("fault: %s is not an atomic shared lock", id))
	}
	return l
}
