// Package fault holds the harness core: the closed set of fault kinds, the
// immutable registry binding each kind to its recipe, and the executor seam
// that separates recipe descriptions from the operations that actually
// destroy the host.
package fault

// Kind identifies one category of inducible fault. KindNone is the
// distinguished "no match" value: it owns no recipe and is never dispatched.
type Kind int

const (
	KindNone Kind = iota
	KindPanic
	KindBug
	KindException
	KindLoop
	KindOverflow
	KindCorruptStack
	KindUnalignedLoadStoreWrite
	KindOverwriteAllocation
	KindWriteAfterFree
	KindSoftLockup
	KindHardLockup
	KindHungTask
	KindSchedulingWhileAtomic
	KindDeadlock
)

// labels holds the canonical command identifiers, indexed by Kind-1.
// Listing and resolution both derive from this table, so the order here is
// the public declaration order and must not be rearranged.
var labels = [...]string{
	"PANIC",
	"BUG",
	"EXCEPTION",
	"LOOP",
	"OVERFLOW",
	"CORRUPT_STACK",
	"UNALIGNED_LOAD_STORE_WRITE",
	"OVERWRITE_ALLOCATION",
	"WRITE_AFTER_FREE",
	"SOFTLOCKUP",
	"HARDLOCKUP",
	"HUNG_TASK",
	"SCHEDULING_WHILE_ATOMIC",
	"DEADLOCK",
}

func (k Kind) String() string {
	if k <= KindNone || int(k) > len(labels) {
		return "NONE"
	}
	return labels[k-1]
}

// LockID names a lock instance owned by the executor. Recipes refer to
// locks by ID so the real lock objects, and the instrumentation attached to
// them, stay on the executor side of the seam.
type LockID int

const (
	// LockSleep is the sleep-capable shared lock (outermost in the
	// atomic-context recipe).
	LockSleep LockID = iota
	// LockAtomic is the non-sleepable shared lock whose acquisition
	// enters atomic context.
	LockAtomic
	// LockOne and LockTwo are the ordered pair the inversion recipe
	// takes in both orders.
	LockOne
	LockTwo
)

func (l LockID) String() string {
	switch l {
	case LockSleep:
		return "sleep_lock"
	case LockAtomic:
		return "atomic_lock"
	case LockOne:
		return "lock1"
	case LockTwo:
		return "lock2"
	default:
		return "unknown_lock"
	}
}
