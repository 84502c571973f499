package dispatch

import (
	"context"
	"errors"

	"faultline/internal/fault"
	"faultline/internal/journal"
)

// MaxCommandBytes is the hard capacity of the command buffer: 31 data bytes
// plus the terminator slot. Boundaries may configure a lower cap, never a
// higher one.
const MaxCommandBytes = 31

var (
	// ErrTooLarge means the submitted bytes exceed the command capacity.
	// Nothing was resolved or invoked.
	ErrTooLarge = errors.New("command exceeds capacity")
	// ErrCopyFault means the command bytes could not be read from the
	// caller's stream.
	ErrCopyFault = errors.New("command bytes unreadable")
	// ErrBusy means the dispatch thread is still occupied by an earlier
	// fault and the caller gave up waiting.
	ErrBusy = errors.New("dispatch thread is occupied by a prior fault")
)

// Origin identifies the boundary and caller a command arrived through. It is
// journaled with the intent and echoed in events.
type Origin struct {
	Source    string
	Principal string
}

// IntentRecorder is the slice of the journal the engine needs.
type IntentRecorder interface {
	Record(ctx context.Context, in journal.Intent) (string, error)
}

// Config carries the engine's behavior switches.
type Config struct {
	// Armed gates recipe invocation. A disarmed engine journals and
	// publishes intents but never runs the recipe.
	Armed bool
}

type request struct {
	kind   fault.Kind
	rawLen int
	origin Origin
	done   chan struct{}
}
