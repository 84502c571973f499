// Package dispatch owns the path between a submitted command and a running
// recipe. Commands rendezvous with a single goroutine locked to its own OS
// thread; whatever a recipe does to that thread, the boundaries that fed it
// stay blocked the way a write(2) into the original control file would.
package dispatch

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"faultline/internal/events"
	"faultline/internal/fault"
	"faultline/internal/journal"
)

type Engine struct {
	cfg      Config
	registry *fault.Registry
	exec     fault.Executor
	recorder IntentRecorder
	hub      *events.Hub
	logger   *slog.Logger

	requests chan request
}

func New(cfg Config, reg *fault.Registry, exec fault.Executor, rec IntentRecorder, hub *events.Hub, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		registry: reg,
		exec:     exec,
		recorder: rec,
		hub:      hub,
		logger:   logger,
		requests: make(chan request),
	}
}

// Armed reports whether resolved commands actually reach their recipes.
func (e *Engine) Armed() bool {
	return e.cfg.Armed
}

// Peek resolves raw command bytes without dispatching, journaling or
// publishing anything. Boundaries use it for permission checks.
func (e *Engine) Peek(raw []byte) (fault.Kind, string) {
	command := normalize(raw)
	return e.registry.Resolve(command), command
}

// Submit accepts raw command bytes from a boundary. The returned count is
// the number of bytes accepted; it carries no success or failure meaning
// beyond that. Unknown commands are deliberately indistinguishable from
// dispatched ones.
func (e *Engine) Submit(ctx context.Context, raw []byte, maxLen int, origin Origin) (int, error) {
	if maxLen <= 0 || maxLen > MaxCommandBytes {
		maxLen = MaxCommandBytes
	}
	if len(raw) > maxLen {
		e.hub.Publish(events.TypeFaultRejected, events.RejectPayload{
			Reason: "too_large",
			Source: origin.Source,
			RawLen: len(raw),
		})
		e.logger.Error("Command rejected: exceeds capacity",
			"raw_len", len(raw), "cap", maxLen, "source", origin.Source)
		return 0, ErrTooLarge
	}

	command := normalize(raw)
	kind := e.registry.Resolve(command)
	if kind == fault.KindNone {
		e.hub.Publish(events.TypeCommandIgnored, events.IgnoredPayload{
			Command: command,
			Source:  origin.Source,
		})
		e.logger.Debug("Ignoring unknown command", "command", command, "source", origin.Source)
		return len(raw), nil
	}

	req := request{
		kind:   kind,
		rawLen: len(raw),
		origin: origin,
		done:   make(chan struct{}),
	}
	select {
	case e.requests <- req:
	case <-ctx.Done():
		e.logger.Error("Dispatch thread unavailable", "label", kind.String(), "source", origin.Source)
		return 0, ErrBusy
	}

	// From here the caller blocks until the dispatch thread finishes.
	// Terminal recipes mean it never does.
	<-req.done
	return len(raw), nil
}

// SubmitReader drains a boundary's byte stream through the same checks the
// original applied to a userspace buffer: unreadable bytes fail before
// resolution, and anything past the cap is refused outright.
func (e *Engine) SubmitReader(ctx context.Context, r io.Reader, maxLen int, origin Origin) (int, error) {
	if maxLen <= 0 || maxLen > MaxCommandBytes {
		maxLen = MaxCommandBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(maxLen)+1))
	if err != nil {
		e.hub.Publish(events.TypeFaultRejected, events.RejectPayload{
			Reason: "copy_fault",
			Source: origin.Source,
		})
		e.logger.Error("Command bytes unreadable", "source", origin.Source, "error", err)
		return 0, ErrCopyFault
	}
	if len(data) > maxLen {
		e.hub.Publish(events.TypeFaultRejected, events.RejectPayload{
			Reason: "too_large",
			Source: origin.Source,
			RawLen: len(data),
		})
		e.logger.Error("Command rejected: exceeds capacity",
			"raw_len", len(data), "cap", maxLen, "source", origin.Source)
		return 0, ErrTooLarge
	}
	return e.Submit(ctx, data, maxLen, origin)
}

// Run is the dispatch loop. It wires the goroutine to one OS thread for its
// whole life, so thread-level damage from a recipe stays where the recipe
// put it. Run returns only on context cancellation.
func (e *Engine) Run(ctx context.Context) error {
	runtime.LockOSThread()
	e.logger.Info("Dispatch thread ready", "armed", e.cfg.Armed)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-e.requests:
			e.process(ctx, req)
		}
	}
}

func (e *Engine) process(ctx context.Context, req request) {
	defer close(req.done)

	rec, ok := e.registry.Recipe(req.kind)
	if !ok {
		return
	}

	id, err := e.recorder.Record(ctx, journal.Intent{
		Label:     rec.Label,
		Kind:      int(req.kind),
		Source:    req.origin.Source,
		Principal: req.origin.Principal,
		RawLen:    req.rawLen,
		Armed:     e.cfg.Armed,
	})
	if err != nil {
		// No durable record, no fault. A crash nobody can attribute
		// is worse than a skipped one.
		e.logger.Error("Intent journal write failed; refusing to arm",
			"label", rec.Label, "error", err)
		return
	}

	payload := events.IntentPayload{
		IntentID:  id,
		Label:     rec.Label,
		Source:    req.origin.Source,
		Principal: req.origin.Principal,
		RawLen:    req.rawLen,
	}

	if !e.cfg.Armed {
		e.hub.Publish(events.TypeFaultSuppressed, payload)
		e.logger.Warn("Fault suppressed: harness is disarmed",
			"label", rec.Label, "intent_id", id, "source", req.origin.Source)
		return
	}

	e.hub.Publish(events.TypeFaultArmed, payload)
	e.logger.Warn("Arming fault",
		"label", rec.Label, "intent_id", id, "source", req.origin.Source,
		"signature", rec.Signature)

	rec.Run(e.exec)

	e.logger.Debug("Recipe returned", "label", rec.Label, "intent_id", id)
}

// normalize reproduces the original command conditioning: a fixed buffer one
// byte larger than the cap, truncation at the first NUL, then whitespace
// trimmed from both ends so "PANIC\n" and "PANIC" are the same command.
func normalize(raw []byte) string {
	var buf [MaxCommandBytes + 1]byte
	n := copy(buf[:MaxCommandBytes], raw)
	for i := range n {
		if buf[i] == 0 {
			n = i
			break
		}
	}
	return strings.TrimSpace(string(buf[:n]))
}
