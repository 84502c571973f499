// Package ctlfile exposes the harness through a watched command file, so
// `echo PANIC > ctl` works the way writing a proc file does. The watcher
// reads whatever lands in the file, hands it to the dispatch engine, and
// truncates so the next write starts clean.
package ctlfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"faultline/internal/dispatch"
	"faultline/internal/fault"
	"faultline/internal/journal"
)

// DefaultDebounce is how long after the last write event the file is read.
// Shell redirection lands as an open/write/close burst, and reading
// mid-burst would dispatch half a command.
const DefaultDebounce = 50 * time.Millisecond

// Config holds the control-file boundary configuration.
type Config struct {
	// ControlFile is the command file path.
	ControlFile string
	// CatalogFile is the read-only fault listing written next to the
	// control file. Defaults to "faults" in the control file's directory.
	CatalogFile string
	// MaxCommandBytes caps accepted command length on this boundary.
	MaxCommandBytes int
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
}

// Submitter is the dispatch engine seam.
type Submitter interface {
	SubmitReader(ctx context.Context, r io.Reader, maxLen int, origin dispatch.Origin) (int, error)
}

// LastReader reads back the most recent journaled intent. The startup
// leftover warning uses it to point at the command that likely killed the
// previous run.
type LastReader interface {
	Last(ctx context.Context) (*journal.Entry, error)
}

// Watcher owns the control file and its catalog sibling.
type Watcher struct {
	config  Config
	engine  Submitter
	intents LastReader
	logger  *slog.Logger
}

// New prepares the boundary files: the control file is created empty (0600,
// a command surface rather than a status report) and the catalog file is
// rewritten with the current label list.
func New(config Config, engine Submitter, registry *fault.Registry, intents LastReader, logger *slog.Logger) (*Watcher, error) {
	if config.ControlFile == "" {
		return nil, fmt.Errorf("control file path is required")
	}
	// Event names arrive joined from the watched directory; both sides of
	// the comparison in Run need the same cleaned form.
	config.ControlFile = filepath.Clean(config.ControlFile)
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.MaxCommandBytes <= 0 {
		config.MaxCommandBytes = dispatch.MaxCommandBytes
	}
	if config.CatalogFile == "" {
		config.CatalogFile = filepath.Join(filepath.Dir(config.ControlFile), "faults")
	}

	if err := os.MkdirAll(filepath.Dir(config.ControlFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create control directory: %w", err)
	}
	f, err := os.OpenFile(config.ControlFile, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create control file: %w", err)
	}
	_ = f.Close()

	if err := writeCatalog(config.CatalogFile, registry.List()); err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		engine:  engine,
		intents: intents,
		logger:  logger,
	}, nil
}

// writeCatalog renders the label list the same way GET /faults does, one
// label per line. The file is recreated each boot so a registry change
// never leaves a stale listing behind.
func writeCatalog(path string, labels []string) error {
	var b strings.Builder
	for _, label := range labels {
		b.WriteString(label)
		b.WriteByte('\n')
	}
	// Remove first: a 0444 file from the previous boot refuses plain
	// overwrites.
	_ = os.Remove(path)
	if err := os.WriteFile(path, []byte(b.String()), 0444); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Run watches the control file until ctx is cancelled. Write bursts are
// debounced, then the file content goes through the engine and the file is
// truncated.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and shells replace files,
	// and a watch on the old inode dies with it.
	if err := watcher.Add(filepath.Dir(w.config.ControlFile)); err != nil {
		return fmt.Errorf("failed to watch control directory: %w", err)
	}

	w.drainLeftover(ctx)

	w.logger.Info("Control file ready",
		"control_file", w.config.ControlFile,
		"catalog_file", w.config.CatalogFile)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.config.ControlFile {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// Each write pushes the read out; only the channel from the
			// last event is selected on.
			debounce = time.After(w.config.Debounce)

		case <-debounce:
			debounce = nil
			w.consume(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Control file watch error", "error", err)
		}
	}
}

// consume reads the control file through the engine and truncates it.
// An empty file is left alone: our own truncation fires a write event, and
// treating that as a command would loop forever.
func (w *Watcher) consume(ctx context.Context) {
	info, err := os.Stat(w.config.ControlFile)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Error("Failed to stat control file", "error", err)
		}
		return
	}
	if info.Size() == 0 {
		return
	}

	f, err := os.Open(w.config.ControlFile)
	if err != nil {
		w.logger.Error("Failed to open control file", "error", err)
		return
	}
	n, err := w.engine.SubmitReader(ctx, f, w.config.MaxCommandBytes,
		dispatch.Origin{Source: journal.SourceCtlFile})
	_ = f.Close()

	switch {
	case errors.Is(err, dispatch.ErrTooLarge):
		w.logger.Error("Control file content exceeds command capacity",
			"cap", w.config.MaxCommandBytes)
	case errors.Is(err, dispatch.ErrCopyFault):
		w.logger.Error("Control file unreadable", "error", err)
	case errors.Is(err, dispatch.ErrBusy):
		w.logger.Error("Dispatch thread is occupied; command dropped")
	case err != nil:
		w.logger.Error("Control file dispatch failed", "error", err)
	default:
		w.logger.Debug("Control file command accepted", "raw_len", n)
	}

	w.truncate()
}

// drainLeftover clears content that survived from a previous run. A fatal
// command stays in the file after the process dies, and replaying it on
// boot would crash-loop the host.
func (w *Watcher) drainLeftover(ctx context.Context) {
	info, err := os.Stat(w.config.ControlFile)
	if err != nil || info.Size() == 0 {
		return
	}

	lastID := ""
	if w.intents != nil {
		if last, err := w.intents.Last(ctx); err == nil && last != nil {
			lastID = last.ID
		}
	}
	w.logger.Warn("Control file has leftover content from a previous run; clearing without dispatch",
		"bytes", info.Size(), "last_intent_id", lastID)

	w.truncate()
}

func (w *Watcher) truncate() {
	if err := os.Truncate(w.config.ControlFile, 0); err != nil {
		w.logger.Error("Failed to truncate control file", "error", err)
	}
}
