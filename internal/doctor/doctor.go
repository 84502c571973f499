// Package doctor runs the crash-readiness preflight: configuration
// cross-checks plus host checks that decide whether a fired fault will
// actually leave usable evidence behind.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"faultline/internal/auth"
	"faultline/internal/config"
	"faultline/internal/fault"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates configuration against the fault registry and probes the
// host for crash-evidence settings.
type Doctor struct {
	cfg      *config.Config
	registry *fault.Registry
	procRoot string
}

// New creates a Doctor from a loaded config and the fault registry.
func New(cfg *config.Config, registry *fault.Registry) *Doctor {
	return &Doctor{cfg: cfg, registry: registry, procRoot: "/proc"}
}

// Validate runs all checks and returns a result. Host checks never produce
// errors: a missing /proc file means a dev machine, not a broken config.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateHarnessConfig(r)
	d.validateAPIConfig(r)
	d.validateTokenScopes(r)
	d.validateJournalPath(r)
	d.validateControlFile(r)
	d.checkCoreDumps(r)
	d.checkCorePattern(r)
	d.checkTraceback(r)
	d.checkWatchdogs(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateHarnessConfig checks required harness fields.
func (d *Doctor) validateHarnessConfig(r *Result) {
	if d.cfg.State.Path == "" {
		d.addError(r, "harness", "state.path", "state.path is required")
	}
	if d.cfg.Harness.MaxCommandBytes < 1 || d.cfg.Harness.MaxCommandBytes > 31 {
		d.addError(r, "harness", "harness.max_command_bytes",
			fmt.Sprintf("max_command_bytes %d outside [1,31]", d.cfg.Harness.MaxCommandBytes))
	}
	if !d.cfg.Harness.Armed {
		d.addWarning(r, "harness", "harness.armed",
			"harness is disarmed; commands will be journaled but no fault will fire")
	}
}

// validateAPIConfig checks API server settings.
func (d *Doctor) validateAPIConfig(r *Result) {
	if !d.cfg.API.Enabled {
		return
	}
	if d.cfg.API.Listen == "" {
		d.addError(r, "api", "api.listen", "api.listen is required when API is enabled")
	}
	if len(d.cfg.AllTokens()) == 0 {
		d.addError(r, "api", "api.auth",
			"API enabled with no tokens; an unauthenticated crash trigger is not acceptable")
	}
}

// validateTokenScopes checks that trigger scopes name real fault labels.
func (d *Doctor) validateTokenScopes(r *Result) {
	for i, token := range d.cfg.AllTokens() {
		if token.Name == "" {
			d.addWarning(r, "token_scopes", fmt.Sprintf("tokens[%d]", i),
				"token has no name; journal rows will attribute it by fingerprint")
		}
		for j, scope := range token.Scopes {
			field := fmt.Sprintf("tokens[%d].scopes[%d]", i, j)
			d.validateSingleScope(r, scope, field)
		}
	}
}

func (d *Doctor) validateSingleScope(r *Result, scope, field string) {
	if scope == auth.ScopeAll || scope == auth.ScopeRead || scope == auth.ScopeTriggerAll {
		return
	}

	if label, ok := auth.TriggerLabel(scope); ok {
		if d.registry.Resolve(label) == fault.KindNone {
			d.addError(r, "token_scopes", field,
				fmt.Sprintf("scope %q references unknown fault label %q", scope, label))
		}
		return
	}

	d.addError(r, "token_scopes", field,
		fmt.Sprintf("invalid scope %q (expected read, *, trigger:*, or trigger:<LABEL>)", scope))
}

// validateJournalPath checks that the journal's directory can be created
// and written.
func (d *Doctor) validateJournalPath(r *Result) {
	if d.cfg.State.Path == "" {
		return
	}
	dir := filepath.Dir(d.cfg.State.Path)
	if !writable(dir) {
		d.addError(r, "journal", "state.path",
			fmt.Sprintf("journal directory %q is not writable", dir))
	}
}

// validateControlFile checks the control file's directory when the file
// boundary is enabled.
func (d *Doctor) validateControlFile(r *Result) {
	if d.cfg.Harness.ControlFile == "" {
		return
	}
	dir := filepath.Dir(d.cfg.Harness.ControlFile)
	if !writable(dir) {
		d.addError(r, "control_file", "harness.control_file",
			fmt.Sprintf("control file directory %q is not writable", dir))
	}
}

// writable reports whether path, or its nearest existing ancestor, accepts
// writes. Directories that don't exist yet are fine; startup creates them.
func writable(path string) bool {
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}
	return unix.Access(path, unix.W_OK) == nil
}

// checkCoreDumps warns when RLIMIT_CORE would suppress core files.
func (d *Doctor) checkCoreDumps(r *Result) {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &rlim); err != nil {
		d.addWarning(r, "host", "rlimit_core",
			fmt.Sprintf("cannot read RLIMIT_CORE: %v", err))
		return
	}
	if rlim.Cur == 0 {
		d.addWarning(r, "host", "rlimit_core",
			"core dumps are disabled (RLIMIT_CORE=0); crash artifacts will be lost")
	}
}

// checkCorePattern warns when the kernel would discard cores.
func (d *Doctor) checkCorePattern(r *Result) {
	data, err := os.ReadFile(filepath.Join(d.procRoot, "sys/kernel/core_pattern"))
	if err != nil {
		d.addWarning(r, "host", "core_pattern",
			"cannot read kernel.core_pattern; core handling unknown (non-Linux host?)")
		return
	}
	pattern := strings.TrimSpace(string(data))
	switch {
	case pattern == "":
		d.addWarning(r, "host", "core_pattern",
			"kernel.core_pattern is empty; cores will not be written")
	case strings.HasPrefix(pattern, "|/bin/false"):
		d.addWarning(r, "host", "core_pattern",
			"kernel.core_pattern pipes cores to /bin/false; crash artifacts will be discarded")
	}
}

// checkTraceback recommends GOTRACEBACK=crash so fatal faults leave a core
// instead of just a goroutine dump.
func (d *Doctor) checkTraceback(r *Result) {
	if os.Getenv("GOTRACEBACK") != "crash" {
		d.addWarning(r, "host", "gotraceback",
			"GOTRACEBACK=crash recommended; without it fatal faults print a trace but leave no core")
	}
}

// checkWatchdogs warns when a detector that a recipe targets is off: an
// undetected lockup looks like success.
func (d *Doctor) checkWatchdogs(r *Result) {
	checks := []struct {
		file   string
		label  string
		detail string
	}{
		{"sys/kernel/watchdog", "SOFTLOCKUP", "soft lockup detector"},
		{"sys/kernel/nmi_watchdog", "HARDLOCKUP", "NMI watchdog"},
		{"sys/kernel/hung_task_timeout_secs", "HUNG_TASK", "hung task detector"},
	}

	for _, c := range checks {
		data, err := os.ReadFile(filepath.Join(d.procRoot, c.file))
		if err != nil {
			d.addWarning(r, "host", c.file,
				fmt.Sprintf("cannot read %s; %s state unknown", c.file, c.detail))
			continue
		}
		if strings.TrimSpace(string(data)) == "0" {
			d.addWarning(r, "host", c.file,
				fmt.Sprintf("%s is off; a %s fault will spin undetected", c.detail, c.label))
		}
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
