package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"faultline/internal/api"
	"faultline/internal/auth"
	"faultline/internal/config"
	"faultline/internal/ctlfile"
	"faultline/internal/dispatch"
	"faultline/internal/doctor"
	"faultline/internal/events"
	"faultline/internal/fault"
	"faultline/internal/inspect"
	"faultline/internal/journal"
	"faultline/internal/lock"
	"faultline/internal/log"
	"faultline/internal/storage"
	"faultline/internal/tui/console"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	if cmd == "--version" {
		return runVersion(args)
	}

	switch cmd {
	// --- NOUNS ---
	case "system":
		return runSystemNoun(args)
	case "fault":
		return runFaultNoun(args)
	case "config":
		return runConfigNoun(args)
	case "journal":
		return runJournalNoun(args)

	// --- ROOT ALIASES (Convenience Shortcuts) ---
	case "start":
		return runStart(args)
	case "list":
		if hasHelpFlag(args) {
			printFaultListHelp()
			return 0
		}
		return runFaultList(args)
	case "trigger":
		if hasHelpFlag(args) {
			printFaultTriggerHelp()
			return 0
		}
		return runFaultTrigger(args)
	case "doctor":
		return runConfigCheck(args)
	case "version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: faultline version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("faultline %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalizedBuildTime, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalizedBuildTime
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}

	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`faultline - Software fault-injection harness

Usage:
  faultline <noun> <action> [flags]

Core Resources (Nouns):
  system    Harness lifecycle and health
  fault     Fault catalog and triggering
  config    Configuration and integrity
  journal   Intent journal post-mortems

System Commands:
  system start      Run the harness in the foreground
  system status     Query a running harness's health
  system watch      Real-time console TUI

Fault Commands:
  fault list        List fault labels, one per line
  fault describe    Show one fault's summary and signature
  fault trigger     Submit a fault command to a running harness

Config Commands:
  config check      Validate configuration and host crash-readiness
  config lock       Authorize current state (update integrity hashes)

Journal Commands:
  journal last      Post-mortem report of recorded intents

General:
  --version         Show version information
  version           Show version information
  help              Show this help message

Use 'faultline <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	case "status":
		if hasHelpFlag(actionArgs) {
			printSystemStatusHelp()
			return 0
		}
		return runSystemStatus(actionArgs)
	case "watch":
		if hasHelpFlag(actionArgs) {
			printSystemWatchHelp()
			return 0
		}
		return runWatch(actionArgs)
	case "help":
		printSystemNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runFaultNoun(args []string) int {
	if len(args) < 1 {
		printFaultNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printFaultNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "list":
		if hasHelpFlag(actionArgs) {
			printFaultListHelp()
			return 0
		}
		return runFaultList(actionArgs)
	case "describe":
		if hasHelpFlag(actionArgs) {
			printFaultDescribeHelp()
			return 0
		}
		return runFaultDescribe(actionArgs)
	case "trigger":
		if hasHelpFlag(actionArgs) {
			printFaultTriggerHelp()
			return 0
		}
		return runFaultTrigger(actionArgs)
	case "help":
		printFaultNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown fault action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	case "help":
		printConfigNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runJournalNoun(args []string) int {
	if len(args) < 1 {
		printJournalNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printJournalNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "last":
		if hasHelpFlag(actionArgs) {
			printJournalLastHelp()
			return 0
		}
		return runJournalLast(actionArgs)
	case "help":
		printJournalNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown journal action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: faultline system <action>")
	fmt.Fprintln(w, "Actions: start, status, watch")
}

func printFaultNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: faultline fault <action> [flags]")
	fmt.Fprintln(w, "Actions: list, describe, trigger")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: faultline config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock")
}

func printJournalNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: faultline journal <action> [flags]")
	fmt.Fprintln(w, "Actions: last")
}

func printSystemStartHelp() {
	fmt.Println("Usage: faultline system start [--config PATH]")
	fmt.Println("Run the harness in the foreground.")
}

func printSystemStatusHelp() {
	fmt.Println("Usage: faultline system status [--api-url URL] [--api-key KEY] [--json]")
	fmt.Println("Query a running harness's health endpoint.")
	fmt.Println("")
	fmt.Println("Exit codes:")
	fmt.Println("  0  Harness answered")
	fmt.Println("  1  Harness unreachable or unhealthy")
}

func printSystemWatchHelp() {
	fmt.Println("Usage: faultline system watch [flags]")
	fmt.Println()
	fmt.Println("Real-time console TUI.")
	fmt.Println("Shows harness health, the fault catalog, and the event stream;")
	fmt.Println("'t' on a catalog row triggers the selected fault after a confirm.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --api-url URL    Harness API URL (default: http://127.0.0.1:8080)")
	fmt.Println("  --api-key KEY    API bearer token (or FAULTLINE_API_KEY env var)")
	fmt.Println()
	fmt.Println("Keybindings:")
	fmt.Println("  q, Ctrl+C        Quit")
	fmt.Println("  ↑/↓, k/j         Navigate the catalog")
	fmt.Println("  t                Trigger the selected fault")
}

func printFaultListHelp() {
	fmt.Println("Usage: faultline fault list [--remote] [--api-url URL] [--api-key KEY]")
	fmt.Println("List fault labels, one per line. --remote asks a running harness")
	fmt.Println("instead of the built-in catalog.")
}

func printFaultDescribeHelp() {
	fmt.Println("Usage: faultline fault describe <label>")
	fmt.Println("Show one fault's summary and expected crash signature.")
}

func printFaultTriggerHelp() {
	fmt.Println("Usage: faultline fault trigger <label> [--api-url URL] [--api-key KEY] [--raw STRING]")
	fmt.Println("Submit a fault command to a running harness. --raw sends arbitrary")
	fmt.Println("command bytes instead of a label path.")
	fmt.Println("")
	fmt.Println("An armed terminal fault kills the harness before it can answer;")
	fmt.Println("a connection that dies mid-response therefore exits 0.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: faultline config check [--config PATH] [--format human|json] [--strict] [--json]")
	fmt.Println("Validate configuration, token scopes, and host crash-readiness.")
}

func printConfigLockHelp() {
	fmt.Println("Usage: faultline config lock [--config PATH] [-v|--verbose] [--dry-run]")
	fmt.Println("Authorize current configuration state by regenerating integrity hashes.")
}

func printJournalLastHelp() {
	fmt.Println("Usage: faultline journal last [--config PATH] [-n N] [--json]")
	fmt.Println("Render the post-mortem intent report: the last recorded intent")
	fmt.Println("plus up to N prior ones.")
}

// --- ACTION IMPLEMENTATIONS ---

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	if *configPath == "" {
		discovered, err := config.DiscoverConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		*configPath = discovered
		fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", *configPath)
	}

	cfg, warnings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("faultline starting", "version", version, "config", *configPath)
	for _, w := range warnings {
		logger.Warn("Config integrity warning", "detail", w)
	}

	pidPath := pidLockPath(cfg)
	pidLock, err := lock.Acquire(pidPath)
	if err != nil {
		logger.Error("failed to acquire PID lock", "path", pidPath, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		logger.Error("failed to open journal database", "path", cfg.State.Path, "error", err)
		return 1
	}
	defer db.Close()
	logger.Info("journal database opened", "path", cfg.State.Path)

	jrnl := journal.New(db)
	registry := fault.NewRegistry()
	hub := events.NewHub(cfg.Events.Buffer)

	engine := dispatch.New(dispatch.Config{Armed: cfg.Harness.Armed},
		registry, fault.NewHostExecutor(), jrnl, hub, log.WithComponent("dispatch"))

	if cfg.Harness.Armed {
		logger.Warn("Harness is ARMED: dispatched faults will take this process down")
	} else {
		logger.Info("Harness is disarmed: intents are journaled, recipes are skipped")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("dispatch: %w", err)
		}
		return nil
	})

	if cfg.API.Enabled {
		all := cfg.AllTokens()
		tokens := make([]auth.TokenConfig, 0, len(all))
		for _, t := range all {
			tokens = append(tokens, auth.TokenConfig{
				Name:   t.Name,
				Token:  t.Token,
				Scopes: t.Scopes,
			})
		}
		apiServer := api.New(api.Config{
			Listen:          cfg.API.Listen,
			Tokens:          tokens,
			MaxCommandBytes: cfg.Harness.MaxCommandBytes,
		}, engine, registry, jrnl, hub, log.WithComponent("api"))
		g.Go(func() error {
			if err := apiServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("api: %w", err)
			}
			return nil
		})
		logger.Info("API server enabled", "listen", cfg.API.Listen)
	}

	if cfg.Harness.ControlFile != "" {
		watcher, err := ctlfile.New(ctlfile.Config{
			ControlFile:     cfg.Harness.ControlFile,
			CatalogFile:     cfg.Harness.CatalogFile,
			MaxCommandBytes: cfg.Harness.MaxCommandBytes,
		}, engine, registry, jrnl, log.WithComponent("ctlfile"))
		if err != nil {
			logger.Error("failed to prepare control file", "path", cfg.Harness.ControlFile, "error", err)
			return 1
		}
		g.Go(func() error {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("ctlfile: %w", err)
			}
			return nil
		})
		logger.Info("control file enabled", "path", cfg.Harness.ControlFile)
	}

	hub.Publish(events.TypeHarnessStarted, events.StartedPayload{
		Version: version,
		Armed:   cfg.Harness.Armed,
		Labels:  registry.List(),
	})

	logger.Info("faultline running (press Ctrl+C to stop)", "armed", cfg.Harness.Armed)

	if err := g.Wait(); err != nil {
		logger.Error("component failed", "error", err)
		return 1
	}

	logger.Info("faultline stopped")
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	apiURL := fs.String("api-url", "http://127.0.0.1:8080", "Harness API URL")
	apiKey := fs.String("api-key", os.Getenv("FAULTLINE_API_KEY"), "API bearer token")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: API key required. Use --api-key or FAULTLINE_API_KEY env var.")
		return 1
	}

	m := console.New(*apiURL, *apiKey)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

func runFaultDescribe(args []string) int {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: faultline fault describe <label>")
		return 1
	}
	label := fs.Arg(0)

	registry := fault.NewRegistry()
	kind := registry.Resolve(label)
	if kind == fault.KindNone {
		fmt.Fprintf(os.Stderr, "Unknown fault label: %s\n", label)
		fmt.Fprintln(os.Stderr, "Run 'faultline fault list' for the catalog.")
		return 1
	}

	rec, ok := registry.Recipe(kind)
	if !ok {
		fmt.Fprintf(os.Stderr, "No recipe for label: %s\n", label)
		return 1
	}

	fmt.Println(rec.Label)
	fmt.Printf("  Summary:   %s\n", rec.Summary)
	fmt.Printf("  Signature: %s\n", rec.Signature)
	return 0
}

func runConfigCheck(args []string) int {
	var configPath string
	var strict, jsonOut bool
	var format string

	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&strict, "strict", false, "Treat warnings as errors")
	fs.StringVar(&format, "format", "human", "Output format (human, json)")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if jsonOut {
		format = "json"
	}

	if configPath == "" {
		discovered, err := config.DiscoverConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		configPath = discovered
	}

	cfg, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config load error: %v\n", err)
		return 1
	}

	doc := doctor.New(cfg, fault.NewRegistry())
	result := doc.Validate()

	switch format {
	case "json":
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	default:
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	if strict && len(result.Warnings) > 0 {
		return 2
	}
	return 0
}

func runConfigLock(args []string) int {
	var configPath string
	var verbose, verboseShort, dryRun bool

	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&verboseShort, "v", false, "Verbose output")
	fs.BoolVar(&dryRun, "dry-run", false, "Compute hashes without writing")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	isVerbose := verbose || verboseShort

	if configPath == "" {
		discovered, err := config.DiscoverConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		configPath = discovered
	}

	report, err := config.Lock(configPath, dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config: %v\n", err)
		return 1
	}

	if isVerbose {
		fmt.Printf("Processing directory: %s\n", report.ConfigDir)
		for _, file := range report.Files {
			fmt.Printf("  HASH %s: %s\n", file.Filename, file.Hash)
		}
		if dryRun {
			fmt.Printf("  DRY-RUN .checksums: %s (not written)\n", report.ChecksumPath)
		} else {
			fmt.Printf("  WROTE .checksums: %s\n", report.ChecksumPath)
		}
	}

	if dryRun {
		fmt.Printf("Dry run completed for %s (no files written)\n", report.ConfigDir)
	} else {
		fmt.Printf("Successfully locked configuration in %s\n", report.ConfigDir)
	}

	return 0
}

func runJournalLast(args []string) int {
	var configPath string
	var jsonOut bool
	var limit int

	fs := flag.NewFlagSet("last", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&jsonOut, "json", false, "Output report in JSON")
	fs.IntVar(&limit, "n", 10, "Prior intents to include")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if configPath == "" {
		discovered, err := config.DiscoverConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		configPath = discovered
	}

	cfg, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	db, err := storage.OpenSQLite(context.Background(), cfg.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal database: %v\n", err)
		return 1
	}
	defer db.Close()

	rep, err := inspect.BuildReport(context.Background(), journal.New(db), limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
		return 1
	}

	if jsonOut {
		out, err := inspect.BuildJSON(rep)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(out)
		return 0
	}

	fmt.Print(inspect.Render(rep))
	return 0
}

// pidLockPath derives the lock path from the journal path, so the lock lives
// on the same filesystem as the state it guards.
func pidLockPath(cfg *config.Config) string {
	dbPath := cfg.State.Path
	dbDir := filepath.Dir(dbPath)
	dbBase := filepath.Base(dbPath)
	ext := filepath.Ext(dbBase)
	nameWithoutExt := dbBase[:len(dbBase)-len(ext)]
	return filepath.Join(dbDir, nameWithoutExt+".pid")
}
