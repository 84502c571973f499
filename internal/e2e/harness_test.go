package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"faultline/internal/api"
	"faultline/internal/auth"
	"faultline/internal/ctlfile"
	"faultline/internal/dispatch"
	"faultline/internal/events"
	"faultline/internal/fault"
	"faultline/internal/journal"
	"faultline/internal/log"
	"faultline/internal/storage"
)

// The flows below run the real stack end to end: SQLite journal, dispatch
// engine, event hub, and the two command surfaces. The engine stays disarmed
// throughout, so every recipe is suppressed and the test process survives.

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

func TestEndToEndAPITriggerFlow(t *testing.T) {
	// 1. Setup Environment
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	// 2. Wire the Harness (disarmed)
	jrnl := journal.New(db)
	registry := fault.NewRegistry()
	hub := events.NewHub(64)
	engine := dispatch.New(dispatch.Config{Armed: false}, registry, fault.NewHostExecutor(), jrnl, hub, log.WithComponent("dispatch"))
	go func() { _ = engine.Run(ctx) }()

	apiServer := api.New(api.Config{
		Listen:          "127.0.0.1:0",
		Tokens:          []auth.TokenConfig{{Name: "ops", Token: "e2e-key", Scopes: []string{"*"}}},
		MaxCommandBytes: dispatch.MaxCommandBytes,
	}, engine, registry, jrnl, hub, log.WithComponent("api"))

	ts := httptest.NewServer(apiServer.Handler())
	defer ts.Close()

	sub, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	// 3. Trigger a fault by label
	resp := doRequest(t, ts.URL, http.MethodPost, "/trigger/PANIC", "e2e-key", "")
	if resp.status != http.StatusAccepted {
		t.Fatalf("trigger status = %d, body: %s", resp.status, resp.body)
	}
	var accepted struct {
		AcceptedBytes int `json:"accepted_bytes"`
	}
	if err := json.Unmarshal([]byte(resp.body), &accepted); err != nil {
		t.Fatalf("bad submit response: %v\nbody=%s", err, resp.body)
	}
	if accepted.AcceptedBytes != 5 {
		t.Errorf("accepted_bytes = %d, want 5", accepted.AcceptedBytes)
	}

	// 4. The intent is durable before the response returns
	var label, source string
	var armed int
	if err := db.QueryRow("SELECT label, source, armed FROM fault_intents").Scan(&label, &source, &armed); err != nil {
		t.Fatalf("intent row missing: %v", err)
	}
	if label != "PANIC" || source != "api" || armed != 0 {
		t.Errorf("intent row = (%s, %s, %d), want (PANIC, api, 0)", label, source, armed)
	}

	// 5. Subscribers see the suppressed fault
	waitForEvent(t, sub, events.TypeFaultSuppressed)

	// 6. The read surfaces agree with the journal
	resp = doRequest(t, ts.URL, http.MethodGet, "/journal/last", "e2e-key", "")
	if resp.status != http.StatusOK {
		t.Fatalf("journal/last status = %d, body: %s", resp.status, resp.body)
	}
	var last struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(resp.body), &last); err != nil {
		t.Fatalf("bad journal response: %v", err)
	}
	if last.Label != "PANIC" {
		t.Errorf("journal/last label = %q, want PANIC", last.Label)
	}

	resp = doRequest(t, ts.URL, http.MethodGet, "/healthz", "", "")
	if resp.status != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.status)
	}
	var health struct {
		Armed         bool  `json:"armed"`
		Faults        int   `json:"faults"`
		IntentsLogged int64 `json:"intents_logged"`
	}
	if err := json.Unmarshal([]byte(resp.body), &health); err != nil {
		t.Fatalf("bad healthz response: %v", err)
	}
	if health.Armed {
		t.Error("healthz reports armed for a disarmed harness")
	}
	if health.Faults != 14 {
		t.Errorf("healthz faults = %d, want 14", health.Faults)
	}
	if health.IntentsLogged != 1 {
		t.Errorf("healthz intents_logged = %d, want 1", health.IntentsLogged)
	}

	// 7. Unknown labels are refused and never journaled
	resp = doRequest(t, ts.URL, http.MethodPost, "/trigger/REBOOT", "e2e-key", "")
	if resp.status != http.StatusNotFound {
		t.Fatalf("unknown label status = %d, want 404", resp.status)
	}
	count, err := jrnl.Count(ctx)
	if err != nil {
		t.Fatalf("journal count: %v", err)
	}
	if count != 1 {
		t.Errorf("unknown label should not be journaled, count = %d", count)
	}

	// 8. Raw command bytes resolve exactly like a control file write
	resp = doRequest(t, ts.URL, http.MethodPost, "/faults", "e2e-key", "BUG\n")
	if resp.status != http.StatusAccepted {
		t.Fatalf("raw submit status = %d, body: %s", resp.status, resp.body)
	}
	entry, err := jrnl.Last(ctx)
	if err != nil {
		t.Fatalf("journal last: %v", err)
	}
	if entry == nil || entry.Label != "BUG" {
		t.Fatalf("raw submit not journaled, last = %+v", entry)
	}
}

func TestEndToEndControlFileFlow(t *testing.T) {
	// 1. Setup Environment
	tmpDir := t.TempDir()
	controlPath := filepath.Join(tmpDir, "control")
	catalogPath := filepath.Join(tmpDir, "faults")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, filepath.Join(tmpDir, "journal.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	jrnl := journal.New(db)
	registry := fault.NewRegistry()
	hub := events.NewHub(64)
	engine := dispatch.New(dispatch.Config{Armed: false}, registry, fault.NewHostExecutor(), jrnl, hub, log.WithComponent("dispatch"))
	go func() { _ = engine.Run(ctx) }()

	sub, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	// 2. Start the control file watcher
	ctl, err := ctlfile.New(ctlfile.Config{
		ControlFile:     controlPath,
		CatalogFile:     catalogPath,
		Debounce:        10 * time.Millisecond,
		MaxCommandBytes: dispatch.MaxCommandBytes,
	}, engine, registry, jrnl, log.WithComponent("ctlfile"))
	if err != nil {
		t.Fatalf("ctlfile.New: %v", err)
	}
	go func() { _ = ctl.Run(ctx) }()

	// The catalog is published at startup, the read side of the surface.
	catalog, err := os.ReadFile(catalogPath)
	if err != nil {
		t.Fatalf("catalog file missing: %v", err)
	}
	if !strings.Contains(string(catalog), "PANIC") || !strings.Contains(string(catalog), "DEADLOCK") {
		t.Fatalf("catalog incomplete: %s", catalog)
	}

	// 3. A write into the control file becomes a journaled intent
	if err := os.WriteFile(controlPath, []byte("BUG\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitForCount(t, ctx, jrnl, 1)

	entry, err := jrnl.Last(ctx)
	if err != nil {
		t.Fatalf("journal last: %v", err)
	}
	if entry.Label != "BUG" || entry.Source != journal.SourceCtlFile {
		t.Errorf("journaled intent = (%s, %s), want (BUG, ctlfile)", entry.Label, entry.Source)
	}

	// 4. The file is truncated once the command is consumed
	waitForTruncate(t, controlPath)

	// 5. Unknown commands are swallowed without a journal entry
	if err := os.WriteFile(controlPath, []byte("REBOOT\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, sub, events.TypeCommandIgnored)

	count, err := jrnl.Count(ctx)
	if err != nil {
		t.Fatalf("journal count: %v", err)
	}
	if count != 1 {
		t.Errorf("unknown command should not be journaled, count = %d", count)
	}
}

type apiResponse struct {
	status int
	body   string
}

func doRequest(t *testing.T, base, method, path, token, body string) apiResponse {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, base+path, rdr)
	if err != nil {
		t.Fatalf("build request %s %s: %v", method, path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return apiResponse{status: resp.StatusCode, body: string(b)}
}

func waitForEvent(t *testing.T, sub <-chan events.Event, eventType string) events.Event {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-sub:
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event within deadline", eventType)
		}
	}
}

func waitForCount(t *testing.T, ctx context.Context, jrnl *journal.Journal, want int64) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if n, err := jrnl.Count(ctx); err == nil && n >= want {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("journal never reached %d intents", want)
}

func waitForTruncate(t *testing.T, path string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fi, err := os.Stat(path); err == nil && fi.Size() == 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("control file never truncated")
}
