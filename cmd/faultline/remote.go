package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"faultline/internal/fault"
)

// harnessClient talks to a running harness over its HTTP API.
type harnessClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// newHarnessClient builds a client. timeout 0 means no client-side deadline;
// trigger uses that because the dispatch thread holds the response for as
// long as the recipe runs.
func newHarnessClient(baseURL, apiKey string, timeout time.Duration) *harnessClient {
	return &harnessClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type healthReport struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Armed         bool   `json:"armed"`
	Faults        int    `json:"faults"`
	IntentsLogged int64  `json:"intents_logged"`
}

func (c *harnessClient) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *harnessClient) health(ctx context.Context) (*healthReport, []byte, error) {
	status, body, err := c.get(ctx, "/healthz")
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusOK {
		return nil, nil, fmt.Errorf("%s", apiErrorDetail(status, body))
	}

	var hr healthReport
	if err := json.Unmarshal(body, &hr); err != nil {
		return nil, nil, fmt.Errorf("malformed health response: %w", err)
	}
	return &hr, body, nil
}

func (c *harnessClient) listFaults(ctx context.Context) ([]string, error) {
	status, body, err := c.get(ctx, "/faults")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s", apiErrorDetail(status, body))
	}

	var labels []string
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			labels = append(labels, line)
		}
	}
	return labels, nil
}

// post submits a command and returns the accepted byte count. Transport
// errors come back unwrapped so the caller can tell a dead harness from a
// refusing one.
func (c *harnessClient) post(ctx context.Context, path string, body io.Reader) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusAccepted {
		return 0, fmt.Errorf("%s", apiErrorDetail(resp.StatusCode, data))
	}

	var sr struct {
		AcceptedBytes int `json:"accepted_bytes"`
	}
	if err := json.Unmarshal(data, &sr); err != nil {
		return 0, fmt.Errorf("malformed response: %w", err)
	}
	return sr.AcceptedBytes, nil
}

func (c *harnessClient) trigger(ctx context.Context, label string) (int, error) {
	return c.post(ctx, "/trigger/"+label, nil)
}

func (c *harnessClient) submitRaw(ctx context.Context, raw string) (int, error) {
	return c.post(ctx, "/faults", strings.NewReader(raw))
}

// apiErrorDetail extracts the server's error message from a non-2xx body.
func apiErrorDetail(status int, body []byte) string {
	var er struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return fmt.Sprintf("%s (HTTP %d)", er.Error, status)
	}
	if detail := strings.TrimSpace(string(body)); detail != "" {
		return fmt.Sprintf("%s (HTTP %d)", detail, status)
	}
	return fmt.Sprintf("HTTP %d", status)
}

// isHarnessDeath reports whether a trigger request failed because the
// harness died under it rather than refusing it. A connection that was never
// established is a plain failure; one that drops after the command went out
// is the expected outcome of an armed terminal fault.
func isHarnessDeath(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

func runSystemStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	apiURL := fs.String("api-url", "http://127.0.0.1:8080", "Harness API URL")
	apiKey := fs.String("api-key", os.Getenv("FAULTLINE_API_KEY"), "API bearer token")
	jsonOut := fs.Bool("json", false, "Output raw health JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	client := newHarnessClient(*apiURL, *apiKey, 5*time.Second)
	hr, raw, err := client.health(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Harness unreachable at %s: %v\n", *apiURL, err)
		return 1
	}

	if *jsonOut {
		fmt.Println(strings.TrimSpace(string(raw)))
		return 0
	}

	armed := "disarmed"
	if hr.Armed {
		armed = "ARMED"
	}
	fmt.Printf("faultline at %s\n", *apiURL)
	fmt.Printf("  Status:   %s (%s)\n", hr.Status, armed)
	fmt.Printf("  Uptime:   %s\n", formatUptime(hr.UptimeSeconds))
	fmt.Printf("  Faults:   %d\n", hr.Faults)
	fmt.Printf("  Intents:  %d\n", hr.IntentsLogged)
	return 0
}

func runFaultList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	remote := fs.Bool("remote", false, "Ask a running harness instead of the built-in catalog")
	apiURL := fs.String("api-url", "http://127.0.0.1:8080", "Harness API URL")
	apiKey := fs.String("api-key", os.Getenv("FAULTLINE_API_KEY"), "API bearer token")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: faultline fault list [--remote] [--api-url URL] [--api-key KEY]")
		return 1
	}

	if *remote {
		if *apiKey == "" {
			fmt.Fprintln(os.Stderr, "Error: API key required. Use --api-key or FAULTLINE_API_KEY env var.")
			return 1
		}
		client := newHarnessClient(*apiURL, *apiKey, 5*time.Second)
		labels, err := client.listFaults(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list faults: %v\n", err)
			return 1
		}
		for _, label := range labels {
			fmt.Println(label)
		}
		return 0
	}

	for _, label := range fault.NewRegistry().List() {
		fmt.Println(label)
	}
	return 0
}

func runFaultTrigger(args []string) int {
	var apiURL, apiKey, raw string

	fs := flag.NewFlagSet("trigger", flag.ContinueOnError)
	fs.StringVar(&apiURL, "api-url", "http://127.0.0.1:8080", "Harness API URL")
	fs.StringVar(&apiKey, "api-key", os.Getenv("FAULTLINE_API_KEY"), "API bearer token")
	fs.StringVar(&raw, "raw", "", "Submit raw command bytes instead of a label")

	// The label may come before flags, 'faultline fault trigger PANIC
	// --api-key k', so positionals are filtered out before parsing.
	var label string
	var remainingArgs []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") && label == "" {
			label = arg
		} else {
			remainingArgs = append(remainingArgs, arg)
		}
	}

	if err := fs.Parse(remainingArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if label == "" && raw == "" {
		fmt.Fprintln(os.Stderr, "Usage: faultline fault trigger <label> [--api-url URL] [--api-key KEY] [--raw STRING]")
		return 1
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: API key required. Use --api-key or FAULTLINE_API_KEY env var.")
		return 1
	}

	// No client timeout: the harness holds the response for as long as the
	// recipe runs, exactly like a write into the original control file.
	// Ctrl+C cancels the wait.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newHarnessClient(apiURL, apiKey, 0)

	var n int
	var err error
	if raw != "" {
		n, err = client.submitRaw(ctx, raw)
	} else {
		n, err = client.trigger(ctx, label)
	}

	if err != nil {
		if isHarnessDeath(err) {
			fmt.Println("harness terminated (fault likely fired)")
			return 0
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted while waiting for the harness")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Trigger failed: %v\n", err)
		return 1
	}

	fmt.Printf("Accepted %d bytes\n", n)
	return 0
}

func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
