package console

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"faultline/internal/events"
)

// --- Message types ---

type eventMsg events.Event

type healthMsg struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Armed         bool   `json:"armed"`
	Faults        int    `json:"faults"`
	IntentsLogged int    `json:"intents_logged"`
}

type catalogEntry struct {
	Label     string `json:"label"`
	Summary   string `json:"summary"`
	Signature string `json:"signature"`
}

type catalogMsg []catalogEntry

type tickMsg time.Time

type errMsg error

type sseDisconnectedMsg struct{}
type reconnectMsg struct{}

type triggerAcceptedMsg struct {
	label string
	bytes int
}

type triggerFailedMsg struct {
	label  string
	detail string
}

// harnessDownMsg is the expected aftermath of an accepted armed trigger:
// the connection died because the host did.
type harnessDownMsg struct {
	label string
}

// --- Commands ---

// subscribeToEvents connects to the SSE /events endpoint and feeds events
// into the provided channel. Returns sseDisconnectedMsg when the connection drops.
func subscribeToEvents(apiURL, apiKey string, ch chan<- events.Event) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{}
		req, err := http.NewRequest("GET", apiURL+"/events", nil)
		if err != nil {
			return errMsg(err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return sseDisconnectedMsg{}
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		var current struct {
			id   int64
			typ  string
			data string
		}

		for scanner.Scan() {
			line := scanner.Text()

			if line == "" {
				if current.data != "" {
					ch <- events.Event{
						ID:   current.id,
						Type: current.typ,
						At:   time.Now(),
						Data: []byte(current.data),
					}
					current = struct {
						id   int64
						typ  string
						data string
					}{}
				}
				continue
			}

			if strings.HasPrefix(line, "id: ") {
				if id, err := strconv.ParseInt(line[4:], 10, 64); err == nil {
					current.id = id
				}
			} else if strings.HasPrefix(line, "event: ") {
				current.typ = line[7:]
			} else if strings.HasPrefix(line, "data: ") {
				current.data = line[6:]
			}
		}

		return sseDisconnectedMsg{}
	}
}

// receiveNextEvent waits for the next event from the channel.
func receiveNextEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-ch)
	}
}

// fetchHealth queries the /healthz endpoint.
func fetchHealth(apiURL, apiKey string) tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest("GET", apiURL+"/healthz", nil)
	if err != nil {
		return errMsg(err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	var h healthMsg
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return errMsg(err)
	}
	return h
}

// fetchCatalog queries GET /catalog once at startup.
func fetchCatalog(apiURL, apiKey string) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 2 * time.Second}
		req, err := http.NewRequest("GET", apiURL+"/catalog", nil)
		if err != nil {
			return errMsg(err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return errMsg(err)
		}
		defer resp.Body.Close()

		var body struct {
			Faults []catalogEntry `json:"faults"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return errMsg(err)
		}
		return catalogMsg(body.Faults)
	}
}

// triggerFault POSTs /trigger/{label}. A connection that dies before the
// response arrives is reported as harnessDownMsg: an armed fault kills the
// host before the 202 flushes.
func triggerFault(apiURL, apiKey, label string) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}
		req, err := http.NewRequest("POST", apiURL+"/trigger/"+label, nil)
		if err != nil {
			return triggerFailedMsg{label: label, detail: err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return harnessDownMsg{label: label}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return harnessDownMsg{label: label}
		}

		if resp.StatusCode != http.StatusAccepted {
			detail := strings.TrimSpace(string(body))
			var apiErr struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
				detail = apiErr.Error
			}
			return triggerFailedMsg{label: label, detail: detail}
		}

		var accepted struct {
			AcceptedBytes int `json:"accepted_bytes"`
		}
		_ = json.Unmarshal(body, &accepted)
		return triggerAcceptedMsg{label: label, bytes: accepted.AcceptedBytes}
	}
}
