package console

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faultline/internal/events"
)

// Model is the main BubbleTea model for the console.
type Model struct {
	apiURL string
	apiKey string

	width  int
	height int

	// State
	health   HealthState
	entries  []catalogEntry
	catalog  table.Model
	eventLog []events.Event

	// Live indicators
	pulse    Pulse
	activity Activity

	// UI state
	theme      Theme
	confirm    string // label awaiting y/n
	lastResult string

	// Communication
	hubEvents chan events.Event

	// Error display
	lastError string
}

// New creates a console model pointed at a harness API.
func New(apiURL, apiKey string) *Model {
	return &Model{
		apiURL:    apiURL,
		apiKey:    apiKey,
		catalog:   newCatalogTable(),
		eventLog:  make([]events.Event, 0),
		hubEvents: make(chan events.Event, 100),
		pulse:     NewPulse(),
		activity:  NewActivity(),
		theme:     NewDefaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		subscribeToEvents(m.apiURL, m.apiKey, m.hubEvents),
		receiveNextEvent(m.hubEvents),
		fetchCatalog(m.apiURL, m.apiKey),
		func() tea.Msg { return fetchHealth(m.apiURL, m.apiKey) },
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm != "" {
			switch msg.String() {
			case "y":
				label := m.confirm
				m.confirm = ""
				m.lastResult = fmt.Sprintf("Triggering %s...", label)
				return m, triggerFault(m.apiURL, m.apiKey, label)
			case "n", "esc":
				m.confirm = ""
			}
			// Swallow navigation while the confirm prompt is up.
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			if row := m.catalog.SelectedRow(); len(row) > 0 {
				m.confirm = row[0]
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.catalog.SetWidth(m.width - 6)

	case tickMsg:
		m.pulse.Tick()
		m.activity.Decay()
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case catalogMsg:
		m.entries = []catalogEntry(msg)
		m.catalog.SetRows(catalogRows(m.entries))

	case eventMsg:
		e := events.Event(msg)

		// Update event log (newest first)
		m.eventLog = append([]events.Event{e}, m.eventLog...)
		if len(m.eventLog) > 50 {
			m.eventLog = m.eventLog[:50]
		}

		m.activity.OnEvent()
		m.health.Connected = true
		m.lastError = ""

		return m, receiveNextEvent(m.hubEvents)

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.Armed = msg.Armed
		m.health.Faults = msg.Faults
		m.health.IntentsLogged = msg.IntentsLogged
		m.health.Connected = true
		m.health.LastCheck = time.Now()
		m.lastError = ""

		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL, m.apiKey)
		})

	case triggerAcceptedMsg:
		// The harness answered, so it survived: either disarmed, or the
		// recipe is a slow burn and the host is still on its way down.
		m.lastResult = fmt.Sprintf("%s accepted (%d bytes)", msg.label, msg.bytes)

	case triggerFailedMsg:
		m.lastResult = ""
		m.lastError = fmt.Sprintf("trigger %s: %s", msg.label, msg.detail)

	case harnessDownMsg:
		m.health.Down = true
		m.health.DownLabel = msg.label
		m.health.Connected = false
		m.lastResult = ""
		m.lastError = ""

	case sseDisconnectedMsg:
		if m.health.Down {
			return m, nil
		}
		m.health.Connected = false
		m.lastError = "SSE disconnected, reconnecting..."
		// Reconnect after a short delay; the existing receiveNextEvent
		// goroutine is still waiting on the channel and will pick up
		// events from the new subscription.
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return reconnectMsg{}
		})

	case reconnectMsg:
		return m, subscribeToEvents(m.apiURL, m.apiKey, m.hubEvents)

	case errMsg:
		if m.health.Down {
			return m, nil
		}
		m.lastError = msg.Error()
		// Retry health in 5s
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL, m.apiKey)
		})
	}

	m.catalog, cmd = m.catalog.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing console..."
	}

	header := renderHeader(m.health, m.pulse, m.activity, m.theme, m.width)
	catalog := renderCatalog(m.catalog, m.theme, m.width)
	eventStream := renderEventStream(m.eventLog, m.theme, m.width)

	var statusBar string
	switch {
	case m.confirm != "":
		statusBar = m.theme.Danger.Render(fmt.Sprintf(" Trigger %s on this host? [y/n]", m.confirm))
	case m.lastError != "":
		statusBar = m.theme.StatusDisarmed.Render(fmt.Sprintf(" ⚠ %s", m.lastError))
	case m.lastResult != "":
		statusBar = m.theme.Highlight.Render(" " + m.lastResult)
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(" [q] Quit • [↑/↓] Navigate • [t] Trigger")

	parts := []string{header, catalog, eventStream}
	if statusBar != "" {
		parts = append(parts, statusBar)
	}
	parts = append(parts, help)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}
