package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks harness health from /healthz polling.
type HealthState struct {
	Status        string
	UptimeSeconds int64
	Armed         bool
	Faults        int
	IntentsLogged int
	Connected     bool
	Down          bool
	DownLabel     string
	LastCheck     time.Time
}

func renderHeader(health HealthState, pulse Pulse, activity Activity, theme Theme, width int) string {
	innerWidth := width - 4

	// Status
	var statusText, statusIcon string
	switch {
	case health.Down:
		statusText = theme.StatusDown.Render("HARNESS DOWN (fault fired)")
		statusIcon = "💥"
	case !health.Connected:
		statusText = theme.StatusDisarmed.Render("CONNECTING")
		statusIcon = "🔌"
	case health.Armed:
		statusText = theme.StatusArmed.Render("ARMED")
		statusIcon = "🔴"
	default:
		statusText = theme.StatusOK.Render("DISARMED")
		statusIcon = "🟢"
	}

	// Uptime
	uptime := time.Duration(health.UptimeSeconds) * time.Second
	uptimeStr := formatDuration(uptime)

	// Last event
	lastEventStr := "never"
	if !activity.LastEvent().IsZero() {
		ago := time.Since(activity.LastEvent()).Round(time.Second)
		lastEventStr = fmt.Sprintf("%s ago", ago)
	}

	// Title line with pulse and clock
	pulseStr := theme.Highlight.Render(pulse.Current())
	clock := theme.Dim.Render(time.Now().Format("15:04:05"))
	titleText := fmt.Sprintf(" FAULTLINE CONSOLE %s", pulseStr)

	// Calculate padding between title and clock
	titleWidth := lipgloss.Width(titleText)
	clockWidth := lipgloss.Width(clock)
	pad := innerWidth - titleWidth - clockWidth - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	// Stats line
	statsLine := fmt.Sprintf(" %s %s  ⏱ %s  Intents: %d  Faults: %d",
		statusIcon, statusText,
		uptimeStr,
		health.IntentsLogged,
		health.Faults,
	)

	// Activity line
	activityLine := fmt.Sprintf(" Last event: %s %s",
		lastEventStr,
		activity.Render(theme),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleLine,
		statsLine,
		activityLine,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
