package console

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"faultline/internal/events"
)

func renderEventStream(eventLog []events.Event, theme Theme, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("EVENT STREAM"),
			theme.Dim.Render("  Waiting for events..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= 8 {
			break
		}
		lines = append(lines, formatEvent(e, theme))
	}

	eventsText := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("EVENT STREAM"),
		eventsText,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, theme Theme) string {
	ts := theme.Dim.Render(e.At.Format("15:04:05"))

	var typeStyle lipgloss.Style
	switch e.Type {
	case events.TypeFaultArmed:
		typeStyle = theme.Danger
	case events.TypeFaultSuppressed, events.TypeFaultRejected:
		typeStyle = theme.Highlight
	case events.TypeHarnessStarted:
		typeStyle = theme.StatusOK
	default:
		typeStyle = theme.Dim
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-17s", e.Type))

	desc := extractEventDesc(e)

	return fmt.Sprintf("%s %s %s", ts, typeName, desc)
}

func extractEventDesc(e events.Event) string {
	data := make(map[string]any)
	_ = json.Unmarshal(e.Data, &data)

	var parts []string

	if intentID, ok := data["intent_id"].(string); ok {
		if len(intentID) > 8 {
			intentID = intentID[:8]
		}
		parts = append(parts, fmt.Sprintf("[%s]", intentID))
	}

	if label, ok := data["label"].(string); ok && label != "" {
		parts = append(parts, label)
	}

	if source, ok := data["source"].(string); ok && source != "" {
		parts = append(parts, source)
	}

	if principal, ok := data["principal"].(string); ok && principal != "" {
		parts = append(parts, principal)
	}

	if reason, ok := data["reason"].(string); ok && reason != "" {
		parts = append(parts, reason)
	}

	if command, ok := data["command"].(string); ok && command != "" {
		parts = append(parts, fmt.Sprintf("%q", command))
	}

	if len(parts) == 0 {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}

	return strings.Join(parts, " ")
}
