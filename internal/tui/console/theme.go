// Package console implements the faultline system watch TUI: live health,
// the fault catalog, the event stream, and a guarded trigger flow.
package console

import "github.com/charmbracelet/lipgloss"

// Theme centralizes all styling for the console.
// Even with a single default theme, this keeps all colors in one place
// and makes future theme support trivial.
type Theme struct {
	// Status colors
	StatusOK       lipgloss.Style
	StatusArmed    lipgloss.Style
	StatusDisarmed lipgloss.Style
	StatusDown     lipgloss.Style

	// UI elements
	Border    lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
	Danger    lipgloss.Style

	// Indicators
	PulseActive   lipgloss.Style
	PulseInactive lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusArmed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
		StatusDisarmed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		StatusDown:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF00FF")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		Danger:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),

		PulseActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		PulseInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
	}
}
