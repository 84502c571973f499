package console

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func newCatalogTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Label", Width: 28},
			{Title: "Summary", Width: 44},
			{Title: "Signature", Width: 28},
		}),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func catalogRows(entries []catalogEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{e.Label, e.Summary, e.Signature})
	}
	return rows
}

func renderCatalog(t table.Model, theme Theme, width int) string {
	innerWidth := width - 4
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("FAULT CATALOG"),
		t.View(),
	)
	return theme.Border.Width(innerWidth).Render(content)
}
