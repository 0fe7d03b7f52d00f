package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		// Room for the header and its border; surplus is blank padding.
		table.WithHeight(len(rows)+3),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused, so the first row must not look selected.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return strings.TrimRight(NewTable(columns, tableRows).View(), " \n")
}

// IntegrationRow is one platform in the integration status table.
type IntegrationRow struct {
	Platform string // Display name
	Status   string // connected, syncing, error or unknown
	LastSync string // Already formatted, e.g. "synced 5m ago"
}

// RenderIntegrationTable renders platform sync health. When stale is set the
// whole table is muted and a warning line is added, since the rows are the
// last status that was successfully fetched.
func RenderIntegrationTable(rows []IntegrationRow, stale bool) string {
	if len(rows) == 0 {
		return "No platforms reported"
	}

	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var b strings.Builder
	b.WriteString(headerStyle.Render("  STATUS  PLATFORM     STATE        LAST SYNC"))
	b.WriteString("\n")

	for _, row := range rows {
		symbol, color := statusSymbol(row.Status)
		style := lipgloss.NewStyle().Foreground(color)
		if stale {
			style = mutedStyle
		}

		b.WriteString("  " + style.Render(symbol) + "       " +
			padRight(row.Platform, 13) +
			padRight(style.Render(row.Status), 13) +
			mutedStyle.Render(row.LastSync))
		b.WriteString("\n")
	}

	if stale {
		warn := lipgloss.NewStyle().Foreground(ColorWarning)
		b.WriteString(warn.Render("  " + SymbolWarning + " showing last known status"))
		b.WriteString("\n")
	}

	return b.String()
}

// DoctorCheckRow is one line of the doctor report.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string // Check category
	Message    string // Check result message
	Suggestion string // Shown under warnings and failures
}

// RenderDoctorTable renders check results grouped under their category, in
// the order categories first appear.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	successStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	categories := make(map[string][]DoctorCheckRow)
	categoryOrder := []string{}
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			categoryOrder = append(categoryOrder, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range categoryOrder {
		b.WriteString(headerStyle.Render(cat) + "\n")

		for _, row := range categories[cat] {
			var statusIcon string
			switch row.Status {
			case "pass":
				statusIcon = successStyle.Render(SymbolSuccess)
			case "warn":
				statusIcon = warnStyle.Render(SymbolWarning)
			case "fail":
				statusIcon = errorStyle.Render(SymbolFail)
			default:
				statusIcon = mutedStyle.Render(SymbolPending)
			}

			b.WriteString("  " + statusIcon + " " + row.Message + "\n")

			if row.Suggestion != "" && row.Status != "pass" {
				for _, line := range strings.Split(row.Suggestion, "\n") {
					b.WriteString("    " + mutedStyle.Render(line) + "\n")
				}
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func statusSymbol(status string) (string, lipgloss.Color) {
	switch status {
	case "connected":
		return SymbolOK, ColorSuccess
	case "syncing":
		return SymbolSyncing, ColorWarning
	case "error":
		return SymbolFail, ColorError
	default:
		return SymbolPending, ColorMuted
	}
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
