package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
)

const (
	cardWidth  = 22
	chipWidth  = 30
	noValue    = "—"
	titleLabel = "opsdash"
)

// metricCard is one aggregate figure.
type metricCard struct {
	Label string
	Value string
	Alert bool
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderMetricCards())
	b.WriteString("\n")

	b.WriteString(m.renderIntegrationStatus())
	b.WriteString("\n\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with the last update time.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(titleLabel)

	var parts []string
	if m.opts.BaseURL != "" {
		parts = append(parts, m.opts.BaseURL)
	}

	switch {
	case m.Loading():
		parts = append(parts, m.spinner.View()+" loading")
	case m.refreshing:
		parts = append(parts, m.spinner.View()+" refreshing")
	default:
		parts = append(parts, "last update "+FormatAge(m.state.LastUpdate(), m.opts.Now()))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

// metricCards builds the four aggregate cards from the current snapshot.
func (m Model) metricCards() []metricCard {
	snap := m.state.Snapshot
	if snap == nil {
		return []metricCard{
			{Label: "Total Orders", Value: noValue},
			{Label: "Revenue (30d)", Value: noValue},
			{Label: "Low Stock Items", Value: noValue},
			{Label: "Pending Production", Value: noValue},
		}
	}
	return []metricCard{
		{Label: "Total Orders", Value: FormatCount(snap.TotalOrders)},
		{Label: "Revenue (30d)", Value: FormatMoney(m.opts.CurrencySymbol, snap.TotalRevenue)},
		{Label: "Low Stock Items", Value: FormatCount(snap.LowStockItems), Alert: snap.LowStockItems > 0},
		{Label: "Pending Production", Value: FormatCount(snap.PendingProduction)},
	}
}

// renderMetricCards lays the cards out in one row, or two on narrow screens.
func (m Model) renderMetricCards() string {
	var cards []string
	for _, c := range m.metricCards() {
		cards = append(cards, renderCard(c))
	}

	perRow := len(cards)
	switch {
	case m.width == 0 || m.width >= BreakpointWide:
	case m.width >= BreakpointCompact:
		perRow = 2
	default:
		perRow = 1
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(c metricCard) string {
	style := CardStyle
	if c.Alert {
		style = CardAlertStyle
	}
	value := ValueStyle.Render(c.Value)
	if c.Value == noValue {
		value = MutedStyle.Render(c.Value)
	}
	return style.Width(cardWidth).Render(LabelStyle.Render(c.Label) + "\n" + value)
}

// renderIntegrationStatus renders one chip per platform in fixed order.
func (m Model) renderIntegrationStatus() string {
	title := SectionTitleStyle.Render("Integration Status")
	if m.state.SyncStale {
		title += StaleIndicatorStyle.Render("  " + GlyphWarning + " stale")
	}

	now := m.opts.Now()
	var chips []string
	for _, p := range dashboard.Platforms() {
		chips = append(chips, renderChip(m.state.SyncStatus.Get(p), now, m.state.SyncStale))
	}

	var row string
	if m.width > 0 && m.width < BreakpointWide {
		row = lipgloss.JoinVertical(lipgloss.Left, chips...)
	} else {
		row = lipgloss.JoinHorizontal(lipgloss.Top, chips...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, row)
}

func renderChip(h dashboard.PlatformHealth, now time.Time, stale bool) string {
	color := StatusColor(h.Status)
	if stale {
		color = ColorTextMuted
	}
	indicator := lipgloss.NewStyle().Foreground(color).Render(StatusGlyph(h.Status))
	name := ValueStyle.Render(h.Platform.DisplayName())
	status := lipgloss.NewStyle().Foreground(color).Render(string(h.Status))
	when := MutedStyle.Render(FormatLastSync(h.LastSyncAt, now))

	return ChipStyle.Width(chipWidth).Render(indicator + " " + name + " " + status + "\n" + when)
}

// renderFooter renders the error indicator, when there is one, above the
// key hints.
func (m Model) renderFooter() string {
	hints := FooterStyle.Render(m.help.View(keys))
	indicator := m.errorIndicator()
	if indicator == "" {
		return hints
	}
	return FooterStyle.Render(indicator) + "\n" + hints
}

// errorIndicator summarises failing feeds on one line, or "" when healthy.
func (m Model) errorIndicator() string {
	if !m.state.Degraded() {
		return ""
	}

	var parts []string
	if e := m.state.MetricsError; e != nil {
		parts = append(parts, fmt.Sprintf("metrics %s error: %s", e.Kind, e.Message))
	}
	if e := m.state.SyncError; e != nil {
		msg := fmt.Sprintf("sync %s error: %s", e.Kind, e.Message)
		if m.state.SyncStale {
			msg += " (showing last known status)"
		}
		parts = append(parts, msg)
	}

	text := GlyphWarning + " " + strings.Join(parts, "; ")
	if m.width > 4 {
		text = truncate(text, m.width-2)
	}
	return ErrorIndicatorStyle.Render(text)
}

// truncate shortens s to limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
