package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink
	ColorActive   = lipgloss.Color("#00FFFF") // Neon cyan

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97") // Neon pink
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	// CardAlertStyle marks a metric that needs attention (low stock).
	CardAlertStyle = CardStyle.
			BorderForeground(ColorWarning)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true).
				MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ChipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	ErrorIndicatorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	StaleIndicatorStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)
)

// Status glyphs
const (
	GlyphConnected = "◉"
	GlyphSyncing   = "◐"
	GlyphError     = "✗"
	GlyphUnknown   = "◌"
	GlyphWarning   = "⚠"
)

// SpinnerFrames is the loading animation.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// StatusColor returns the color for a connector status.
func StatusColor(s dashboard.Status) lipgloss.Color {
	switch s {
	case dashboard.StatusConnected:
		return ColorHealthy
	case dashboard.StatusSyncing:
		return ColorActive
	case dashboard.StatusError:
		return ColorCritical
	default:
		return ColorTextMuted
	}
}

// StatusGlyph returns the indicator character for a connector status.
func StatusGlyph(s dashboard.Status) string {
	switch s {
	case dashboard.StatusConnected:
		return GlyphConnected
	case dashboard.StatusSyncing:
		return GlyphSyncing
	case dashboard.StatusError:
		return GlyphError
	default:
		return GlyphUnknown
	}
}
