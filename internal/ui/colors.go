package ui

import "github.com/charmbracelet/lipgloss"

// Colors use plain ANSI codes so one-shot output (status, init) reads the
// same in any terminal, including ones without true color.
//   GREEN  -> ANSI 2
//   RED    -> ANSI 1
//   YELLOW -> ANSI 3
//   CYAN   -> ANSI 6
//   GRAY   -> ANSI 8 (bright black)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary lipgloss.Color = "7" // White/default
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)
