// Package ui renders the non-interactive terminal output of opsdash: the
// tables printed by "opsdash status" and the spinner shown while "opsdash
// init" checks a backend.
//
// The full-screen dashboard lives in internal/tui; this package is for
// output that scrolls with the shell.
//
// # Colors
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess (green)  - connected platforms, completed steps
//	ColorError   (red)    - failures
//	ColorWarning (yellow) - syncing platforms, stale data
//	ColorInfo    (cyan)   - spinner
//	ColorMuted   (gray)   - secondary text, timing info
//
// lipgloss drops the codes automatically when stdout is not a terminal.
package ui
