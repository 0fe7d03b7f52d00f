// Package tui renders the operations dashboard in the terminal.
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: wraps a dashboard.ViewModel plus layout and help state
//   - Update: hands feed events to ViewModel.Apply, handles keys and resizes
//   - View: renders the latest ViewState copy
//
// # Message Flow
//
//  1. Init activates the ViewModel and starts waiting on its Events channel
//  2. eventMsg arrives for every feed completion; Update applies it, takes a
//     fresh ViewState copy and waits for the next one
//  3. clockMsg fires every second so relative times stay current
//  4. Quitting deactivates the ViewModel before tea.Quit
//
// Update is the only caller of Apply, which keeps all state changes on the
// Bubble Tea goroutine.
//
// # Layout
//
// Metric cards sit side by side when the terminal is wide enough
// (BreakpointWide) and stack into two rows otherwise. Below them the
// Integration Status section shows one chip per platform.
package tui
