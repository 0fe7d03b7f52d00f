package ui

// Unicode symbols for status indicators in plain CLI output.
const (
	SymbolSuccess = "✓" // Step completed
	SymbolFail    = "✗" // Step or platform failed
	SymbolPending = "○" // Nothing known yet
	SymbolSyncing = "◐" // Platform sync in progress
	SymbolOK      = "●" // Platform connected
	SymbolWarning = "⚠" // Data shown is stale
)
