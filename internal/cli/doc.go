// Package cli implements the opsdash command-line interface.
//
// Commands are Cobra commands that load config, wire a backend (API client,
// metrics fetcher, sync status poller and ViewModel) and hand it to a
// presenter:
//
//	opsdash [watch]     - Full-screen live dashboard (internal/tui)
//	opsdash status      - One headless session, printed as a table or JSON
//	opsdash init        - Create .opsdash.yaml
//	opsdash fixture     - Local stand-in backend serving sample data
//	opsdash doctor      - Diagnose config, backend and terminal problems
//	opsdash version     - Build information
//	opsdash completion  - Shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --verbose) are defined on the root command and
// available to all subcommands. --base-url overrides the configured backend
// for watch, status and doctor.
//
// # Output
//
// watch needs a terminal. When stdout is redirected it falls back to status
// so scripts always get plain text. status --json and doctor --json wrap their result in a
// JSONEnvelope; failures use the same envelope with a machine-readable code.
package cli
