// Package dashboard keeps the client-side view of the integration backend in
// sync: aggregate business metrics and per-platform connector health.
//
// # Key Components
//
//	MetricsFetcher    - Pulls the analytics snapshot once per activation
//	SyncStatusPoller  - Pulls connector health now and then every interval
//	ViewModel         - Owns both, merges their results into a ViewState
//
// # Message Flow
//
// Fetches run in their own goroutines and never touch state. Each completion
// is sent as an Event on ViewModel.Events(); the owner of the ViewModel (the
// Bubble Tea update loop, or the status command) hands each Event to Apply,
// which is the only place ViewState changes:
//
//  1. Activate() bumps the epoch, spawns the metrics fetch, starts the poller
//  2. Each fetch/poll completion arrives as an Event stamped with its epoch
//  3. Apply() drops events from other epochs, merges the rest
//  4. Deactivate() cancels in-flight requests, stops the poller, bumps the epoch
//
// A failed feed never blanks the view: the last good value is kept and the
// failure is recorded on ViewState.LastError.
//
// Activate, Deactivate, Refresh, Apply and State must all be called from a
// single goroutine.
package dashboard
