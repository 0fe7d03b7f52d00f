package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/opsdash/internal/logger"
)

// eventBuffer is the capacity of the Events channel.
const eventBuffer = 16

// Event is a feed completion waiting to be applied.
type Event struct {
	Epoch uint64
	Feed  Feed

	// Seq orders metrics fetches within a session; only the latest applies.
	Seq uint64

	Snapshot *Snapshot    // FeedMetrics success
	Sync     SyncStatusMap // FeedSync success
	Err      error
	At       time.Time
}

// ViewModel owns the lifecycle of both feeds and the ViewState they produce.
// It is not safe for concurrent use; see the package doc.
type ViewModel struct {
	fetcher *MetricsFetcher
	poller  *SyncStatusPoller
	clock   Clock
	log     logger.Logger
	newID   func() string

	events chan Event

	epoch         uint64
	metricsSeq    uint64
	cancel        context.CancelFunc
	ctx           context.Context
	cancelMetrics context.CancelFunc

	metricsReported bool
	syncReported    bool
	ownsPoller      bool

	state ViewState
}

// ViewModelOption configures a ViewModel.
type ViewModelOption func(*ViewModel)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ViewModelOption {
	return func(vm *ViewModel) {
		if l != nil {
			vm.log = l
		}
	}
}

// WithViewClock replaces the time source used for event timestamps.
func WithViewClock(c Clock) ViewModelOption {
	return func(vm *ViewModel) {
		if c != nil {
			vm.clock = c
		}
	}
}

// WithSessionIDs replaces the session id generator.
func WithSessionIDs(fn func() string) ViewModelOption {
	return func(vm *ViewModel) {
		if fn != nil {
			vm.newID = fn
		}
	}
}

// NewViewModel creates an idle ViewModel over the two feeds.
func NewViewModel(fetcher *MetricsFetcher, poller *SyncStatusPoller, opts ...ViewModelOption) *ViewModel {
	vm := &ViewModel{
		fetcher: fetcher,
		poller:  poller,
		clock:   RealClock(),
		log:     logger.Noop(),
		newID:   uuid.NewString,
		events:  make(chan Event, eventBuffer),
		state: ViewState{
			Phase:      PhaseIdle,
			SyncStatus: NewSyncStatusMap(),
		},
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Events delivers feed completions. Pass each one to Apply.
func (vm *ViewModel) Events() <-chan Event {
	return vm.events
}

// Active reports whether a session is running.
func (vm *ViewModel) Active() bool {
	return vm.cancel != nil
}

// State returns a copy of the current ViewState.
func (vm *ViewModel) State() ViewState {
	return vm.state.clone()
}

// Activate starts a session: Idle -> Loading. The metrics fetch and the sync
// poller run independently. Returns false if a session is already active.
func (vm *ViewModel) Activate(ctx context.Context) bool {
	if vm.cancel != nil {
		return false
	}

	vm.epoch++
	vm.ctx, vm.cancel = context.WithCancel(ctx)
	vm.metricsSeq = 0
	vm.metricsReported = false
	vm.syncReported = false
	vm.state = ViewState{
		Phase:            PhaseLoading,
		SessionID:        vm.newID(),
		SyncStatus:       NewSyncStatusMap(),
		IsLoadingInitial: true,
	}

	vm.log.Info("dashboard session %s activated", vm.state.SessionID)

	vm.startMetricsFetch()

	epoch := vm.epoch
	vm.ownsPoller = vm.poller.Start(vm.ctx, func(ctx context.Context, r PollResult) {
		vm.send(ctx, Event{
			Epoch: epoch,
			Feed:  FeedSync,
			Sync:  r.Status,
			Err:   r.Err,
			At:    r.At,
		})
	})
	if !vm.ownsPoller {
		// Someone else's run owns the poller, so no sync result will reach
		// this session. Don't hold the initial load open waiting for one.
		vm.log.Warn("session %s: sync poller already running, sync status will stay unknown", vm.state.SessionID)
		vm.syncReported = true
	}
	return true
}

// Deactivate ends the session: any phase -> Idle. In-flight requests are
// cancelled and any result that still arrives is ignored. Returns false if
// no session was active.
func (vm *ViewModel) Deactivate() bool {
	if vm.cancel == nil {
		return false
	}

	vm.cancel()
	vm.cancel = nil
	vm.ctx = nil
	vm.cancelMetrics = nil
	if vm.ownsPoller {
		vm.poller.Stop()
		vm.ownsPoller = false
	}
	vm.epoch++

	vm.state.Phase = PhaseIdle
	vm.state.IsLoadingInitial = false
	vm.log.Info("dashboard session %s deactivated", vm.state.SessionID)
	return true
}

// Refresh re-fetches metrics and asks the poller for an immediate tick.
// A metrics fetch still in flight is superseded. Returns false when idle.
func (vm *ViewModel) Refresh() bool {
	if vm.cancel == nil {
		return false
	}
	vm.log.Debug("manual refresh in session %s", vm.state.SessionID)
	vm.startMetricsFetch()
	vm.poller.Trigger()
	return true
}

// Apply merges one event into the state. Events from an earlier session,
// superseded metrics fetches, and anything arriving while idle are dropped.
// Returns whether the state changed.
func (vm *ViewModel) Apply(ev Event) bool {
	if vm.cancel == nil || ev.Epoch != vm.epoch {
		vm.log.Debug("dropping stale %s event (epoch %d, current %d)", ev.Feed, ev.Epoch, vm.epoch)
		return false
	}

	var feedErr *FeedError
	switch ev.Feed {
	case FeedMetrics:
		if ev.Seq != vm.metricsSeq {
			vm.log.Debug("dropping superseded metrics fetch %d", ev.Seq)
			return false
		}
		vm.metricsReported = true
		if ev.Err != nil {
			// Keep whatever snapshot we already had.
			feedErr = newFeedError(FeedMetrics, ev.Err, ev.At)
			vm.state.MetricsError = feedErr
		} else if ev.Snapshot != nil {
			snap := *ev.Snapshot
			vm.state.Snapshot = &snap
			vm.state.MetricsError = nil
			vm.state.MetricsUpdatedAt = ev.At
		}

	case FeedSync:
		vm.syncReported = true
		if ev.Err != nil {
			feedErr = newFeedError(FeedSync, ev.Err, ev.At)
			vm.state.SyncError = feedErr
			// Only a map from an earlier successful poll can be stale.
			vm.state.SyncStale = !vm.state.SyncUpdatedAt.IsZero()
		} else {
			vm.state.SyncStatus = completeStatusMap(ev.Sync)
			vm.state.SyncError = nil
			vm.state.SyncStale = false
			vm.state.SyncUpdatedAt = ev.At
		}

	default:
		vm.log.Warn("ignoring event for unknown feed %q", ev.Feed)
		return false
	}

	switch {
	case feedErr != nil:
		vm.state.LastError = feedErr
		vm.log.Warn("session %s: %s feed failed (%s): %s", vm.state.SessionID, feedErr.Feed, feedErr.Kind, feedErr.Message)
	case vm.state.LastError != nil && vm.state.LastError.Feed == ev.Feed:
		vm.state.LastError = vm.otherFeedError(ev.Feed)
	}

	if vm.state.IsLoadingInitial {
		if vm.metricsReported && vm.syncReported {
			vm.state.IsLoadingInitial = false
			vm.state.Phase = PhaseReady
			vm.log.Info("session %s initial load complete (degraded=%t)", vm.state.SessionID, vm.state.Degraded())
		}
	} else {
		vm.state.Phase = PhaseReady
	}

	return true
}

// AwaitInitial applies events until the initial load completes, the session
// ends, or ctx is done. It is meant for callers without their own event loop.
func (vm *ViewModel) AwaitInitial(ctx context.Context) (ViewState, error) {
	for vm.Active() && vm.state.IsLoadingInitial {
		select {
		case ev := <-vm.events:
			vm.Apply(ev)
		case <-ctx.Done():
			return vm.State(), ctx.Err()
		}
	}
	return vm.State(), nil
}

func (vm *ViewModel) startMetricsFetch() {
	if vm.cancelMetrics != nil {
		vm.cancelMetrics()
	}
	vm.metricsSeq++

	ctx, cancel := context.WithCancel(vm.ctx)
	vm.cancelMetrics = cancel
	epoch, seq := vm.epoch, vm.metricsSeq

	go func() {
		defer cancel()
		snap, err := vm.fetcher.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		ev := Event{Epoch: epoch, Feed: FeedMetrics, Seq: seq, Err: err, At: vm.clock.Now()}
		if err == nil {
			ev.Snapshot = &snap
		}
		vm.send(ctx, ev)
	}()
}

func (vm *ViewModel) send(ctx context.Context, ev Event) {
	select {
	case vm.events <- ev:
	case <-ctx.Done():
	}
}

func (vm *ViewModel) otherFeedError(feed Feed) *FeedError {
	if feed == FeedMetrics {
		return vm.state.SyncError
	}
	return vm.state.MetricsError
}

// completeStatusMap copies m and fills any missing platform as unknown, so
// the state always holds the full platform set.
func completeStatusMap(m SyncStatusMap) SyncStatusMap {
	out := NewSyncStatusMap()
	for _, p := range Platforms() {
		if h, ok := m[p]; ok {
			out[p] = h
		}
	}
	return out.Clone()
}
