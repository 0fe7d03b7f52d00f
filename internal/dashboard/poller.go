package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/logger"
)

// DefaultPollInterval is how often sync status is re-polled.
const DefaultPollInterval = 30 * time.Second

// SyncSource supplies per-platform sync status. *api.Client implements it.
// Implementations must return promptly once ctx is cancelled.
type SyncSource interface {
	SyncStatus(ctx context.Context) (api.SyncReport, error)
}

// PollResult is the outcome of one tick. Status is nil when Err is set.
type PollResult struct {
	Generation uint64
	Status     SyncStatusMap
	Err        error
	At         time.Time
}

// EmitFunc receives poll results. It runs on the poll goroutine, so the next
// tick waits until it returns; it must give up once ctx is done.
type EmitFunc func(ctx context.Context, r PollResult)

// SyncStatusPoller polls sync status immediately on Start and then on a fixed
// interval until Stop. Polls never overlap: a tick that comes due while a poll
// (or its emit) is still pending is dropped.
type SyncStatusPoller struct {
	source   SyncSource
	interval time.Duration
	clock    Clock
	log      logger.Logger

	mu         sync.Mutex
	running    bool
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	trigger    chan struct{}
}

// PollerOption configures a SyncStatusPoller.
type PollerOption func(*SyncStatusPoller)

// WithInterval sets the tick period. Non-positive values are ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *SyncStatusPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(c Clock) PollerOption {
	return func(p *SyncStatusPoller) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithPollerLogger sets the logger.
func WithPollerLogger(l logger.Logger) PollerOption {
	return func(p *SyncStatusPoller) {
		if l != nil {
			p.log = l
		}
	}
}

// NewSyncStatusPoller creates a stopped poller over source.
func NewSyncStatusPoller(source SyncSource, opts ...PollerOption) *SyncStatusPoller {
	p := &SyncStatusPoller{
		source:   source,
		interval: DefaultPollInterval,
		clock:    RealClock(),
		log:      logger.Noop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the tick period.
func (p *SyncStatusPoller) Interval() time.Duration {
	return p.interval
}

// Running reports whether the poller is started.
func (p *SyncStatusPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Generation returns the number of the current (or most recent) run. Each
// Start increments it and every PollResult carries the value of its run.
func (p *SyncStatusPoller) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// PollOnce fetches sync status and merges it into a full SyncStatusMap.
// A panicking source is reported as an error rather than killing the loop.
func (p *SyncStatusPoller) PollOnce(ctx context.Context) (status SyncStatusMap, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = nil
			err = errors.New(errors.ErrNetwork, fmt.Sprintf("sync status poll panicked: %v", r), "")
		}
	}()

	report, err := p.source.SyncStatus(ctx)
	if err != nil {
		return nil, err
	}

	merged, ignored := MergeReport(report)
	for _, key := range ignored {
		p.log.Debug("ignoring sync status for unrecognised platform %q", key)
	}
	for _, key := range sortedKeys(report) {
		if problem := report[key].Problem; problem != "" {
			p.log.Debug("sync status for %q partly unreadable: %s", key, problem)
		}
	}
	return merged, nil
}

// Start begins polling. It returns false, doing nothing, if the poller is
// already running.
func (p *SyncStatusPoller) Start(ctx context.Context, emit EmitFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.generation++
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.trigger = make(chan struct{}, 1)

	go p.run(runCtx, p.generation, p.trigger, p.done, emit)
	return true
}

// Stop halts polling and waits for the poll goroutine to exit. Once it
// returns, no poll is issued and nothing more is emitted for this run.
// Calling Stop on a stopped poller is a no-op.
func (p *SyncStatusPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.cancel, p.done, p.trigger = nil, nil, nil
	p.mu.Unlock()

	cancel()
	<-done
}

// Trigger requests an out-of-schedule poll. It never blocks; requests made
// while one is already pending collapse into it.
func (p *SyncStatusPoller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *SyncStatusPoller) run(ctx context.Context, gen uint64, trigger <-chan struct{}, done chan<- struct{}, emit EmitFunc) {
	defer close(done)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debug("sync poller run %d started (every %s)", gen, p.interval)
	p.pollAndEmit(ctx, gen, emit)

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("sync poller run %d stopped", gen)
			return
		case <-ticker.C():
		case <-trigger:
		}
		if ctx.Err() != nil {
			p.log.Debug("sync poller run %d stopped", gen)
			return
		}
		p.pollAndEmit(ctx, gen, emit)
	}
}

func (p *SyncStatusPoller) pollAndEmit(ctx context.Context, gen uint64, emit EmitFunc) {
	status, err := p.PollOnce(ctx)
	if ctx.Err() != nil {
		p.log.Debug("discarding sync status poll that finished after stop")
		return
	}
	if err != nil {
		p.log.Warn("sync status poll failed (%s): %s", KindOf(err), errorSummary(err))
	}
	emit(ctx, PollResult{
		Generation: gen,
		Status:     status,
		Err:        err,
		At:         p.clock.Now(),
	})
}

func sortedKeys(report api.SyncReport) []string {
	keys := make([]string, 0, len(report))
	for k := range report {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
