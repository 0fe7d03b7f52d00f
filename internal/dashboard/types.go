package dashboard

import (
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/shopspring/decimal"
)

// Snapshot is the latest known aggregate metrics. Replaced wholesale on every
// successful fetch, never modified in place.
type Snapshot struct {
	TotalOrders       int64
	TotalRevenue      decimal.Decimal
	LowStockItems     int64
	PendingProduction int64
	FetchedAt         time.Time
}

// SnapshotFrom converts a validated API response.
func SnapshotFrom(d api.Dashboard, at time.Time) Snapshot {
	return Snapshot{
		TotalOrders:       d.TotalOrders,
		TotalRevenue:      d.TotalRevenue,
		LowStockItems:     d.LowStockItems,
		PendingProduction: d.PendingProduction,
		FetchedAt:         at,
	}
}

// Platform identifies an external commerce or accounting system.
type Platform string

const (
	PlatformShopify    Platform = "shopify"
	PlatformNuOrder    Platform = "nuorder"
	PlatformQuickBooks Platform = "quickbooks"
)

// Platforms returns the fixed platform set in display order.
func Platforms() []Platform {
	return []Platform{PlatformShopify, PlatformNuOrder, PlatformQuickBooks}
}

// Known reports whether p is in the fixed platform set.
func (p Platform) Known() bool {
	switch p {
	case PlatformShopify, PlatformNuOrder, PlatformQuickBooks:
		return true
	default:
		return false
	}
}

// DisplayName returns the vendor's spelling of the platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformShopify:
		return "Shopify"
	case PlatformNuOrder:
		return "NuOrder"
	case PlatformQuickBooks:
		return "QuickBooks"
	default:
		return string(p)
	}
}

// Status is a connector's health as reported by the backend.
type Status string

const (
	StatusConnected Status = "connected"
	StatusSyncing   Status = "syncing"
	StatusError     Status = "error"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps a wire value to a Status. Empty or unrecognised values
// are StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusConnected:
		return StatusConnected
	case StatusSyncing:
		return StatusSyncing
	case StatusError:
		return StatusError
	default:
		return StatusUnknown
	}
}

// PlatformHealth is one platform's connector state.
type PlatformHealth struct {
	Platform   Platform
	Status     Status
	LastSyncAt *time.Time
}

// SyncStatusMap holds exactly one entry per platform in Platforms().
type SyncStatusMap map[Platform]PlatformHealth

// NewSyncStatusMap returns a map with every platform unknown.
func NewSyncStatusMap() SyncStatusMap {
	m := make(SyncStatusMap, len(Platforms()))
	for _, p := range Platforms() {
		m[p] = PlatformHealth{Platform: p, Status: StatusUnknown}
	}
	return m
}

// MergeReport builds a full SyncStatusMap from a backend report. Platforms
// absent from the report are unknown. Keys outside the fixed set are
// returned as ignored, sorted.
func MergeReport(report api.SyncReport) (SyncStatusMap, []string) {
	m := NewSyncStatusMap()
	var ignored []string
	for key, r := range report {
		p := Platform(strings.ToLower(strings.TrimSpace(key)))
		if !p.Known() {
			ignored = append(ignored, key)
			continue
		}
		h := PlatformHealth{Platform: p, Status: ParseStatus(r.Status)}
		if r.LastSync != nil {
			ts := *r.LastSync
			h.LastSyncAt = &ts
		}
		m[p] = h
	}
	sort.Strings(ignored)
	return m, ignored
}

// Get returns the entry for p, or an unknown entry if p is missing.
func (m SyncStatusMap) Get(p Platform) PlatformHealth {
	if h, ok := m[p]; ok {
		return h
	}
	return PlatformHealth{Platform: p, Status: StatusUnknown}
}

// Clone returns an independent copy.
func (m SyncStatusMap) Clone() SyncStatusMap {
	out := make(SyncStatusMap, len(m))
	for p, h := range m {
		if h.LastSyncAt != nil {
			ts := *h.LastSyncAt
			h.LastSyncAt = &ts
		}
		out[p] = h
	}
	return out
}

// Count returns how many platforms are in status s.
func (m SyncStatusMap) Count(s Status) int {
	n := 0
	for _, h := range m {
		if h.Status == s {
			n++
		}
	}
	return n
}

// Feed names one of the two backend data sources.
type Feed string

const (
	FeedMetrics Feed = api.FeedMetrics
	FeedSync    Feed = api.FeedSync
)

// ErrorKind classifies a feed failure.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindDecode  ErrorKind = "decode"
)

// KindOf classifies err. Anything not marked as a decode failure counts as
// a network failure.
func KindOf(err error) ErrorKind {
	if errors.IsCode(err, errors.ErrDecode) {
		return KindDecode
	}
	return KindNetwork
}

// FeedError records the most recent failure of a feed.
type FeedError struct {
	Feed    Feed
	Kind    ErrorKind
	Message string
	At      time.Time
}

func newFeedError(feed Feed, err error, at time.Time) *FeedError {
	return &FeedError{Feed: feed, Kind: KindOf(err), Message: errorSummary(err), At: at}
}

// errorSummary renders err on one line.
func errorSummary(err error) string {
	var opsErr *errors.Error
	if stderrors.As(err, &opsErr) {
		return opsErr.Summary()
	}
	return strings.TrimSpace(err.Error())
}

// Phase is the ViewModel lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ViewState is the reconciled view. Only ViewModel.Apply mutates it; callers
// get copies from ViewModel.State.
type ViewState struct {
	Phase            Phase
	SessionID        string
	Snapshot         *Snapshot
	SyncStatus       SyncStatusMap
	IsLoadingInitial bool

	// LastError is the most recent failure among feeds whose latest attempt
	// failed. Nil once every feed's latest attempt succeeded.
	LastError *FeedError

	MetricsError *FeedError
	SyncError    *FeedError

	// SyncStale is set when the latest poll failed and SyncStatus is left
	// over from an earlier successful one. A session whose polls have all
	// failed has nothing stale to show.
	SyncStale bool

	MetricsUpdatedAt time.Time
	SyncUpdatedAt    time.Time
}

// Degraded reports whether the view is rendering while at least one feed's
// latest attempt has failed.
func (s ViewState) Degraded() bool {
	if s.Phase == PhaseIdle || s.IsLoadingInitial {
		return false
	}
	return s.MetricsError != nil || s.SyncError != nil
}

// LastUpdate returns the most recent successful update of either feed.
func (s ViewState) LastUpdate() time.Time {
	if s.SyncUpdatedAt.After(s.MetricsUpdatedAt) {
		return s.SyncUpdatedAt
	}
	return s.MetricsUpdatedAt
}

func (s ViewState) clone() ViewState {
	out := s
	if s.Snapshot != nil {
		snap := *s.Snapshot
		out.Snapshot = &snap
	}
	out.SyncStatus = s.SyncStatus.Clone()
	out.LastError = cloneFeedError(s.LastError)
	out.MetricsError = cloneFeedError(s.MetricsError)
	out.SyncError = cloneFeedError(s.SyncError)
	return out
}

func cloneFeedError(e *FeedError) *FeedError {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
