package dashboard

import (
	"context"

	"github.com/rileyhilliard/opsdash/internal/api"
)

// MetricsSource supplies the analytics snapshot. *api.Client implements it.
type MetricsSource interface {
	Dashboard(ctx context.Context) (api.Dashboard, error)
}

// MetricsFetcher pulls the aggregate snapshot. It neither retries nor caches;
// the caller decides what a failure means.
type MetricsFetcher struct {
	source MetricsSource
	clock  Clock
}

// NewMetricsFetcher creates a fetcher over source. A nil clock uses real time.
func NewMetricsFetcher(source MetricsSource, clock Clock) *MetricsFetcher {
	if clock == nil {
		clock = RealClock()
	}
	return &MetricsFetcher{source: source, clock: clock}
}

// Fetch performs one request. Errors carry the NETWORK or DECODE code from
// the api package; use KindOf to classify them.
func (f *MetricsFetcher) Fetch(ctx context.Context) (Snapshot, error) {
	d, err := f.source.Dashboard(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return SnapshotFrom(d, f.clock.Now()), nil
}
