package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/util"
)

// DefaultBackendTimeout bounds each backend check.
const DefaultBackendTimeout = 5 * time.Second

// MetricsFeedCheck fetches the analytics dashboard once.
type MetricsFeedCheck struct {
	BaseURL string
	Source  dashboard.MetricsSource
	Timeout time.Duration
}

func (c *MetricsFeedCheck) Name() string     { return "metrics_feed" }
func (c *MetricsFeedCheck) Category() string { return CategoryBackend }

func (c *MetricsFeedCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	if _, err := c.Source.Dashboard(ctx); err != nil {
		return feedFailure("Metrics feed", c.BaseURL, err)
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Metrics feed answered %s", formatLatency(time.Since(start))),
	}
}

// SyncFeedCheck fetches sync status once and looks at what came back.
// Platforms the backend didn't mention, or keys opsdash doesn't know, are a
// warning: the dashboard still works but will show them as unknown or drop
// them.
type SyncFeedCheck struct {
	BaseURL string
	Source  dashboard.SyncSource
	Timeout time.Duration
}

func (c *SyncFeedCheck) Name() string     { return "sync_feed" }
func (c *SyncFeedCheck) Category() string { return CategoryBackend }

func (c *SyncFeedCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	report, err := c.Source.SyncStatus(ctx)
	if err != nil {
		return feedFailure("Sync status feed", c.BaseURL, err)
	}
	latency := formatLatency(time.Since(start))

	_, ignored := dashboard.MergeReport(report)
	reported := make(map[dashboard.Platform]bool, len(report))
	for key := range report {
		reported[dashboard.Platform(strings.ToLower(strings.TrimSpace(key)))] = true
	}
	var missing []string
	for _, p := range dashboard.Platforms() {
		if !reported[p] {
			missing = append(missing, p.DisplayName())
		}
	}

	var unreadable []string
	for _, key := range sortedReportKeys(report) {
		if report[key].Problem != "" {
			unreadable = append(unreadable, fmt.Sprintf("%s (%s)", key, report[key].Problem))
		}
	}

	var notes []string
	if len(unreadable) > 0 {
		notes = append(notes, "couldn't fully read "+util.JoinOrNone(unreadable))
	}
	if len(missing) > 0 {
		notes = append(notes, "no status for "+util.JoinOrNone(missing))
	}
	if len(ignored) > 0 {
		notes = append(notes, "ignoring unknown platforms "+util.JoinOrNone(ignored))
	}

	if len(notes) > 0 {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Sync status feed answered %s, but %s", latency, strings.Join(notes, "; ")),
			Suggestion: "Platforms without a readable report show as unknown on the dashboard",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Sync status feed answered %s", latency),
	}
}

// NewBackendChecks returns the checks for the BACKEND category. client
// usually is an *api.Client, which serves both feeds.
func NewBackendChecks(baseURL string, client interface {
	dashboard.MetricsSource
	dashboard.SyncSource
}, timeout time.Duration) []Check {
	return []Check{
		&MetricsFeedCheck{BaseURL: baseURL, Source: client, Timeout: timeout},
		&SyncFeedCheck{BaseURL: baseURL, Source: client, Timeout: timeout},
	}
}

func sortedReportKeys(report api.SyncReport) []string {
	keys := make([]string, 0, len(report))
	for k := range report {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func feedFailure(feed, baseURL string, err error) CheckResult {
	r := CheckResult{
		Status:  StatusFail,
		Message: fmt.Sprintf("%s: %s", feed, summarize(err)),
	}
	switch {
	case errors.IsCode(err, errors.ErrDecode):
		r.Suggestion = fmt.Sprintf("%s answered, but not with the shape opsdash expects. Check base_url points at the integration backend", baseURL)
	default:
		r.Suggestion = fmt.Sprintf("Check the backend is running at %s, or set base_url / --base-url", baseURL)
	}
	return r
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultBackendTimeout
	}
	return context.WithTimeout(ctx, d)
}

// formatLatency formats a duration for display.
func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "in <1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("in %dms", d.Milliseconds())
	}
	return fmt.Sprintf("in %.1fs", d.Seconds())
}
