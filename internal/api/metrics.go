package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK      = "ok"
	OutcomeNetwork = "network_error"
	OutcomeDecode  = "decode_error"
)

// Metrics instruments feed requests.
type Metrics struct {
	// Requests counts completed requests by feed and outcome.
	Requests *prometheus.CounterVec

	// Duration observes request latency by feed, including body decoding.
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the feed collectors on reg. A nil reg gets a private
// registry that nothing scrapes.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "opsdash_feed_requests_total",
			Help: "Feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),

		Duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opsdash_feed_request_duration_seconds",
			Help:    "Feed request latency.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
	}
}

func (m *Metrics) observe(feed, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(feed, outcome).Inc()
	m.Duration.WithLabelValues(feed).Observe(elapsed.Seconds())
}
