// Package fixture serves the integration backend's dashboard endpoints from
// static data, for local development and tests.
package fixture

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/logger"
	"gopkg.in/yaml.v3"
)

// Data is the content served by the fixture backend.
type Data struct {
	Dashboard  Dashboard           `yaml:"dashboard" json:"dashboard"`
	SyncStatus map[string]Platform `yaml:"sync_status" json:"sync_status"`
}

// Dashboard is the analytics payload.
type Dashboard struct {
	TotalOrders       int64   `yaml:"total_orders" json:"total_orders"`
	TotalRevenue      float64 `yaml:"total_revenue" json:"total_revenue"`
	LowStockItems     int64   `yaml:"low_stock_items" json:"low_stock_items"`
	PendingProduction int64   `yaml:"pending_production" json:"pending_production"`
}

// Platform is one sync status entry. Empty fields are omitted on the wire.
type Platform struct {
	Status   string `yaml:"status" json:"status,omitempty"`
	LastSync string `yaml:"last_sync" json:"last_sync,omitempty"`
}

// Sample returns the placeholder data the backend ships before real
// connectors are wired.
func Sample() Data {
	return Data{
		Dashboard: Dashboard{
			TotalOrders:       42,
			TotalRevenue:      1000.5,
			LowStockItems:     3,
			PendingProduction: 7,
		},
		SyncStatus: map[string]Platform{
			"shopify":    {Status: "connected", LastSync: "2025-01-26T10:30:00Z"},
			"nuorder":    {Status: "syncing", LastSync: "2025-01-26T10:25:00Z"},
			"quickbooks": {Status: "connected", LastSync: "2025-01-26T10:35:00Z"},
		},
	}
}

// LoadFile reads fixture data from a YAML file.
func LoadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read fixture: %w", err)
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return d, nil
}

// Server holds mutable fixture state behind a chi router.
type Server struct {
	mu      sync.RWMutex
	data    Data
	failing map[string]bool
	delay   time.Duration
	hits    map[string]int
	log     logger.Logger
}

// NewServer creates a fixture backend serving data.
func NewServer(data Data, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}
	return &Server{
		data:    data,
		failing: make(map[string]bool),
		hits:    make(map[string]int),
		log:     log,
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get(api.DashboardPath, s.serveFeed(api.FeedMetrics, func(d Data) interface{} { return d.Dashboard }))
	r.Get(api.SyncStatusPath, s.serveFeed(api.FeedSync, func(d Data) interface{} { return d.SyncStatus }))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// SetFailing makes a feed ("metrics" or "sync") answer 503.
func (s *Server) SetFailing(feed string, failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[feed] = failing
}

// SetDelay adds latency before every feed response.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetData replaces the served data.
func (s *Server) SetData(d Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
}

// Hits returns how many requests a feed has received.
func (s *Server) Hits(feed string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits[feed]
}

func (s *Server) serveFeed(feed string, pick func(Data) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[feed]++
		failing := s.failing[feed]
		delay := s.delay
		payload := pick(s.data)
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		reqID := middleware.GetReqID(r.Context())
		if failing {
			s.log.Debug("%s %s -> 503 (simulated) [%s]", r.Method, r.URL.Path, reqID)
			http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.log.Warn("encode %s payload: %v", feed, err)
			return
		}
		s.log.Debug("%s %s -> 200 [%s]", r.Method, r.URL.Path, reqID)
	}
}
