package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Endpoint paths, relative to the configured base URL.
const (
	DashboardPath  = "/api/analytics/dashboard"
	SyncStatusPath = "/api/sync/status"
)

// Feed names used in metrics labels and log lines.
const (
	FeedMetrics = "metrics"
	FeedSync    = "sync"
)

// Dashboard is a validated analytics response.
type Dashboard struct {
	TotalOrders       int64
	TotalRevenue      decimal.Decimal
	LowStockItems     int64
	PendingProduction int64
}

// PlatformReport is one entry of the sync status response. Status is the raw
// string the backend sent ("" when omitted); interpretation is left to the
// caller.
type PlatformReport struct {
	Status   string
	LastSync *time.Time

	// Problem says why part of the entry couldn't be read. Empty when the
	// entry decoded cleanly.
	Problem string
}

// SyncReport maps the backend's platform keys to their reports.
type SyncReport map[string]PlatformReport

// dashboardPayload mirrors the wire shape. Pointers distinguish a missing
// field from a zero value.
type dashboardPayload struct {
	TotalOrders       *int64           `json:"total_orders"`
	TotalRevenue      *decimal.Decimal `json:"total_revenue"`
	LowStockItems     *int64           `json:"low_stock_items"`
	PendingProduction *int64           `json:"pending_production"`
}

