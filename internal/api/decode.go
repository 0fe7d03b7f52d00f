package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/opsdash/internal/errors"
)

// lastSyncLayouts are tried in order. The second covers naive ISO-8601
// timestamps (no offset), which are read as UTC.
var lastSyncLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// DecodeDashboard parses and validates an analytics response body.
func DecodeDashboard(body []byte) (Dashboard, error) {
	var p dashboardPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Dashboard{}, decodeErr(FeedMetrics, err)
	}

	missing := []string{}
	if p.TotalOrders == nil {
		missing = append(missing, "total_orders")
	}
	if p.TotalRevenue == nil {
		missing = append(missing, "total_revenue")
	}
	if p.LowStockItems == nil {
		missing = append(missing, "low_stock_items")
	}
	if p.PendingProduction == nil {
		missing = append(missing, "pending_production")
	}
	if len(missing) > 0 {
		return Dashboard{}, decodeErr(FeedMetrics, fmt.Errorf("missing fields %v", missing))
	}

	d := Dashboard{
		TotalOrders:       *p.TotalOrders,
		TotalRevenue:      *p.TotalRevenue,
		LowStockItems:     *p.LowStockItems,
		PendingProduction: *p.PendingProduction,
	}
	if d.TotalOrders < 0 || d.LowStockItems < 0 || d.PendingProduction < 0 || d.TotalRevenue.IsNegative() {
		return Dashboard{}, decodeErr(FeedMetrics, fmt.Errorf("counts and revenue must be non-negative"))
	}
	return d, nil
}

// DecodeSyncStatus parses a sync status response body. Only a body that
// isn't a JSON object is rejected. A platform entry that can't be read is
// kept with an empty status and a Problem, and an unparsable last_sync is
// dropped for that platform alone.
func DecodeSyncStatus(body []byte) (SyncReport, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, decodeErr(FeedSync, fmt.Errorf("expected a JSON object"))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, decodeErr(FeedSync, err)
	}

	report := make(SyncReport, len(raw))
	for key, msg := range raw {
		report[key] = decodePlatform(msg)
	}
	return report, nil
}

// decodePlatform reads one entry field by field, so a bad last_sync doesn't
// cost the status and vice versa.
func decodePlatform(msg json.RawMessage) PlatformReport {
	entry := bytes.TrimSpace(msg)
	if bytes.Equal(entry, []byte("null")) {
		return PlatformReport{}
	}
	if len(entry) == 0 || entry[0] != '{' {
		return PlatformReport{Problem: "expected an object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return PlatformReport{Problem: err.Error()}
	}

	var r PlatformReport
	var problems []string

	if rawStatus, ok := fields["status"]; ok {
		var status *string
		if err := json.Unmarshal(rawStatus, &status); err != nil {
			problems = append(problems, fmt.Sprintf("status %s is not a string", bytes.TrimSpace(rawStatus)))
		} else if status != nil {
			r.Status = *status
		}
	}

	if rawLastSync, ok := fields["last_sync"]; ok {
		var lastSync *string
		if err := json.Unmarshal(rawLastSync, &lastSync); err != nil {
			problems = append(problems, fmt.Sprintf("last_sync %s is not a string", bytes.TrimSpace(rawLastSync)))
		} else if lastSync != nil && *lastSync != "" {
			ts, err := parseLastSync(*lastSync)
			if err != nil {
				problems = append(problems, err.Error())
			} else {
				r.LastSync = &ts
			}
		}
	}

	r.Problem = strings.Join(problems, "; ")
	return r
}

func parseLastSync(s string) (time.Time, error) {
	for _, layout := range lastSyncLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("last_sync %q is not an ISO-8601 timestamp", s)
}

func decodeErr(feed string, cause error) error {
	return errors.WrapWithCode(cause, errors.ErrDecode,
		fmt.Sprintf("Couldn't decode %s response", feed),
		"The backend returned a body that doesn't match the expected shape")
}
