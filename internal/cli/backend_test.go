package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/config"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_BaseURLOverride(t *testing.T) {
	useConfig(t, "http://localhost:8000")

	cfg, err := loadConfig(" https://staging.example.com/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.SyncInterval, "rest of the file still applies")
}

func TestLoadConfig_Invalid(t *testing.T) {
	useConfig(t, "http://localhost:8000")

	_, err := loadConfig("localhost:8000")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	orig := cfgFile
	cfgFile = "/nonexistent/opsdash.yaml"
	t.Cleanup(func() { cfgFile = orig })

	_, err := loadConfig("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestNewBackend_SendsHeadersAndRecordsMetrics(t *testing.T) {
	var mu sync.Mutex
	var seen http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = r.Header.Clone()
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"total_orders":1,"total_revenue":2.5,"low_stock_items":0,"pending_production":0}`)
	}))
	defer ts.Close()

	cfg := config.DefaultConfig()
	cfg.BaseURL = ts.URL
	cfg.Headers = map[string]string{"Authorization": "Bearer token"}

	b := newBackend(cfg, logger.Noop())
	_, err := b.client.Dashboard(context.Background())
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, "Bearer token", seen.Get("Authorization"))
	assert.True(t, strings.HasPrefix(seen.Get("User-Agent"), api.DefaultUserAgent+"/"))
	mu.Unlock()

	count, err := testutil.GatherAndCount(b.registry, "opsdash_feed_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, b.vm.Active(), "backend starts idle")
}

func TestMetricsHandler(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newBackend(cfg, logger.Noop())

	rec := httptest.NewRecorder()
	metricsHandler(b.registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	metricsHandler(b.registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMetrics(t *testing.T) {
	b := newBackend(config.DefaultConfig(), logger.Noop())

	addr, shutdown, err := serveMetrics("127.0.0.1:0", b.registry, logger.Noop())
	require.NoError(t, err)
	defer shutdown()

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeMetrics_BadAddress(t *testing.T) {
	_, _, err := serveMetrics("not-an-address", nil, logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
