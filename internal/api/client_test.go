package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureClient(t *testing.T, data fixture.Data, opts ...api.Option) (*api.Client, *fixture.Server) {
	t.Helper()
	srv := fixture.NewServer(data, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL+"/", opts...), srv
}

func TestClient_Dashboard(t *testing.T) {
	client, srv := newFixtureClient(t, fixture.Sample())

	d, err := client.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), d.TotalOrders)
	assert.Equal(t, "1000.5", d.TotalRevenue.String())
	assert.Equal(t, int64(3), d.LowStockItems)
	assert.Equal(t, int64(7), d.PendingProduction)
	assert.Equal(t, 1, srv.Hits(api.FeedMetrics))
}

func TestClient_SyncStatus(t *testing.T) {
	client, _ := newFixtureClient(t, fixture.Sample())

	r, err := client.SyncStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "connected", r["shopify"].Status)
	assert.Equal(t, "syncing", r["nuorder"].Status)
	assert.Equal(t, "connected", r["quickbooks"].Status)
	require.NotNil(t, r["nuorder"].LastSync)
}

func TestClient_Non2xxIsNetworkError(t *testing.T) {
	client, srv := newFixtureClient(t, fixture.Sample())
	srv.SetFailing(api.FeedMetrics, true)

	_, err := client.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
	assert.Contains(t, err.Error(), "503")
}

func TestClient_UnreachableIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client := api.NewClient(url)
	_, err := client.SyncStatus(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}

func TestClient_MalformedBodyIsDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_orders": `))
	}))
	defer ts.Close()

	_, err := api.NewClient(ts.URL).Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDecode))
}

func TestClient_SendsHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL,
		api.WithHeader("Authorization", "Bearer token"),
		api.WithUserAgent("opsdash-test"))
	_, err := client.SyncStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer token", got.Get("Authorization"))
	assert.Equal(t, "opsdash-test", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_Timeout(t *testing.T) {
	client, srv := newFixtureClient(t, fixture.Sample(), api.WithTimeout(20*time.Millisecond))
	srv.SetDelay(time.Second)

	start := time.Now()
	_, err := client.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_ContextCancel(t *testing.T) {
	client, srv := newFixtureClient(t, fixture.Sample())
	srv.SetDelay(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.SyncStatus(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := api.NewMetrics(reg)
	client, srv := newFixtureClient(t, fixture.Sample(), api.WithMetrics(metrics))

	_, err := client.Dashboard(context.Background())
	require.NoError(t, err)

	srv.SetFailing(api.FeedSync, true)
	_, err = client.SyncStatus(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(api.FeedMetrics, api.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(api.FeedSync, api.OutcomeNetwork)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(api.FeedSync, api.OutcomeOK)))

	count, err := testutil.GatherAndCount(reg, "opsdash_feed_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClient_CancelledRequestsNotCountedAsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := api.NewMetrics(reg)
	client, srv := newFixtureClient(t, fixture.Sample(), api.WithMetrics(metrics))
	srv.SetDelay(time.Second)

	for _, fetch := range []func(context.Context) error{
		func(ctx context.Context) error { _, err := client.Dashboard(ctx); return err },
		func(ctx context.Context) error { _, err := client.SyncStatus(ctx); return err },
	} {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		err := fetch(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(api.FeedMetrics, api.OutcomeNetwork)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(api.FeedSync, api.OutcomeNetwork)))
	count, err := testutil.GatherAndCount(reg, "opsdash_feed_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A client timeout is still a backend failure.
	timed, srv2 := newFixtureClient(t, fixture.Sample(), api.WithMetrics(metrics), api.WithTimeout(20*time.Millisecond))
	srv2.SetDelay(time.Second)
	_, err = timed.SyncStatus(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(api.FeedSync, api.OutcomeNetwork)))
}

func TestClient_BaseURL(t *testing.T) {
	assert.Equal(t, "http://backend:8000", api.NewClient("http://backend:8000///").BaseURL())
}
