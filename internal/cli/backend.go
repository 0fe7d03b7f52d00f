package cli

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/config"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/logger"
)

// backend is everything a command needs to show one dashboard session.
type backend struct {
	cfg      *config.Config
	client   *api.Client
	registry *prometheus.Registry
	vm       *dashboard.ViewModel
}

// loadConfig finds and validates the config. A non-empty baseURL replaces
// the configured one.
func loadConfig(baseURL string) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, err
	}

	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if path == "" {
		logger.Default().Debug("no config file found, using defaults and environment")
	} else {
		logger.Default().Debug("loaded config from %s", path)
	}
	return cfg, nil
}

// newBackend wires the API client, both feeds and the ViewModel for cfg.
// Feed request metrics go to a private registry.
func newBackend(cfg *config.Config, log logger.Logger) *backend {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	opts := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
		api.WithUserAgent(api.DefaultUserAgent + "/" + GetVersion()),
		api.WithMetrics(api.NewMetrics(reg)),
	}
	for name, value := range cfg.Headers {
		opts = append(opts, api.WithHeader(name, value))
	}
	client := api.NewClient(cfg.BaseURL, opts...)

	fetcher := dashboard.NewMetricsFetcher(client, nil)
	poller := dashboard.NewSyncStatusPoller(client,
		dashboard.WithInterval(cfg.SyncInterval),
		dashboard.WithPollerLogger(log),
	)

	return &backend{
		cfg:      cfg,
		client:   client,
		registry: reg,
		vm:       dashboard.NewViewModel(fetcher, poller, dashboard.WithLogger(log)),
	}
}

// metricsHandler exposes the registry in the Prometheus text format.
func metricsHandler(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

// serveMetrics starts the metrics endpoint on addr. The listener is bound
// before returning so a busy port fails the command instead of a log line.
// The returned function shuts the server down.
func serveMetrics(addr string, reg *prometheus.Registry, log logger.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't listen on "+addr+" for metrics",
			"Pick a free address with --metrics-addr, e.g. 127.0.0.1:9464")
	}

	srv := &http.Server{
		Handler:           metricsHandler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped: %v", err)
		}
	}()
	log.Info("serving metrics on http://%s/metrics", ln.Addr())

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return ln.Addr().String(), shutdown, nil
}
