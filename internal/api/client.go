// Package api is the HTTP client for the integration backend's read-only
// dashboard endpoints. Failures are returned as structured errors with code
// NETWORK (unreachable, non-2xx) or DECODE (malformed body).
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rileyhilliard/opsdash/internal/errors"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// DefaultUserAgent identifies opsdash to the backend.
const DefaultUserAgent = "opsdash"

// Client fetches both feeds from one backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	headers    map[string]string
	userAgent  string
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves it to the transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a static header to every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.headers[name] = value
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMetrics enables request instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		headers:    make(map[string]string),
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Dashboard fetches the aggregate analytics snapshot.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	start := time.Now()
	body, err := c.get(ctx, FeedMetrics, DashboardPath)
	if err != nil {
		c.observeFailure(ctx, FeedMetrics, time.Since(start))
		return Dashboard{}, err
	}

	d, err := DecodeDashboard(body)
	if err != nil {
		c.metrics.observe(FeedMetrics, OutcomeDecode, time.Since(start))
		return Dashboard{}, err
	}
	c.metrics.observe(FeedMetrics, OutcomeOK, time.Since(start))
	return d, nil
}

// SyncStatus fetches per-platform connector health.
func (c *Client) SyncStatus(ctx context.Context) (SyncReport, error) {
	start := time.Now()
	body, err := c.get(ctx, FeedSync, SyncStatusPath)
	if err != nil {
		c.observeFailure(ctx, FeedSync, time.Since(start))
		return nil, err
	}

	r, err := DecodeSyncStatus(body)
	if err != nil {
		c.metrics.observe(FeedSync, OutcomeDecode, time.Since(start))
		return nil, err
	}
	c.metrics.observe(FeedSync, OutcomeOK, time.Since(start))
	return r, nil
}

// observeFailure records a failed request unless the caller cancelled it.
// A cancelled request says nothing about the backend.
func (c *Client) observeFailure(ctx context.Context, feed string, elapsed time.Duration) {
	if ctx.Err() == context.Canceled {
		return
	}
	c.metrics.observe(feed, OutcomeNetwork, elapsed)
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, feed, path string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Couldn't build %s request", feed),
			"Check base_url in your config")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Couldn't reach the %s endpoint", feed),
			"Check the backend is running at "+c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.New(errors.ErrNetwork,
			fmt.Sprintf("%s endpoint returned %s", feed, resp.Status),
			"GET "+url+" should return 2xx")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Connection dropped while reading %s response", feed),
			"")
	}
	return body, nil
}
