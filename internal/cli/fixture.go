package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/fixture"
	"github.com/rileyhilliard/opsdash/internal/logger"
)

// fixtureOptions holds flags for the fixture command.
type fixtureOptions struct {
	Addr  string
	File  string
	Fail  []string
	Delay string
}

// fixtureCommand serves fixture data until interrupted.
func fixtureCommand(ctx context.Context, opts fixtureOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewEnvLogger("fixture")

	srv, err := newFixtureServer(opts, log)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't listen on "+opts.Addr,
			"Pick a free address with --addr, e.g. 127.0.0.1:8001")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("serving fixture backend on http://%s (ctrl+c to stop)", ln.Addr())
	return serveFixture(ctx, ln, srv.Router(), log)
}

// newFixtureServer builds the fixture backend from the flags: data from
// --file or the built-in sample, plus any simulated failures and latency.
func newFixtureServer(opts fixtureOptions, log logger.Logger) (*fixture.Server, error) {
	data := fixture.Sample()
	if opts.File != "" {
		loaded, err := fixture.LoadFile(opts.File)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Can't load fixture data from "+opts.File,
				"Check the file exists and is valid YAML")
		}
		data = loaded
	}

	feeds, err := ParseFeeds(opts.Fail)
	if err != nil {
		return nil, err
	}
	delay, err := ParseDurationFlag("delay", opts.Delay)
	if err != nil {
		return nil, err
	}

	srv := fixture.NewServer(data, log)
	for _, feed := range feeds {
		srv.SetFailing(feed, true)
		log.Info("%s feed will answer 503", feed)
	}
	srv.SetDelay(delay)
	return srv, nil
}

// serveFixture serves h on ln until ctx is done, then shuts down gracefully.
func serveFixture(ctx context.Context, ln net.Listener, h http.Handler, log logger.Logger) error {
	httpSrv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down fixture backend")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
