package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/opsdash/internal/logger"
	"github.com/rileyhilliard/opsdash/internal/tui"
	"golang.org/x/term"
)

// watchOptions holds flags shared by "opsdash" and "opsdash watch".
type watchOptions struct {
	BaseURL     string
	MetricsAddr string
}

var watchOpts watchOptions

// isTerminal reports whether the dashboard can take over stdout.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// watchCommand opens the full-screen dashboard. Without a terminal it prints
// one status snapshot instead.
func watchCommand(ctx context.Context, opts watchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if !isTerminal() {
		logger.Default().Debug("stdout is not a terminal, printing a status snapshot instead")
		return statusCommand(ctx, statusOptions{BaseURL: opts.BaseURL, Wait: defaultStatusWait}, os.Stdout)
	}

	cfg, err := loadConfig(opts.BaseURL)
	if err != nil {
		return err
	}

	log, closeLog := openWatchLog(cfg.LogFile, os.Stderr)
	defer func() { _ = closeLog() }()

	// The TUI owns the terminal; anything logging through the default
	// logger must go to the file too.
	prev := logger.Default()
	logger.SetDefault(log)
	defer logger.SetDefault(prev)

	b := newBackend(cfg, log)

	if opts.MetricsAddr != "" {
		_, shutdown, err := serveMetrics(opts.MetricsAddr, b.registry, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("opening dashboard for %s", cfg.BaseURL)
	return tui.Run(ctx, b.vm, tui.Options{
		BaseURL:        cfg.BaseURL,
		CurrencySymbol: cfg.CurrencySymbol,
	})
}

// openWatchLog opens the log file for a dashboard run. If it can't be opened
// a warning goes to warnOut and logging is discarded.
func openWatchLog(path string, warnOut io.Writer) (logger.Logger, func() error) {
	log, closeFn, err := logger.NewFileLogger("opsdash", path)
	if err != nil {
		fmt.Fprintf(warnOut, "warning: logging disabled: %v\n", err)
		return logger.Noop(), func() error { return nil }
	}
	return log, closeFn
}
