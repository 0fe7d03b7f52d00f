package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/logger"
	"github.com/rileyhilliard/opsdash/internal/tui"
	"github.com/rileyhilliard/opsdash/internal/ui"
	"github.com/shopspring/decimal"
)

// defaultStatusWait bounds how long status waits for both feeds.
const defaultStatusWait = 15 * time.Second

// errReported means the command already wrote its failure (as JSON) and
// only the exit code is left to set.
var errReported = stderrors.New("error already reported")

// statusOptions holds flags for the status command.
type statusOptions struct {
	BaseURL string
	Wait    time.Duration
	JSON    bool
}

// StatusOutput is the --json payload of the status command.
type StatusOutput struct {
	BaseURL   string           `json:"base_url"`
	SessionID string           `json:"session_id"`
	Loading   bool             `json:"loading"`
	Degraded  bool             `json:"degraded"`
	Metrics   *MetricsOutput   `json:"metrics"`
	Platforms []PlatformOutput `json:"platforms"`
	SyncStale bool             `json:"sync_stale"`
	Errors    []FeedErrorJSON  `json:"errors,omitempty"`
}

// MetricsOutput is the metrics snapshot. Revenue is a decimal string.
type MetricsOutput struct {
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	LowStockItems     int64           `json:"low_stock_items"`
	PendingProduction int64           `json:"pending_production"`
	FetchedAt         time.Time       `json:"fetched_at"`
}

// PlatformOutput is one platform's sync health.
type PlatformOutput struct {
	Platform string     `json:"platform"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// FeedErrorJSON describes a feed whose latest attempt failed.
type FeedErrorJSON struct {
	Feed    string `json:"feed"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// statusCommand runs one headless session, prints the result and exits.
func statusCommand(ctx context.Context, opts statusOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Wait <= 0 {
		opts.Wait = defaultStatusWait
	}

	cfg, err := loadConfig(opts.BaseURL)
	if err != nil {
		if opts.JSON {
			_ = WriteJSONFromError(w, err)
			return errReported
		}
		return err
	}

	// Session chatter would interleave with the table; only show it with -v.
	log := logger.Noop()
	if verbose {
		log = logger.Default()
	}
	b := newBackend(cfg, log)
	state, waitErr := collectStatus(ctx, b.vm, opts.Wait)
	out := buildStatusOutput(cfg.BaseURL, state)

	if waitErr != nil {
		timeout := errors.WrapWithCode(waitErr, errors.ErrNetwork,
			fmt.Sprintf("%s didn't answer within %s", cfg.BaseURL, opts.Wait),
			"Check the backend is running, or allow longer with --wait")
		if opts.JSON {
			_ = WriteJSONError(w, ErrCodeTimeout, timeout.Message, timeout.Suggestion, out)
			return errReported
		}
		fmt.Fprint(w, renderStatusText(out, cfg.CurrencySymbol, time.Now()))
		return timeout
	}

	if opts.JSON {
		return WriteJSONSuccess(w, out)
	}
	fmt.Fprint(w, renderStatusText(out, cfg.CurrencySymbol, time.Now()))
	return nil
}

// collectStatus activates vm, waits for the initial load (at most wait) and
// deactivates again.
func collectStatus(ctx context.Context, vm *dashboard.ViewModel, wait time.Duration) (dashboard.ViewState, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	vm.Activate(ctx)
	state, err := vm.AwaitInitial(ctx)
	vm.Deactivate()
	return state, err
}

// buildStatusOutput flattens a ViewState for printing.
func buildStatusOutput(baseURL string, s dashboard.ViewState) StatusOutput {
	out := StatusOutput{
		BaseURL:   baseURL,
		SessionID: s.SessionID,
		Loading:   s.IsLoadingInitial,
		Degraded:  s.MetricsError != nil || s.SyncError != nil,
		SyncStale: s.SyncStale,
	}

	if snap := s.Snapshot; snap != nil {
		out.Metrics = &MetricsOutput{
			TotalOrders:       snap.TotalOrders,
			TotalRevenue:      snap.TotalRevenue,
			LowStockItems:     snap.LowStockItems,
			PendingProduction: snap.PendingProduction,
			FetchedAt:         snap.FetchedAt,
		}
	}

	for _, p := range dashboard.Platforms() {
		h := s.SyncStatus.Get(p)
		out.Platforms = append(out.Platforms, PlatformOutput{
			Platform: string(p),
			Name:     p.DisplayName(),
			Status:   string(h.Status),
			LastSync: h.LastSyncAt,
		})
	}

	for _, e := range []*dashboard.FeedError{s.MetricsError, s.SyncError} {
		if e != nil {
			out.Errors = append(out.Errors, FeedErrorJSON{
				Feed:    string(e.Feed),
				Kind:    string(e.Kind),
				Message: e.Message,
			})
		}
	}

	return out
}

// renderStatusText renders the status for a terminal.
func renderStatusText(out StatusOutput, currency string, now time.Time) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorInfo)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)

	var b strings.Builder
	b.WriteString(titleStyle.Render("opsdash") + " " + mutedStyle.Render(out.BaseURL) + "\n\n")

	columns := []ui.TableColumn{
		{Title: "Metric", Width: 20},
		{Title: "Value", Width: 16},
	}
	values := []string{"—", "—", "—", "—"}
	if m := out.Metrics; m != nil {
		values = []string{
			tui.FormatCount(m.TotalOrders),
			tui.FormatMoney(currency, m.TotalRevenue),
			tui.FormatCount(m.LowStockItems),
			tui.FormatCount(m.PendingProduction),
		}
	}
	b.WriteString(ui.RenderSimpleTable(columns, [][]string{
		{"Total Orders", values[0]},
		{"Revenue (30d)", values[1]},
		{"Low Stock Items", values[2]},
		{"Pending Production", values[3]},
	}))
	b.WriteString("\n\n")

	rows := make([]ui.IntegrationRow, 0, len(out.Platforms))
	for _, p := range out.Platforms {
		rows = append(rows, ui.IntegrationRow{
			Platform: p.Name,
			Status:   p.Status,
			LastSync: tui.FormatLastSync(p.LastSync, now),
		})
	}
	b.WriteString(ui.RenderIntegrationTable(rows, out.SyncStale))

	if len(out.Errors) > 0 {
		b.WriteString("\n")
		for _, e := range out.Errors {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s %s %s error: %s", ui.SymbolFail, e.Feed, e.Kind, e.Message)))
			b.WriteString("\n")
		}
	}

	if out.Loading {
		b.WriteString("\n" + mutedStyle.Render("Still waiting on the backend; figures above may be incomplete.") + "\n")
	}

	return b.String()
}
