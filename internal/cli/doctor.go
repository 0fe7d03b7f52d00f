package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/opsdash/internal/config"
	"github.com/rileyhilliard/opsdash/internal/doctor"
	"github.com/rileyhilliard/opsdash/internal/logger"
	"github.com/rileyhilliard/opsdash/internal/ui"
)

// doctorOptions holds flags for the doctor command.
type doctorOptions struct {
	BaseURL string
	JSON    bool
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs every check and prints the report. It exits non-zero
// when any check failed; warnings alone don't.
func doctorCommand(ctx context.Context, opts doctorOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := collectChecks(Config(), opts.BaseURL)
	results := doctor.RunAllParallel(ctx, checks)

	if opts.JSON {
		if err := WriteJSONSuccess(w, buildDoctorOutput(results)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(w, renderDoctorText(results))
	}

	if doctor.HasFailures(results) {
		return errReported
	}
	return nil
}

// collectChecks gathers the checks for the effective config. Backend checks
// are skipped when there's no usable base URL; the config checks report why.
func collectChecks(cfgPath, baseURL string) []doctor.Check {
	checks := doctor.NewConfigChecks(cfgPath)

	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}

	if config.ValidateBaseURL(cfg.BaseURL) == nil {
		b := newBackend(cfg, logger.Noop())
		checks = append(checks, doctor.NewBackendChecks(cfg.BaseURL, b.client, doctor.DefaultBackendTimeout)...)
	}

	checks = append(checks, doctor.NewTerminalChecks(isTerminal, cfg.LogFile)...)
	return checks
}

// buildDoctorOutput groups results by category in report order.
func buildDoctorOutput(results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupByCategory(results)
	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(grouped)),
	}
	for _, cat := range doctor.CategoryOrder {
		if rs, ok := grouped[cat]; ok {
			output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: rs})
		}
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

// renderDoctorText renders the human-readable report.
func renderDoctorText(results []doctor.CheckResult) string {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	headerStyle := lipgloss.NewStyle().Bold(true)

	grouped := doctor.GroupByCategory(results)
	var rows []ui.DoctorCheckRow
	for _, cat := range doctor.CategoryOrder {
		for _, r := range grouped[cat] {
			rows = append(rows, ui.DoctorCheckRow{
				Status:     r.Status.String(),
				Category:   cat,
				Message:    r.Message,
				Suggestion: r.Suggestion,
			})
		}
	}

	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("opsdash Diagnostic Report") + "\n\n")
	b.WriteString(ui.RenderDoctorTable(rows))
	b.WriteString(strings.Repeat("━", 60) + "\n\n")

	summary := doctor.Summary(results)
	switch {
	case doctor.HasFailures(results):
		b.WriteString(errorStyle.Render(ui.SymbolFail) + " " + summary + "\n")
	case doctor.HasIssues(results):
		b.WriteString(warnStyle.Render(ui.SymbolWarning) + " " + summary + "\n")
	default:
		b.WriteString(successStyle.Render(ui.SymbolSuccess) + " " + summary + "\n")
	}
	return b.String()
}
