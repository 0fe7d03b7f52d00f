package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/opsdash/internal/logger"
)

// TerminalCheck reports whether the dashboard can take over stdout.
type TerminalCheck struct {
	IsTerminal func() bool
}

func (c *TerminalCheck) Name() string     { return "terminal" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run(_ context.Context) CheckResult {
	if c.IsTerminal != nil && c.IsTerminal() {
		return CheckResult{
			Status:  StatusPass,
			Message: "stdout is a terminal",
		}
	}
	return CheckResult{
		Status:     StatusWarn,
		Message:    "stdout is not a terminal; 'opsdash' will print a snapshot instead of the dashboard",
		Suggestion: "Run opsdash from an interactive terminal, or use 'opsdash status' in scripts",
	}
}

// LogFileCheck verifies the dashboard can write its log file. It opens the
// file the same way the dashboard does, creating it if needed.
type LogFileCheck struct {
	Path string
}

func (c *LogFileCheck) Name() string     { return "log_file" }
func (c *LogFileCheck) Category() string { return CategoryTerminal }

func (c *LogFileCheck) Run(_ context.Context) CheckResult {
	if c.Path == "" {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No log file configured; dashboard logs are discarded",
			Suggestion: "Set log_file in .opsdash.yaml",
		}
	}

	_, closeFn, err := logger.NewFileLogger("doctor", c.Path)
	if err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Can't write log file %s: %v", c.Path, err),
			Suggestion: "Point log_file at a writable path; until then dashboard logs are discarded",
		}
	}
	_ = closeFn()

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Log file: %s", c.Path),
	}
}

// NewTerminalChecks returns the checks for the TERMINAL category.
func NewTerminalChecks(isTerminal func() bool, logPath string) []Check {
	return []Check{
		&TerminalCheck{IsTerminal: isTerminal},
		&LogFileCheck{Path: logPath},
	}
}
