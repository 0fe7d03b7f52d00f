package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/opsdash/internal/config"
	"github.com/rileyhilliard/opsdash/internal/errors"
)

// ConfigFileCheck verifies that a config file can be found.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %s", summarize(err)),
			Suggestion: "Check the --config path or run 'opsdash init' to create a config",
		}
	}

	if path == "" {
		// Defaults plus OPSDASH_* variables still make a usable config.
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'opsdash init' to create a .opsdash.yaml config file",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// ConfigValidCheck verifies that the effective config loads and validates.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run(_ context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %s", summarize(err)),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid config: %s", summarize(err)),
			Suggestion: suggestion(err, "Fix the configuration errors in your .opsdash.yaml"),
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config valid (base_url %s, sync every %s)", cfg.BaseURL, cfg.SyncInterval),
	}
}

// NewConfigChecks returns the checks for the CONFIG category.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigValidCheck{ConfigPath: configPath},
	}
}

// summarize returns a one-line description of err, without the suggestion.
func summarize(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Summary()
	}
	return err.Error()
}

// suggestion returns the structured error's suggestion, or fallback.
func suggestion(err error, fallback string) string {
	if e, ok := err.(*errors.Error); ok && e.Suggestion != "" {
		return e.Suggestion
	}
	return fallback
}
