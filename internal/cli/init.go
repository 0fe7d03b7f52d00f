package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/config"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/ui"
)

// initCheckTimeout bounds the reachability check before saving.
const initCheckTimeout = 5 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	BaseURL        string // Pre-specified backend URL
	SyncInterval   string // Pre-specified poll interval, e.g. "30s"
	CurrencySymbol string // Pre-specified revenue prefix
	Path           string // Where to write; defaults to ./.opsdash.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
	SkipCheck      bool   // Don't contact the backend before saving
	Out            io.Writer
}

// Init creates a new .opsdash.yaml configuration file.
func Init(ctx context.Context, opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg, err := collectInitValues(opts)
	if err != nil {
		return err
	}

	if !opts.SkipCheck {
		if err := checkBackend(ctx, cfg.BaseURL, out); err != nil {
			if opts.NonInteractive {
				return err
			}

			fmt.Fprintf(out, "\n%s %s\n\n", ui.SymbolFail, strings.TrimSpace(err.Error()))
			var saveAnyway bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Save config anyway? (The backend can come up later)").
						Value(&saveAnyway),
				),
			)
			if formErr := form.Run(); formErr != nil || !saveAnyway {
				return err
			}
		}
	}

	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  opsdash          - Open the dashboard")
	fmt.Fprintln(out, "  opsdash status   - Print a one-off snapshot")

	return nil
}

// collectInitValues builds the config from flags (non-interactive) or a
// huh form, then validates it.
func collectInitValues(opts InitOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()

	baseURL := opts.BaseURL
	interval := opts.SyncInterval
	currency := opts.CurrencySymbol

	if !opts.NonInteractive {
		if baseURL == "" {
			baseURL = config.DefaultBaseURL
		}
		if interval == "" {
			interval = config.DefaultSyncInterval.String()
		}
		if currency == "" {
			currency = config.DefaultCurrencySymbol
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Backend URL").
					Description("Root of the integration backend, without the /api path").
					Placeholder(config.DefaultBaseURL).
					Value(&baseURL).
					Validate(func(s string) error {
						if err := config.ValidateBaseURL(strings.TrimSpace(s)); err != nil {
							return fmt.Errorf("enter an http(s) URL like %s", config.DefaultBaseURL)
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Sync status interval").
					Description("How often platform sync status is re-polled").
					Placeholder("30s").
					Value(&interval).
					Validate(func(s string) error {
						d, err := time.ParseDuration(strings.TrimSpace(s))
						if err != nil {
							return fmt.Errorf("use a duration like 30s or 1m")
						}
						if d < config.MinSyncInterval {
							return fmt.Errorf("must be at least %s", config.MinSyncInterval)
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Currency symbol").
					Description("Shown in front of the revenue figure").
					Placeholder(config.DefaultCurrencySymbol).
					Value(&currency),
			),
		)

		if err := form.Run(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
	}

	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
	if interval != "" {
		d, err := ParseDurationFlag("sync-interval", strings.TrimSpace(interval))
		if err != nil {
			return nil, err
		}
		cfg.SyncInterval = d
	}
	if strings.TrimSpace(currency) != "" {
		cfg.CurrencySymbol = strings.TrimSpace(currency)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkBackend fetches the dashboard feed once to confirm the URL points at
// a working backend.
func checkBackend(ctx context.Context, baseURL string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, initCheckTimeout)
	defer cancel()

	spinner := ui.NewSpinner("Checking " + baseURL)
	spinner.SetOutput(func(s string) { fmt.Fprint(out, s) })
	spinner.Start()

	client := api.NewClient(baseURL, api.WithUserAgent(api.DefaultUserAgent+"/"+GetVersion()))
	if _, err := client.Dashboard(ctx); err != nil {
		spinner.Fail()
		return errors.WrapWithCode(err, errors.CodeOf(err),
			fmt.Sprintf("Couldn't read the dashboard from %s", baseURL),
			"Check the URL, or pass --skip-check if the backend isn't up yet")
	}

	spinner.Success()
	return nil
}
