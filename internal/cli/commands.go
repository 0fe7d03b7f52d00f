package cli

import (
	"os"

	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	statusOpts     statusOptions
	statusWaitFlag string
	initOpts       InitOptions
	fixtureOpts    fixtureOptions
	doctorOpts     doctorOptions
)

// watchCmd opens the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live dashboard (default command)",
	Long: `Open the full-screen dashboard.

Metrics are fetched once when the dashboard opens (press r to fetch again).
Platform sync status is polled every sync_interval until you quit. When a
feed fails the last good data stays on screen and a warning appears in the
footer.

When stdout isn't a terminal, a single status snapshot is printed instead.

Keys:
  r        refresh
  ?        help
  q        quit

Examples:
  opsdash watch
  opsdash watch --base-url http://staging:8000
  opsdash watch --metrics-addr 127.0.0.1:9464`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchOpts)
	},
}

// statusCmd prints one snapshot and exits
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-off snapshot of the dashboard",
	Long: `Fetch both feeds once, print the result, and exit.

Waits until metrics and sync status have both answered (or --wait elapses).
Exits non-zero only when the backend didn't answer in time; feed errors are
reported in the output.

Examples:
  opsdash status
  opsdash status --json
  opsdash status --wait 30s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, err := ParseDurationFlag("wait", statusWaitFlag)
		if err != nil {
			return err
		}
		opts := statusOpts
		opts.Wait = wait
		return statusCommand(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

// initCmd creates a new .opsdash.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .opsdash.yaml configuration",
	Long: `Initialize a new opsdash configuration file.

Prompts for the backend URL, the sync status interval and the currency
symbol, checks the backend answers, then writes .opsdash.yaml in the current
directory.

Examples:
  opsdash init
  opsdash init --base-url https://integrations.example.com
  opsdash init --non-interactive --base-url http://localhost:8000 --skip-check
  opsdash init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		opts.Out = cmd.OutOrStdout()
		return Init(cmd.Context(), opts)
	},
}

// fixtureCmd serves sample backend data
var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Serve sample backend data for local development",
	Long: `Run a local stand-in for the integration backend.

Serves /api/analytics/dashboard and /api/sync/status from built-in sample
data or a YAML file. --fail makes a feed answer 503 so the dashboard's
degraded state can be tried out.

Examples:
  opsdash fixture
  opsdash fixture --addr 127.0.0.1:8001 --file fixture.yaml
  opsdash fixture --fail sync
  opsdash fixture --delay 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fixtureCommand(cmd.Context(), fixtureOpts)
	},
}

// doctorCmd diagnoses config, backend and terminal problems
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and backend problems",
	Long: `Run diagnostic checks and report what's wrong.

Checks that a config file is found and valid, that both backend feeds answer
with the expected shape, and that the terminal and log file are usable.
Exits non-zero when any check fails.

Examples:
  opsdash doctor
  opsdash doctor --base-url http://staging:8000
  opsdash doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), doctorOpts, cmd.OutOrStdout())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for opsdash.

Examples:
  # Bash
  opsdash completion bash > /etc/bash_completion.d/opsdash

  # Zsh
  opsdash completion zsh > "${fpath[1]}/_opsdash"

  # Fish
  opsdash completion fish > ~/.config/fish/completions/opsdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

// addWatchFlags registers the dashboard flags on cmd. Both the root command
// and watch take them.
func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&watchOpts.BaseURL, "base-url", "", "backend URL (overrides base_url)")
	cmd.Flags().StringVar(&watchOpts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
}

func init() {
	// watch command flags
	addWatchFlags(watchCmd)

	// status command flags
	statusCmd.Flags().StringVar(&statusOpts.BaseURL, "base-url", "", "backend URL (overrides base_url)")
	statusCmd.Flags().BoolVar(&statusOpts.JSON, "json", false, "output in JSON format")
	statusCmd.Flags().StringVar(&statusWaitFlag, "wait", defaultStatusWait.String(), "how long to wait for both feeds (e.g., 15s, 1m)")

	// init command flags
	initCmd.Flags().StringVar(&initOpts.BaseURL, "base-url", "", "backend URL")
	initCmd.Flags().StringVar(&initOpts.SyncInterval, "sync-interval", "", "sync status poll interval (e.g., 30s)")
	initCmd.Flags().StringVar(&initOpts.CurrencySymbol, "currency", "", "currency symbol for revenue")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "skip prompts, use flags and defaults")
	initCmd.Flags().BoolVar(&initOpts.SkipCheck, "skip-check", false, "don't contact the backend before saving")

	// fixture command flags
	fixtureCmd.Flags().StringVar(&fixtureOpts.Addr, "addr", "127.0.0.1:8000", "listen address")
	fixtureCmd.Flags().StringVar(&fixtureOpts.File, "file", "", "YAML fixture file (default: built-in sample data)")
	fixtureCmd.Flags().StringSliceVar(&fixtureOpts.Fail, "fail", nil, "feeds that answer 503: metrics, sync")
	fixtureCmd.Flags().StringVar(&fixtureOpts.Delay, "delay", "", "latency added to every response (e.g., 500ms)")

	// doctor command flags
	doctorCmd.Flags().StringVar(&doctorOpts.BaseURL, "base-url", "", "backend URL (overrides base_url)")
	doctorCmd.Flags().BoolVar(&doctorOpts.JSON, "json", false, "output in JSON format")

	// Register all commands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fixtureCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}
