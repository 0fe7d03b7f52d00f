package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/logger"
	"github.com/rileyhilliard/opsdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command. Run without a subcommand it behaves like
// "opsdash watch".
var rootCmd = &cobra.Command{
	Use:   "opsdash",
	Short: "Live operational dashboard for the integration backend",
	Long: `opsdash shows a live overview of the integration backend: order and
revenue totals, stock alerts, pending production and the sync health of every
connected platform (Shopify, NuOrder, QuickBooks).

Metrics load once when the dashboard opens. Platform sync status is
re-polled every sync_interval (30s by default) for as long as it stays open.

Examples:
  opsdash                    # open the dashboard
  opsdash status             # print one snapshot and exit
  opsdash status --json      # machine-readable snapshot
  opsdash init               # write .opsdash.yaml
  opsdash fixture            # serve sample data on :8000
  opsdash doctor             # check config and backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			_ = os.Setenv(logger.DebugEnv, "1")
			logger.SetDefault(logger.NewEnvLogger(""))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchOpts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .opsdash.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	addWatchFlags(rootCmd)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if err != errReported {
			printError(err)
		}
		os.Exit(1)
	}
}

// printError writes err to stderr, adding a help hint for cobra's own
// argument errors.
func printError(err error) {
	if isUnknownCommandError(err) {
		errStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
		fmt.Fprintln(os.Stderr, errStyle.Render(ui.SymbolFail+" "+err.Error()))
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(os.Stderr, "\n  '%s' isn't an opsdash command.\n", name)
		}
		fmt.Fprintln(os.Stderr, "\n  Run 'opsdash --help' to see what's available.")
		return
	}

	if opsErr, ok := err.(*errors.Error); ok {
		fmt.Fprint(os.Stderr, opsErr.Error())
		return
	}
	fmt.Fprintln(os.Stderr, ui.SymbolFail+" "+err.Error())
}

// isUnknownCommandError reports whether err came from cobra rejecting a
// command or flag.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "opsdash"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
