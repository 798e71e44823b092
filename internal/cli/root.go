// Package cli is the dayplan command line. Without a subcommand it starts
// the terminal UI.
package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/dayplan/internal/config"
	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/tui"
)

var version = "dev"

// options holds the global flags shared by every command.
type options struct {
	configPath string
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "dayplan",
		Version: version,
		Short:   "Plan your day and compare it with what actually happened",
		Long: `dayplan keeps two calendars for each day: the plan blocks you intend to
work on and the sessions you actually worked. Overlapping entries within
a calendar are rejected, and the two calendars are reconciled into
accuracy statistics.

Run without a command to open the terminal UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "path to config file")

	cmd.AddGroup(
		&cobra.Group{ID: "calendars", Title: "Calendars:"},
		&cobra.Group{ID: "reports", Title: "Reports:"},
	)
	cmd.AddCommand(
		newIntervalCmd(opts, interval.KindPlan),
		newIntervalCmd(opts, interval.KindActual),
		newStatsCmd(opts),
		newInsightsCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

func runTUI(opts *options) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	p := tea.NewProgram(tui.NewApp(e.deps()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// Execute runs the command line and prints any error to stderr.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}
