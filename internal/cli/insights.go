package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newInsightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights [DATE]",
		Short: "Ask the insight service about a day",
		Long: `Send the day's statistics and both calendars to the configured insight
service and print its answer. When the service is not configured or cannot
be reached a fallback message is printed instead.`,
		GroupID: "reports",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(firstArg(args), time.Now())
			if err != nil {
				return err
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			rep, err := e.reconciler.Reconcile(cmd.Context(), day)
			if err != nil {
				return err
			}

			res := e.insights.Generate(cmd.Context(), rep)
			w := cmd.OutOrStdout()
			if res.Fallback {
				printWarning(w, res.Text)
				return nil
			}
			printInfo(w, res.Text)
			return nil
		},
	}
}
