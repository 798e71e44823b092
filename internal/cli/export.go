package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/dayplan/internal/export"
	"github.com/sadopc/dayplan/internal/interval"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:     "export [DATE]",
		Short:   "Export a day's calendars and statistics",
		GroupID: "reports",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unsupported format %q: want csv or json", format)
			}
			day, err := parseDay(firstArg(args), time.Now())
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("dayplan-%s.%s", interval.DateKey(day), format)
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
			names, err := e.taskNames()
			if err != nil {
				return err
			}

			if format == "csv" {
				err = export.ToCSV(rep, names, output)
			} else {
				err = export.ToJSON(rep, names, output)
			}
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Exported to "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default dayplan-DATE.FORMAT)")
	return cmd
}
