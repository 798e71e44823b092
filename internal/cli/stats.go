package cli

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/dayplan/internal/interval"
)

func newStatsCmd(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:     "stats [DATE]",
		Short:   "Compare a day's plan with what actually happened",
		GroupID: "reports",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(firstArg(args), time.Now())
			if err != nil {
				return err
			}
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
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

			w := cmd.OutOrStdout()
			d := rep.Daily
			printSection(w, "Stats for "+interval.DateKey(day))
			printLabelValue(w, "Planned", formatMinutes(d.PlannedMinutes))
			printLabelValue(w, "Actual", formatMinutes(d.ActualMinutes))
			printLabelValue(w, "Overlap", formatMinutes(d.OverlapMinutes))
			printLabelValue(w, "Quantitative accuracy", formatPercent(d.QuantitativeAccuracy))
			printLabelValue(w, "Temporal accuracy", formatPercent(d.TemporalAccuracy))
			if d.Anomalous() {
				fmt.Fprintln(w)
				printWarning(w, "Temporal accuracy above 100%: a calendar holds overlapping entries")
			}

			if len(rep.Tasks) > 0 {
				ids := make([]int64, 0, len(rep.Tasks))
				for id := range rep.Tasks {
					ids = append(ids, id)
				}
				slices.Sort(ids)

				rows := make([][]string, 0, len(ids))
				for _, id := range ids {
					ts := rep.Tasks[id]
					name, ok := names[id]
					if !ok {
						name = "Unknown"
					}
					rows = append(rows, []string{
						strconv.FormatInt(id, 10), name,
						formatMinutes(ts.PlannedMinutes), formatMinutes(ts.ActualMinutes), formatMinutes(ts.OverlapMinutes),
						formatPercent(ts.QuantitativeAccuracy()), formatPercent(ts.TemporalAccuracy()),
					})
				}
				printSection(w, "By task")
				printTable(w, []string{"ID", "Task", "Planned", "Actual", "Overlap", "Quantity", "Timing"}, rows)
			}

			if days > 0 {
				hist, err := e.reconciler.History(cmd.Context(), day.AddDate(0, 0, 1-days), day.AddDate(0, 0, 1))
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(hist))
				for _, h := range hist {
					rows = append(rows, []string{
						interval.DateKey(h.Date), h.Date.Format("Mon"),
						formatMinutes(h.PlannedMinutes), formatMinutes(h.ActualMinutes),
						formatPercent(h.QuantitativeAccuracy), formatPercent(h.TemporalAccuracy),
					})
				}
				printSection(w, fmt.Sprintf("Last %d days", days))
				printTable(w, []string{"Date", "Day", "Planned", "Actual", "Quantity", "Timing"}, rows)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "also show the given number of days ending at DATE")
	return cmd
}
