package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/dayplan/internal/interval"
)

// nouns are the singular and plural names of each calendar.
var nouns = map[interval.Kind][2]string{
	interval.KindPlan:   {"plan block", "plan blocks"},
	interval.KindActual: {"session", "actual sessions"},
}

func newIntervalCmd(opts *options, kind interval.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(kind),
		Short:   "Manage " + nouns[kind][1],
		GroupID: "calendars",
	}
	cmd.AddCommand(
		newIntervalAddCmd(opts, kind),
		newIntervalListCmd(opts, kind),
		newIntervalRmCmd(opts, kind),
	)
	return cmd
}

func newIntervalAddCmd(opts *options, kind interval.Kind) *cobra.Command {
	var (
		date     string
		category string
		taskID   int64
	)

	cmd := &cobra.Command{
		Use:   "add START END LABEL...",
		Short: "Add a " + nouns[kind][0],
		Long: fmt.Sprintf(`Add a %s. START and END are HH:MM; END may be 24:00.
The %s is rejected when it overlaps another one on the same day.`, nouns[kind][0], nouns[kind][0]),
		Example: fmt.Sprintf("  dayplan %s add 09:00 10:30 Write report --task 3", kind),
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := interval.ParseTimeOfDay(args[0])
			if err != nil {
				return err
			}
			end, err := interval.ParseTimeOfDay(args[1])
			if err != nil {
				return err
			}
			day, err := parseDay(date, time.Now())
			if err != nil {
				return err
			}

			iv := interval.Interval{
				Date:     day,
				Start:    start,
				End:      end,
				Label:    strings.Join(args[2:], " "),
				Category: category,
			}
			if cmd.Flags().Changed("task") {
				iv.LinkedTaskID = &taskID
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			saved, err := e.service(kind).Create(iv)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added %s #%d on %s: %s",
				nouns[kind][0], saved.ID, interval.DateKey(saved.Date), saved.Line()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day of the entry (YYYY-MM-DD, today, yesterday, tomorrow)")
	cmd.Flags().StringVar(&category, "category", "", "free-form category")
	cmd.Flags().Int64Var(&taskID, "task", 0, "ID of the task this entry belongs to")
	return cmd
}

func newIntervalListCmd(opts *options, kind interval.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "list [DATE]",
		Aliases: []string{"ls"},
		Short:   "List " + nouns[kind][1] + " for a day",
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

			ivs, err := e.service(kind).ListForDate(day)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(ivs) == 0 {
				printInfo(w, fmt.Sprintf("No %s on %s", nouns[kind][1], interval.DateKey(day)))
				return nil
			}

			names, err := e.taskNames()
			if err != nil {
				return err
			}
			printSection(w, fmt.Sprintf("%s on %s", capitalize(nouns[kind][1]), interval.DateKey(day)))

			rows := make([][]string, 0, len(ivs))
			total := 0
			for _, iv := range ivs {
				total += iv.Minutes()
				task := ""
				if iv.LinkedTaskID != nil {
					task = names[*iv.LinkedTaskID]
				}
				rows = append(rows, []string{
					strconv.FormatInt(iv.ID, 10), iv.Range(), formatMinutes(iv.Minutes()), iv.Label, iv.Category, task,
				})
			}
			printTable(w, []string{"ID", "Time", "Length", "Label", "Category", "Task"}, rows)
			fmt.Fprintln(w)
			printLabelValue(w, "Total", formatMinutes(total))
			return nil
		},
	}
}

func newIntervalRmCmd(opts *options, kind interval.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a " + nouns[kind][0],
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.service(kind).Delete(id); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted %s #%d", nouns[kind][0], id))
			return nil
		},
	}
}
