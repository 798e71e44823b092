package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
)

// ToCSV writes one row per plan block and actual session of the report.
// taskNames resolves linked task IDs to titles.
func ToCSV(rep *schedule.Report, taskNames map[int64]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"ID", "Kind", "Date", "Start", "End", "Minutes", "Label", "Category", "Task"}); err != nil {
		return err
	}

	for _, iv := range intervals(rep) {
		row := []string{
			strconv.FormatInt(iv.ID, 10),
			iv.Kind.String(),
			interval.DateKey(iv.Date),
			iv.Start.String(),
			iv.End.String(),
			strconv.Itoa(iv.Minutes()),
			iv.Label,
			iv.Category,
			taskName(iv.LinkedTaskID, taskNames),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func intervals(rep *schedule.Report) []interval.Interval {
	out := make([]interval.Interval, 0, len(rep.Plan)+len(rep.Actual))
	out = append(out, rep.Plan...)
	return append(out, rep.Actual...)
}

func taskName(id *int64, names map[int64]string) string {
	if id == nil {
		return ""
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return "Unknown"
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}
