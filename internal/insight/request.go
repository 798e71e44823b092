package insight

import (
	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
)

type request struct {
	Date                 string              `json:"date"`
	PlannedMinutes       int                 `json:"plannedMinutes"`
	ActualMinutes        int                 `json:"actualMinutes"`
	OverlapMinutes       int                 `json:"overlapMinutes"`
	QuantitativeAccuracy float64             `json:"quantitativeAccuracy"`
	TemporalAccuracy     float64             `json:"temporalAccuracy"`
	PlanCalendar         []string            `json:"planCalendar"`
	ActualCalendar       []string            `json:"actualCalendar"`
	Tasks                map[int64]taskEntry `json:"tasks"`
}

type taskEntry struct {
	PlannedMinutes int `json:"plannedMinutes"`
	ActualMinutes  int `json:"actualMinutes"`
	OverlapMinutes int `json:"overlapMinutes"`
}

func newRequest(rep *schedule.Report) request {
	req := request{
		Date:                 interval.DateKey(rep.Date),
		PlannedMinutes:       rep.Daily.PlannedMinutes,
		ActualMinutes:        rep.Daily.ActualMinutes,
		OverlapMinutes:       rep.Daily.OverlapMinutes,
		QuantitativeAccuracy: rep.Daily.QuantitativeAccuracy,
		TemporalAccuracy:     rep.Daily.TemporalAccuracy,
		PlanCalendar:         calendar(rep.Plan),
		ActualCalendar:       calendar(rep.Actual),
		Tasks:                make(map[int64]taskEntry, len(rep.Tasks)),
	}
	for id, ts := range rep.Tasks {
		req.Tasks[id] = taskEntry{
			PlannedMinutes: ts.PlannedMinutes,
			ActualMinutes:  ts.ActualMinutes,
			OverlapMinutes: ts.OverlapMinutes,
		}
	}
	return req
}

// calendar renders intervals as "HH:MM-HH:MM: label" lines.
func calendar(ivs []interval.Interval) []string {
	lines := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		lines = append(lines, iv.Line())
	}
	return lines
}
