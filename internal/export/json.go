package export

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
)

type jsonExport struct {
	ExportedAt string         `json:"exported_at"`
	Date       string         `json:"date"`
	Statistics jsonStatistics `json:"statistics"`
	Tasks      []jsonTask     `json:"tasks"`
	Count      int            `json:"count"`
	Intervals  []jsonInterval `json:"intervals"`
}

type jsonStatistics struct {
	PlannedMinutes       int     `json:"planned_minutes"`
	ActualMinutes        int     `json:"actual_minutes"`
	OverlapMinutes       int     `json:"overlap_minutes"`
	QuantitativeAccuracy float64 `json:"quantitative_accuracy"`
	TemporalAccuracy     float64 `json:"temporal_accuracy"`
	Anomalous            bool    `json:"anomalous,omitempty"`
}

type jsonTask struct {
	TaskID               int64   `json:"task_id"`
	Task                 string  `json:"task"`
	PlannedMinutes       int     `json:"planned_minutes"`
	ActualMinutes        int     `json:"actual_minutes"`
	OverlapMinutes       int     `json:"overlap_minutes"`
	QuantitativeAccuracy float64 `json:"quantitative_accuracy"`
	TemporalAccuracy     float64 `json:"temporal_accuracy"`
}

type jsonInterval struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Minutes  int    `json:"minutes"`
	Duration string `json:"duration"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	TaskID   *int64 `json:"task_id,omitempty"`
	Task     string `json:"task,omitempty"`
}

// ToJSON writes the report's statistics, per-task figures and intervals.
func ToJSON(rep *schedule.Report, taskNames map[int64]string, path string) error {
	d := rep.Daily
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Date:       interval.DateKey(rep.Date),
		Statistics: jsonStatistics{
			PlannedMinutes:       d.PlannedMinutes,
			ActualMinutes:        d.ActualMinutes,
			OverlapMinutes:       d.OverlapMinutes,
			QuantitativeAccuracy: d.QuantitativeAccuracy,
			TemporalAccuracy:     d.TemporalAccuracy,
			Anomalous:            d.Anomalous(),
		},
		Tasks:     []jsonTask{},
		Intervals: []jsonInterval{},
	}

	ids := make([]int64, 0, len(rep.Tasks))
	for id := range rep.Tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		ts := rep.Tasks[id]
		export.Tasks = append(export.Tasks, jsonTask{
			TaskID:               id,
			Task:                 taskName(&id, taskNames),
			PlannedMinutes:       ts.PlannedMinutes,
			ActualMinutes:        ts.ActualMinutes,
			OverlapMinutes:       ts.OverlapMinutes,
			QuantitativeAccuracy: ts.QuantitativeAccuracy(),
			TemporalAccuracy:     ts.TemporalAccuracy(),
		})
	}

	for _, iv := range intervals(rep) {
		export.Intervals = append(export.Intervals, jsonInterval{
			ID:       iv.ID,
			Kind:     iv.Kind.String(),
			Start:    iv.Start.String(),
			End:      iv.End.String(),
			Minutes:  iv.Minutes(),
			Duration: formatMinutes(iv.Minutes()),
			Label:    iv.Label,
			Category: iv.Category,
			TaskID:   iv.LinkedTaskID,
			Task:     taskName(iv.LinkedTaskID, taskNames),
		})
	}
	export.Count = len(export.Intervals)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
