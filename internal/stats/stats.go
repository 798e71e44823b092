// Package stats reconciles a day's planned blocks against its actual sessions.
//
// Every function here is pure: the same snapshots always yield identical
// results, and nothing is cached between calls. Statistics are recomputed
// whenever any interval of the day changes.
package stats

import (
	"time"

	"github.com/sadopc/dayplan/internal/interval"
)

// Daily summarises how closely a day's actual sessions followed its plan.
type Daily struct {
	Date           time.Time
	PlannedMinutes int
	ActualMinutes  int
	OverlapMinutes int

	// QuantitativeAccuracy is min(actual, planned) / planned: volume done,
	// regardless of when.
	QuantitativeAccuracy float64
	// TemporalAccuracy is overlap / planned: how much of the planned windows
	// were spent working. Not clamped; see Anomalous.
	TemporalAccuracy float64
}

// Anomalous reports a temporal accuracy above 1.0, which can only happen when
// one of the collections contains overlapping intervals of its own kind.
func (d Daily) Anomalous() bool {
	return d.TemporalAccuracy > 1.0
}

// TaskStats holds the reconciliation of one task's linked intervals.
type TaskStats struct {
	PlannedMinutes int
	ActualMinutes  int
	OverlapMinutes int
}

func (t TaskStats) QuantitativeAccuracy() float64 {
	return quantitative(t.PlannedMinutes, t.ActualMinutes)
}

func (t TaskStats) TemporalAccuracy() float64 {
	return temporal(t.PlannedMinutes, t.OverlapMinutes)
}

// ComputeDaily reconciles the plan blocks and actual sessions filed under
// date. Intervals belonging to other days are ignored. Empty input yields
// all-zero statistics.
func ComputeDaily(date time.Time, plan, actual []interval.Interval) Daily {
	day := interval.Day(date)
	plan = onDay(day, plan)
	actual = onDay(day, actual)

	d := Daily{
		Date:           day,
		PlannedMinutes: totalMinutes(plan),
		ActualMinutes:  totalMinutes(actual),
		OverlapMinutes: overlapMinutes(plan, actual),
	}
	d.QuantitativeAccuracy = quantitative(d.PlannedMinutes, d.ActualMinutes)
	d.TemporalAccuracy = temporal(d.PlannedMinutes, d.OverlapMinutes)
	return d
}

// ComputeTasks reconciles intervals per linked task. Intervals without a
// linked task are left out, and a task's plan blocks are only ever compared
// with the same task's sessions.
func ComputeTasks(plan, actual []interval.Interval) map[int64]TaskStats {
	plans := byTask(plan)
	actuals := byTask(actual)

	out := make(map[int64]TaskStats, len(plans)+len(actuals))
	for id, blocks := range plans {
		out[id] = TaskStats{
			PlannedMinutes: totalMinutes(blocks),
			ActualMinutes:  totalMinutes(actuals[id]),
			OverlapMinutes: overlapMinutes(blocks, actuals[id]),
		}
	}
	for id, sessions := range actuals {
		if _, ok := plans[id]; ok {
			continue
		}
		out[id] = TaskStats{ActualMinutes: totalMinutes(sessions)}
	}
	return out
}

func totalMinutes(ivs []interval.Interval) int {
	total := 0
	for _, iv := range ivs {
		total += interval.Duration(iv)
	}
	return total
}

// overlapMinutes sums the overlap of every plan/actual pair on the same day.
// A session spanning several blocks contributes to each of them.
func overlapMinutes(plan, actual []interval.Interval) int {
	total := 0
	for _, p := range plan {
		for _, a := range actual {
			if !p.SameDay(a) {
				continue
			}
			total += interval.OverlapMinutes(p, a)
		}
	}
	return total
}

func quantitative(planned, actual int) float64 {
	if planned == 0 {
		return 0
	}
	return float64(min(actual, planned)) / float64(planned)
}

func temporal(planned, overlap int) float64 {
	if planned == 0 {
		return 0
	}
	return float64(overlap) / float64(planned)
}

func onDay(day time.Time, ivs []interval.Interval) []interval.Interval {
	key := interval.DateKey(day)
	var out []interval.Interval
	for _, iv := range ivs {
		if interval.DateKey(iv.Date) == key {
			out = append(out, iv)
		}
	}
	return out
}

func byTask(ivs []interval.Interval) map[int64][]interval.Interval {
	m := make(map[int64][]interval.Interval)
	for _, iv := range ivs {
		if iv.LinkedTaskID == nil {
			continue
		}
		m[*iv.LinkedTaskID] = append(m[*iv.LinkedTaskID], iv)
	}
	return m
}

// ComputeRange runs ComputeDaily for every day in [from, to).
func ComputeRange(from, to time.Time, plan, actual []interval.Interval) []Daily {
	var out []Daily
	for d := interval.Day(from); d.Before(interval.Day(to)); d = d.AddDate(0, 0, 1) {
		out = append(out, ComputeDaily(d, plan, actual))
	}
	return out
}
