package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/stats"
)

// SnapshotSource loads the stored intervals of one kind.
type SnapshotSource interface {
	FindByDate(date time.Time) ([]interval.Interval, error)
	FindRange(from, to time.Time) ([]interval.Interval, error)
}

// Report is the reconciliation of one day together with the snapshots it was
// computed from.
type Report struct {
	Date   time.Time
	Daily  stats.Daily
	Tasks  map[int64]stats.TaskStats
	Plan   []interval.Interval
	Actual []interval.Interval
}

type Reconciler struct {
	plans   SnapshotSource
	actuals SnapshotSource
	log     *zap.Logger
}

func NewReconciler(plans, actuals SnapshotSource, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{plans: plans, actuals: actuals, log: log}
}

// Reconcile compares the plan and actual snapshots of date.
func (r *Reconciler) Reconcile(ctx context.Context, date time.Time) (*Report, error) {
	day := interval.Day(date)

	var plan, actual []interval.Interval
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		plan, err = r.plans.FindByDate(day)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		actual, err = r.actuals.FindByDate(day)
		if err != nil {
			return fmt.Errorf("load actual: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", interval.DateKey(day), err)
	}

	rep := &Report{
		Date:   day,
		Daily:  stats.ComputeDaily(day, plan, actual),
		Tasks:  stats.ComputeTasks(plan, actual),
		Plan:   plan,
		Actual: actual,
	}
	if rep.Daily.Anomalous() {
		r.log.Warn("temporal accuracy above 1.0, intervals likely overlap within a kind",
			zap.String("date", interval.DateKey(day)),
			zap.Float64("temporalAccuracy", rep.Daily.TemporalAccuracy),
			zap.Int("overlapMinutes", rep.Daily.OverlapMinutes),
			zap.Int("plannedMinutes", rep.Daily.PlannedMinutes),
		)
	}
	return rep, nil
}

// History returns one daily figure per day in [from, to).
func (r *Reconciler) History(ctx context.Context, from, to time.Time) ([]stats.Daily, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, to = interval.Day(from), interval.Day(to)

	var plan, actual []interval.Interval
	var g errgroup.Group
	g.Go(func() error {
		var err error
		plan, err = r.plans.FindRange(from, to)
		return err
	})
	g.Go(func() error {
		var err error
		actual, err = r.actuals.FindRange(from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return stats.ComputeRange(from, to, plan, actual), nil
}
