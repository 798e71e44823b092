package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/dayplan/internal/config"
	"github.com/sadopc/dayplan/internal/insight"
	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/schedule"
	"github.com/sadopc/dayplan/internal/store"
	"github.com/sadopc/dayplan/internal/tui"
)

// env is everything a command needs, built from the config file.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store

	plans      *schedule.Service
	actuals    *schedule.Service
	reconciler *schedule.Reconciler
	planner    *schedule.Planner
	insights   *insight.Client
}

func openEnv(opts *options) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.General.DatabasePath)
	if err != nil {
		log.Error("open database", zap.String("path", cfg.General.DatabasePath), zap.Error(err))
		_ = log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &env{
		cfg:        cfg,
		log:        log,
		store:      s,
		plans:      schedule.NewService(interval.KindPlan, s.PlanBlocks(), log),
		actuals:    schedule.NewService(interval.KindActual, s.ActualSessions(), log),
		reconciler: schedule.NewReconciler(s.PlanBlocks(), s.ActualSessions(), log),
		planner:    schedule.NewPlanner(s, log),
		insights: insight.New(insight.Options{
			URL:     cfg.Insights.URL,
			Timeout: cfg.Insights.Timeout(),
			Logger:  log,
		}),
	}, nil
}

func (e *env) Close() {
	_ = e.store.Close()
	_ = e.log.Sync()
}

func (e *env) service(kind interval.Kind) *schedule.Service {
	if kind == interval.KindActual {
		return e.actuals
	}
	return e.plans
}

func (e *env) deps() tui.Deps {
	return tui.Deps{
		Plans:      e.plans,
		Actuals:    e.actuals,
		Reconciler: e.reconciler,
		Planner:    e.planner,
		Insights:   e.insights,
		Log:        e.log,
	}
}

// taskNames maps task IDs to titles for labelling report rows.
func (e *env) taskNames() (map[int64]string, error) {
	tasks, err := e.planner.AllTasks()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Title
	}
	return names, nil
}
