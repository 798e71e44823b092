// Package schedule applies the conflict guard and the reconciliation engine
// to the record store.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/dayplan/internal/interval"
)

// IntervalRepository is the storage a Service needs for one interval kind.
type IntervalRepository interface {
	FindByDate(date time.Time) ([]interval.Interval, error)
	Get(id int64) (*interval.Interval, error)
	Save(iv interval.Interval) (*interval.Interval, error)
	Update(iv interval.Interval) error
	Delete(id int64) error
}

// Service manages the intervals of a single kind. Every write is shape
// checked, then guarded against the other intervals of the same kind on the
// same day.
type Service struct {
	kind interval.Kind
	repo IntervalRepository
	log  *zap.Logger
}

func NewService(kind interval.Kind, repo IntervalRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{kind: kind, repo: repo, log: log.With(zap.String("kind", kind.String()))}
}

func (s *Service) Kind() interval.Kind { return s.kind }

// Create stores a new interval. Shape and conflict errors are returned as is.
func (s *Service) Create(iv interval.Interval) (*interval.Interval, error) {
	iv.ID = 0
	iv.Kind = s.kind
	iv.Date = interval.Day(iv.Date)

	if err := s.check(iv, nil); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(iv)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", s.kind, err)
	}
	s.log.Debug("interval created", zap.Int64("id", saved.ID), zap.String("range", saved.Range()))
	return saved, nil
}

// Update replaces a stored interval. The interval itself is excluded from
// the conflict check.
func (s *Service) Update(iv interval.Interval) (*interval.Interval, error) {
	if _, err := s.repo.Get(iv.ID); err != nil {
		return nil, err
	}
	iv.Kind = s.kind
	iv.Date = interval.Day(iv.Date)

	if err := s.check(iv, &iv.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(iv); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}
	s.log.Debug("interval updated", zap.Int64("id", iv.ID), zap.String("range", iv.Range()))
	return s.repo.Get(iv.ID)
}

func (s *Service) Get(id int64) (*interval.Interval, error) {
	return s.repo.Get(id)
}

// ListForDate returns the day's intervals ordered by start time.
func (s *Service) ListForDate(date time.Time) ([]interval.Interval, error) {
	return s.repo.FindByDate(interval.Day(date))
}

func (s *Service) Delete(id int64) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.log.Debug("interval deleted", zap.Int64("id", id))
	return nil
}

func (s *Service) check(iv interval.Interval, excludeID *int64) error {
	if err := interval.Validate(iv); err != nil {
		s.log.Info("interval rejected", zap.Error(err))
		return err
	}
	existing, err := s.repo.FindByDate(iv.Date)
	if err != nil {
		return fmt.Errorf("load %s for %s: %w", s.kind, interval.DateKey(iv.Date), err)
	}
	if err := interval.CheckNoConflict(iv, existing, excludeID); err != nil {
		var conflict *interval.ConflictError
		if errors.As(err, &conflict) {
			s.log.Info("interval conflict",
				zap.String("candidate", iv.String()),
				zap.Int64("existingID", conflict.With.ID),
			)
		}
		return err
	}
	return nil
}

// TimerSession turns a stopwatch run into an actual session on the day the
// run started. A run that crosses midnight is cut at 24:00.
func TimerSession(label string, taskID *int64, started, stopped time.Time) interval.Interval {
	day := interval.Day(started)
	end := interval.FromTime(stopped)
	if !interval.Day(stopped).Equal(day) {
		end = interval.EndOfDay
	}
	return interval.Interval{
		Kind:         interval.KindActual,
		Date:         day,
		Start:        interval.FromTime(started),
		End:          end,
		Label:        label,
		LinkedTaskID: taskID,
	}
}
