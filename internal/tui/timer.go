package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
)

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel is a stopwatch whose running stretches become actual sessions.
// Each pause closes the current stretch; resuming opens a new one.
type timerModel struct {
	actuals *schedule.Service
	now     func() time.Time

	state    timerState
	start    time.Time // first start, for display
	segStart time.Time // start of the current running stretch
	elapsed  time.Duration
	pausedAt time.Time
	pauseGap time.Duration

	label  string
	taskID *int64

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(actuals *schedule.Service) timerModel {
	return timerModel{
		actuals:      actuals,
		now:          time.Now,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  5 * time.Minute,
	}
}

func (t *timerModel) begin(label string, taskID *int64) error {
	if t.state != timerStopped {
		return nil
	}
	if strings.TrimSpace(label) == "" {
		return errors.New("timer needs a label")
	}
	now := t.now()
	t.state = timerRunning
	t.start = now
	t.segStart = now
	t.elapsed = 0
	t.pauseGap = 0
	t.label = label
	t.taskID = taskID
	t.lastActivity = now
	t.isIdle = false
	return nil
}

// stop ends the run and records the open stretch.
func (t *timerModel) stop() (*interval.Interval, error) {
	switch t.state {
	case timerStopped:
		return nil, nil
	case timerPaused:
		t.state = timerStopped
		t.elapsed = 0
		return nil, nil
	}
	t.state = timerStopped
	t.elapsed = 0
	return t.record(t.segStart, t.now())
}

func (t *timerModel) pause() (*interval.Interval, error) {
	return t.pauseAt(t.now())
}

func (t *timerModel) pauseAt(at time.Time) (*interval.Interval, error) {
	if t.state != timerRunning {
		return nil, nil
	}
	t.state = timerPaused
	t.pausedAt = at
	return t.record(t.segStart, at)
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	now := t.now()
	t.pauseGap += now.Sub(t.pausedAt)
	t.segStart = now
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = now
}

func (t *timerModel) toggle() (*interval.Interval, error) {
	switch t.state {
	case timerRunning:
		return t.pause()
	case timerPaused:
		t.resume()
	}
	return nil, nil
}

// tick refreshes the elapsed time. An idle timer is paused as of its last
// activity, which may record a session.
func (t *timerModel) tick() (*interval.Interval, error) {
	if t.state != timerRunning {
		return nil, nil
	}
	now := t.now()
	t.elapsed = now.Sub(t.start) - t.pauseGap

	if now.Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
		t.isIdle = true
		return t.pauseAt(t.lastActivity)
	}
	return nil, nil
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

// record stores [from, to) as an actual session. Stretches shorter than a
// clock minute are dropped.
func (t *timerModel) record(from, to time.Time) (*interval.Interval, error) {
	iv := schedule.TimerSession(t.label, t.taskID, from, to)
	if iv.End <= iv.Start {
		return nil, nil
	}
	return t.actuals.Create(iv)
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	if t.state == timerPaused {
		return t.pausedAt.Sub(t.start) - t.pauseGap
	}
	return t.now().Sub(t.start) - t.pauseGap
}
