package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
	"github.com/sadopc/dayplan/internal/stats"
	"github.com/sadopc/dayplan/internal/store"
)

var nextStatus = map[store.TaskStatus]store.TaskStatus{
	store.StatusTodo:  store.StatusDoing,
	store.StatusDoing: store.StatusDone,
	store.StatusDone:  store.StatusTodo,
}

var statusMarks = map[store.TaskStatus]string{
	store.StatusTodo:  "○",
	store.StatusDoing: "◐",
	store.StatusDone:  "●",
}

type todayModel struct {
	reconciler *schedule.Reconciler
	planner    *schedule.Planner
	timer      timerModel
	width      int
	height     int

	daily  stats.Daily
	items  []store.TodayItem
	cursor int
}

func newTodayModel(d Deps) todayModel {
	return todayModel{
		reconciler: d.Reconciler,
		planner:    d.Planner,
		timer:      newTimerModel(d.Actuals),
	}
}

func (m todayModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *todayModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m todayModel) isRunning() bool { return m.timer.running() }
func (m todayModel) isPaused() bool  { return m.timer.paused() }
func (m todayModel) elapsed() time.Duration {
	return m.timer.currentElapsed()
}

type todayDataMsg struct {
	daily stats.Daily
	items []store.TodayItem
}

func (m todayModel) loadData() tea.Cmd {
	return func() tea.Msg {
		today := time.Now()
		rep, err := m.reconciler.Reconcile(context.Background(), today)
		if err != nil {
			return errStatus(err)
		}
		items, err := m.planner.Today(today)
		if err != nil {
			return errStatus(err)
		}
		return todayDataMsg{daily: rep.Daily, items: items}
	}
}

func (m todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		m.daily = msg.daily
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case tickMsg:
		session, err := m.timer.tick()
		return m, m.sessionCmd(session, err, "Idle, timer paused")

	case tea.KeyMsg:
		m.timer.recordActivity()

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.MoveUp):
			return m.move(-1)
		case key.Matches(msg, keys.MoveDown):
			return m.move(1)

		case key.Matches(msg, keys.Start):
			if m.timer.running() {
				return m, nil
			}
			if len(m.items) == 0 {
				return m, func() tea.Msg {
					return statusMsg{text: "Today's list is empty. Press 5 and t on a task to add it.", isError: true}
				}
			}
			it := m.items[m.cursor]
			taskID := it.TaskID
			if err := m.timer.begin(it.Task.Title, &taskID); err != nil {
				return m, func() tea.Msg { return errStatus(err) }
			}
			return m, func() tea.Msg { return timerStartedMsg{} }

		case key.Matches(msg, keys.Stop):
			session, err := m.timer.stop()
			if err != nil {
				return m, func() tea.Msg { return errStatus(err) }
			}
			return m, tea.Batch(
				m.loadData(),
				func() tea.Msg { return timerStoppedMsg{session: session} },
			)

		case key.Matches(msg, keys.Pause):
			session, err := m.timer.toggle()
			return m, m.sessionCmd(session, err, "")

		case key.Matches(msg, keys.Status):
			if len(m.items) == 0 {
				return m, nil
			}
			it := m.items[m.cursor]
			return m, func() tea.Msg {
				if err := m.planner.SetTaskStatus(it.TaskID, nextStatus[it.Task.Status]); err != nil {
					return errStatus(err)
				}
				return m.loadData()()
			}

		case key.Matches(msg, keys.Delete):
			if len(m.items) == 0 {
				return m, nil
			}
			it := m.items[m.cursor]
			return m, func() tea.Msg {
				if err := m.planner.RemoveToday(it.TaskID, time.Now()); err != nil {
					return errStatus(err)
				}
				return m.loadData()()
			}
		}
	}
	return m, nil
}

func (m todayModel) move(delta int) (todayModel, tea.Cmd) {
	if len(m.items) == 0 {
		return m, nil
	}
	taskID := m.items[m.cursor].TaskID
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
	return m, func() tea.Msg {
		if err := m.planner.MoveToday(taskID, time.Now(), delta); err != nil {
			return errStatus(err)
		}
		return m.loadData()()
	}
}

// sessionCmd reports a session recorded as a side effect of pausing.
func (m todayModel) sessionCmd(session *interval.Interval, err error, note string) tea.Cmd {
	if err != nil {
		return func() tea.Msg { return errStatus(err) }
	}
	if session == nil {
		if note != "" && m.timer.isIdle {
			return func() tea.Msg { return statusMsg{text: note} }
		}
		return nil
	}
	text := "Recorded session " + session.Range()
	return tea.Batch(m.loadData(), func() tea.Msg { return statusMsg{text: text} })
}

func (m todayModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}

	contentWidth := m.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTimerPanel(contentWidth),
		m.renderStatsPanel(contentWidth),
		m.renderListPanel(contentWidth),
	)
}

func (m todayModel) renderTimerPanel(w int) string {
	var timeDisplay string
	var indicator string

	if m.timer.running() {
		timeStr := formatDuration(m.timer.currentElapsed())

		if m.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if m.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RUNNING")
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			highlightStyle.Render(m.timer.label),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Select a task and press s to start"),
	)
	return panelStyle.Width(w).Render(content)
}

func (m todayModel) renderStatsPanel(w int) string {
	d := m.daily
	title := titleStyle.Render("Plan vs Actual")

	line := fmt.Sprintf("%s %s   %s %s   %s %s",
		planStyle.Render("planned"), formatMinutes(d.PlannedMinutes),
		actualStyle.Render("actual"), formatMinutes(d.ActualMinutes),
		overlapStyle.Render("overlap"), formatMinutes(d.OverlapMinutes),
	)
	acc := fmt.Sprintf("quantity %s   timing %s",
		highlightStyle.Render(formatPercent(d.QuantitativeAccuracy)),
		highlightStyle.Render(formatPercent(d.TemporalAccuracy)),
	)
	rows := []string{title, line, acc}
	if d.Anomalous() {
		rows = append(rows, errorStyle.Render("Overlapping intervals detected, timing accuracy is above 100%"))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m todayModel) renderListPanel(w int) string {
	title := titleStyle.Render("Today's Tasks")
	if len(m.items) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing on the list yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for i, it := range m.items {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := statusMarks[it.Task.Status]
		row := style.Render(fmt.Sprintf("%s%s %s", cursor, mark, it.Task.Title))
		if it.Task.EstimateMinutes != nil {
			row += mutedStyle.Render("  ~" + formatMinutes(*it.Task.EstimateMinutes))
		}
		rows = append(rows, row)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  s: start  c: status  K/J: reorder  d: remove"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
