package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/insight"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewPlan
	viewActual
	viewStats
	viewTasks
)

var viewNames = []string{"Today", "Plan", "Actual", "Stats", "Tasks"}

// --- Messages ---

type timerStartedMsg struct{}

// timerStoppedMsg carries the session recorded by the stop, if any.
type timerStoppedMsg struct {
	session *interval.Interval
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// intervalsChangedMsg tells every view showing intervals of kind to reload.
type intervalsChangedMsg struct {
	kind interval.Kind
}

type insightMsg struct {
	date   time.Time
	result insight.Result
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func formatHours(mins int) string {
	return fmt.Sprintf("%.1fh", float64(mins)/60)
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

func errStatus(err error) statusMsg {
	return statusMsg{text: "Error: " + err.Error(), isError: true}
}

// dayLabel renders a calendar day relative to today.
func dayLabel(day, today time.Time) string {
	switch interval.Day(day).Sub(interval.Day(today)) / (24 * time.Hour) {
	case 0:
		return "Today, " + day.Format("Mon Jan 02")
	case -1:
		return "Yesterday, " + day.Format("Mon Jan 02")
	case 1:
		return "Tomorrow, " + day.Format("Mon Jan 02")
	}
	return day.Format("Mon Jan 02, 2006")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
