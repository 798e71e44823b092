package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayplan/internal/insight"
	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
	"github.com/sadopc/dayplan/internal/stats"
)

const historyDays = 7

type statsModel struct {
	reconciler *schedule.Reconciler
	planner    *schedule.Planner
	insights   *insight.Client
	width      int
	height     int

	date      time.Time
	report    *schedule.Report
	history   []stats.Daily
	taskNames map[int64]string

	insight        string
	insightPending bool

	chart barchart.Model
}

func newStatsModel(d Deps) statsModel {
	return statsModel{
		reconciler: d.Reconciler,
		planner:    d.Planner,
		insights:   d.Insights,
		date:       interval.Day(time.Now()),
		chart:      barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type statsDataMsg struct {
	date      time.Time
	report    *schedule.Report
	history   []stats.Daily
	taskNames map[int64]string
}

func (m statsModel) refresh() tea.Cmd {
	date := m.date
	return func() tea.Msg {
		ctx := context.Background()
		rep, err := m.reconciler.Reconcile(ctx, date)
		if err != nil {
			return errStatus(err)
		}
		hist, err := m.reconciler.History(ctx, date.AddDate(0, 0, 1-historyDays), date.AddDate(0, 0, 1))
		if err != nil {
			return errStatus(err)
		}
		tasks, err := m.planner.AllTasks()
		if err != nil {
			return errStatus(err)
		}
		names := make(map[int64]string, len(tasks))
		for _, t := range tasks {
			names[t.ID] = t.Title
		}
		return statsDataMsg{date: date, report: rep, history: hist, taskNames: names}
	}
}

func (m statsModel) requestInsight() tea.Cmd {
	rep := m.report
	return func() tea.Msg {
		return insightMsg{date: rep.Date, result: m.insights.Generate(context.Background(), rep)}
	}
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		if !msg.date.Equal(m.date) {
			return m, nil
		}
		m.report = msg.report
		m.history = msg.history
		m.taskNames = msg.taskNames
		m.buildChart()
		return m, nil

	case insightMsg:
		if !msg.date.Equal(m.date) {
			return m, nil
		}
		m.insightPending = false
		m.insight = msg.result.Text
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.date = m.date.AddDate(0, 0, -1)
			m.insight = ""
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.date = m.date.AddDate(0, 0, 1)
			m.insight = ""
			return m, m.refresh()
		case key.Matches(msg, keys.Today):
			m.date = interval.Day(time.Now())
			m.insight = ""
			return m, m.refresh()
		case key.Matches(msg, keys.Insight):
			if m.report == nil || m.insightPending {
				return m, nil
			}
			m.insightPending = true
			return m, m.requestInsight()
		}
	}
	return m, nil
}

// taskIDs returns the report's task IDs in ascending order.
func (m statsModel) taskIDs() []int64 {
	if m.report == nil {
		return nil
	}
	ids := make([]int64, 0, len(m.report.Tasks))
	for id := range m.report.Tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m statsModel) taskName(id int64) string {
	if name, ok := m.taskNames[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

// buildChart draws a planned and an actual bar per task, in hours.
func (m *statsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 36 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, id := range m.taskIDs() {
		ts := m.report.Tasks[id]
		label := truncate(m.taskName(id), 6)
		bars = append(bars,
			barchart.BarData{
				Label: label + " P",
				Values: []barchart.BarValue{{
					Name:  "planned",
					Value: float64(ts.PlannedMinutes) / 60,
					Style: planStyle,
				}},
			},
			barchart.BarData{
				Label: label + " A",
				Values: []barchart.BarValue{{
					Name:  "actual",
					Value: float64(ts.ActualMinutes) / 60,
					Style: actualStyle,
				}},
			},
		)
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", mutedStyle.Render(dayLabel(m.date, time.Now())),
	)

	if m.report == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")))
	}

	legend := "  " + planStyle.Render("● planned") + "  " + actualStyle.Render("● actual")
	nav := mutedStyle.Render("  ←/→: day  t: today  i: insights")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			m.renderSummary(), "",
			m.chart.View(), legend, "",
			m.renderTaskTable(w), "",
			m.renderHistory(), "",
			m.renderInsight(w), "",
			nav,
		),
	)
}

func (m statsModel) renderSummary() string {
	d := m.report.Daily
	rows := []string{
		fmt.Sprintf("  planned %s  actual %s  overlap %s",
			planStyle.Render(formatMinutes(d.PlannedMinutes)), actualStyle.Render(formatMinutes(d.ActualMinutes)),
			overlapStyle.Render(formatMinutes(d.OverlapMinutes))),
		fmt.Sprintf("  quantity %s  timing %s",
			highlightStyle.Render(formatPercent(d.QuantitativeAccuracy)),
			highlightStyle.Render(formatPercent(d.TemporalAccuracy))),
	}
	if d.Anomalous() {
		rows = append(rows, errorStyle.Render("  Overlapping intervals detected, timing accuracy is above 100%"))
	}
	return strings.Join(rows, "\n")
}

func (m statsModel) renderTaskTable(w int) string {
	ids := m.taskIDs()
	if len(ids) == 0 {
		return mutedStyle.Render("  No linked intervals for this day")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %8s %8s %8s %9s %7s", "Task", "Planned", "Actual", "Overlap", "Quantity", "Timing")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 68))))
	for _, id := range ids {
		ts := m.report.Tasks[id]
		rows = append(rows, fmt.Sprintf("  %-22s %8s %8s %8s %9s %7s",
			truncate(m.taskName(id), 22),
			formatHours(ts.PlannedMinutes),
			formatHours(ts.ActualMinutes),
			formatHours(ts.OverlapMinutes),
			formatPercent(ts.QuantitativeAccuracy()),
			formatPercent(ts.TemporalAccuracy()),
		))
	}
	return strings.Join(rows, "\n")
}

func (m statsModel) renderHistory() string {
	if len(m.history) == 0 {
		return ""
	}
	var cells []string
	for _, d := range m.history {
		cell := fmt.Sprintf("%s %s", d.Date.Format("Mon"), formatPercent(d.TemporalAccuracy))
		if d.PlannedMinutes == 0 {
			cell = fmt.Sprintf("%s  -", d.Date.Format("Mon"))
		}
		cells = append(cells, cell)
	}
	return mutedStyle.Render("  Timing, last 7 days: ") + strings.Join(cells, "  ")
}

func (m statsModel) renderInsight(w int) string {
	switch {
	case m.insightPending:
		return mutedStyle.Render("  Asking for insights...")
	case m.insight == "":
		return ""
	}
	return lipgloss.NewStyle().Width(max(w-6, 20)).PaddingLeft(2).Render(m.insight)
}
