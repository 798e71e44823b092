package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/dayplan/internal/export"
	"github.com/sadopc/dayplan/internal/insight"
	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
)

// Deps are the services the views talk to.
type Deps struct {
	Plans      *schedule.Service
	Actuals    *schedule.Service
	Reconciler *schedule.Reconciler
	Planner    *schedule.Planner
	Insights   *insight.Client
	Log        *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	log    *zap.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today  todayModel
	plan   intervalsModel
	actual intervalsModel
	stats  statsModel
	tasks  tasksModel

	help   help.Model
	status string
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	return App{
		deps:       d,
		log:        log,
		activeView: viewToday,
		today:      newTodayModel(d),
		plan:       newIntervalsModel(d.Plans, d.Planner),
		actual:     newIntervalsModel(d.Actuals, d.Planner),
		stats:      newStatsModel(d),
		tasks:      newTasksModel(d.Planner),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.today.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.plan.setSize(a.width, contentHeight)
		a.actual.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewToday)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewPlan)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewActual)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewStats)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Always route ticks to the today timer
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case timerStoppedMsg:
		a.status = "Timer stopped"
		if msg.session != nil {
			a.status = "Recorded session " + msg.session.Range()
			a.log.Info("session recorded",
				zap.String("date", interval.DateKey(msg.session.Date)),
				zap.String("range", msg.session.Range()))
			return a.broadcast(intervalsChangedMsg{kind: interval.KindActual})
		}
		return a, nil

	case timerStartedMsg:
		a.status = "Timer started"
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case intervalsChangedMsg:
		a.status = ""
		return a.broadcast(msg)

	// Data messages belong to one view whichever view is active.
	case todayDataMsg:
		a.today, _ = a.today.update(msg)
		return a, nil
	case intervalsDataMsg:
		if msg.kind == interval.KindPlan {
			a.plan, _ = a.plan.update(msg)
		} else {
			a.actual, _ = a.actual.update(msg)
		}
		return a, nil
	case statsDataMsg, insightMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd
	case foldersDataMsg, tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// broadcast hands an interval change to every view that shows intervals.
func (a App) broadcast(msg intervalsChangedMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.plan, cmd = a.plan.update(msg)
	cmds = append(cmds, cmd)
	a.actual, cmd = a.actual.update(msg)
	cmds = append(cmds, cmd)
	cmds = append(cmds, a.today.loadData(), a.stats.refresh())
	return a, tea.Batch(cmds...)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// quit stops a running timer so the open segment is recorded before exit.
func (a App) quit() tea.Cmd {
	if !a.today.isRunning() {
		return tea.Quit
	}
	session, err := a.today.timer.stop()
	if err != nil {
		a.log.Warn("timer not recorded on quit", zap.Error(err))
	} else if session != nil {
		a.log.Info("session recorded on quit", zap.String("range", session.Range()))
	}
	return tea.Quit
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewPlan:
		a.plan, cmd = a.plan.update(msg)
	case viewActual:
		a.actual, cmd = a.actual.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPlan:
		return a.plan.formActive
	case viewActual:
		return a.actual.formActive
	case viewTasks:
		return a.tasks.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.loadData()
	case viewPlan:
		return a.plan.refresh()
	case viewActual:
		return a.actual.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewTasks:
		return a.tasks.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewPlan:
		content = a.plan.view()
	case viewActual:
		content = a.actual.view()
	case viewStats:
		content = a.stats.view()
	case viewTasks:
		content = a.tasks.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("dayplan")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Timer indicator in footer
	timerInfo := ""
	if a.today.isRunning() {
		elapsed := a.today.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.today.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + dayLabel(a.exportDate(), time.Now()))
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportDate is the day shown by the active view.
func (a App) exportDate() time.Time {
	switch a.activeView {
	case viewPlan:
		return a.plan.date
	case viewActual:
		return a.actual.date
	case viewStats:
		return a.stats.date
	}
	return interval.Day(time.Now())
}

func (a App) doExport(format int) tea.Cmd {
	date := a.exportDate()
	return func() tea.Msg {
		rep, err := a.deps.Reconciler.Reconcile(context.Background(), date)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		names := make(map[int64]string)
		tasks, _ := a.deps.Planner.AllTasks()
		for _, t := range tasks {
			names[t.ID] = t.Title
		}

		home, _ := os.UserHomeDir()
		dateStr := interval.DateKey(date)

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("dayplan-%s.csv", dateStr))
			if err := export.ToCSV(rep, names, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("dayplan-%s.json", dateStr))
			if err := export.ToJSON(rep, names, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
