package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
	"github.com/sadopc/dayplan/internal/store"
)

var intervalCategories = []string{"", "work", "personal", "learning", "health", "other"}

// intervalsModel lists and edits the plan blocks or actual sessions of a day.
type intervalsModel struct {
	svc     *schedule.Service
	planner *schedule.Planner
	width   int
	height  int

	date      time.Time
	intervals []interval.Interval
	tasks     []store.Task
	cursor    int

	formActive bool
	form       *huh.Form
	editingID  int64

	// Form field pointers (survive value copies)
	formTitle    *string
	formStart    *string
	formEnd      *string
	formCategory *string
	formTask     *int64
}

func newIntervalsModel(svc *schedule.Service, planner *schedule.Planner) intervalsModel {
	title, start, end, cat := "", "", "", ""
	var task int64
	return intervalsModel{
		svc:          svc,
		planner:      planner,
		date:         interval.Day(time.Now()),
		formTitle:    &title,
		formStart:    &start,
		formEnd:      &end,
		formCategory: &cat,
		formTask:     &task,
	}
}

func (m *intervalsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m intervalsModel) kind() interval.Kind { return m.svc.Kind() }

type intervalsDataMsg struct {
	kind      interval.Kind
	date      time.Time
	intervals []interval.Interval
	tasks     []store.Task
}

func (m intervalsModel) refresh() tea.Cmd {
	kind, date := m.kind(), m.date
	return func() tea.Msg {
		ivs, err := m.svc.ListForDate(date)
		if err != nil {
			return errStatus(err)
		}
		tasks, err := m.planner.AllTasks()
		if err != nil {
			return errStatus(err)
		}
		return intervalsDataMsg{kind: kind, date: date, intervals: ivs, tasks: tasks}
	}
}

func (m intervalsModel) update(msg tea.Msg) (intervalsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case intervalsDataMsg:
		if msg.kind != m.kind() || !msg.date.Equal(m.date) {
			return m, nil
		}
		m.intervals = msg.intervals
		m.tasks = msg.tasks
		if m.cursor >= len(m.intervals) {
			m.cursor = max(0, len(m.intervals)-1)
		}
		return m, nil

	case intervalsChangedMsg:
		if msg.kind == m.kind() {
			return m, m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.intervals)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.date = m.date.AddDate(0, 0, -1)
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.date = m.date.AddDate(0, 0, 1)
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.Today):
			m.date = interval.Day(time.Now())
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.New):
			return m.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(m.intervals) > 0 {
				iv := m.intervals[m.cursor]
				return m.showForm(&iv)
			}
		case key.Matches(msg, keys.Delete):
			if len(m.intervals) > 0 {
				id, kind := m.intervals[m.cursor].ID, m.kind()
				return m, func() tea.Msg {
					if err := m.svc.Delete(id); err != nil {
						return errStatus(err)
					}
					return intervalsChangedMsg{kind: kind}
				}
			}
		}
	}
	return m, nil
}

func validClock(s string) error {
	_, err := interval.ParseTimeOfDay(s)
	return err
}

func (m intervalsModel) showForm(iv *interval.Interval) (intervalsModel, tea.Cmd) {
	*m.formTitle, *m.formStart, *m.formEnd, *m.formCategory, *m.formTask = "", "", "", "", 0
	m.editingID = 0
	if iv != nil {
		m.editingID = iv.ID
		*m.formTitle = iv.Label
		*m.formStart = iv.Start.String()
		*m.formEnd = iv.End.String()
		*m.formCategory = iv.Category
		if iv.LinkedTaskID != nil {
			*m.formTask = *iv.LinkedTaskID
		}
	}

	catOptions := make([]huh.Option[string], len(intervalCategories))
	for i, c := range intervalCategories {
		label := c
		if c == "" {
			label = "(none)"
		}
		catOptions[i] = huh.NewOption(label, c)
	}
	taskOptions := []huh.Option[int64]{huh.NewOption("(none)", int64(0))}
	for _, t := range m.tasks {
		taskOptions = append(taskOptions, huh.NewOption(t.Title, t.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewInput().Title("Start (HH:MM)").Value(m.formStart).Validate(validClock),
			huh.NewInput().Title("End (HH:MM)").Value(m.formEnd).Validate(validClock),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(m.formCategory),
			huh.NewSelect[int64]().Title("Task").Options(taskOptions...).Value(m.formTask),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m intervalsModel) updateForm(msg tea.Msg) (intervalsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.save(m.formInterval())
	}

	return m, cmd
}

// formInterval builds the candidate from the form. Unparseable times are
// left as zero and rejected by the shape check.
func (m intervalsModel) formInterval() interval.Interval {
	start, _ := interval.ParseTimeOfDay(*m.formStart)
	end, _ := interval.ParseTimeOfDay(*m.formEnd)
	iv := interval.Interval{
		ID:       m.editingID,
		Date:     m.date,
		Start:    start,
		End:      end,
		Label:    strings.TrimSpace(*m.formTitle),
		Category: *m.formCategory,
	}
	if *m.formTask != 0 {
		id := *m.formTask
		iv.LinkedTaskID = &id
	}
	return iv
}

func (m intervalsModel) save(iv interval.Interval) tea.Cmd {
	kind := m.kind()
	return func() tea.Msg {
		var err error
		if iv.ID == 0 {
			_, err = m.svc.Create(iv)
		} else {
			_, err = m.svc.Update(iv)
		}
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return intervalsChangedMsg{kind: kind}
	}
}

func (m intervalsModel) title() string {
	if m.kind() == interval.KindActual {
		return "Actual Sessions"
	}
	return "Plan Blocks"
}

func (m intervalsModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		verb := "New"
		if m.editingID != 0 {
			verb = "Edit"
		}
		title := titleStyle.Render(fmt.Sprintf("%s %s, %s", verb, strings.TrimSuffix(m.title(), "s"), dayLabel(m.date, time.Now())))
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(m.title()), "  ", mutedStyle.Render(dayLabel(m.date, time.Now())),
	)

	var rows []string
	rows = append(rows, header, "")

	if len(m.intervals) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing recorded for this day. Press n to add."))
	} else {
		kindStyle := planStyle
		if m.kind() == interval.KindActual {
			kindStyle = actualStyle
		}
		taskNames := make(map[int64]string, len(m.tasks))
		for _, t := range m.tasks {
			taskNames[t.ID] = t.Title
		}

		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-13s %-8s %-28s %-10s %s", "Time", "Length", "Title", "Category", "Task")))
		total := 0
		for i, iv := range m.intervals {
			cursor := "  "
			style := normalItemStyle
			if i == m.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			task := ""
			if iv.LinkedTaskID != nil {
				task = taskNames[*iv.LinkedTaskID]
			}
			row := cursor + kindStyle.Render(fmt.Sprintf("%-13s", iv.Range())) +
				style.Render(fmt.Sprintf(" %-8s %-28s %-10s %s",
					formatMinutes(iv.Minutes()), truncate(iv.Label, 28), iv.Category, truncate(task, 20)))
			rows = append(rows, row)
			total += iv.Minutes()
		}
		rows = append(rows, "", highlightStyle.Render("  Total "+formatMinutes(total)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  ←/→: day  t: today"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
