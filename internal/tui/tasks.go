package tui

import (
	"errors"
	"fmt"
	"strconv"
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

var priorities = []store.Priority{store.PriorityLow, store.PriorityMedium, store.PriorityHigh, store.PriorityUrgent}

var priorityColors = map[store.Priority]lipgloss.Color{
	store.PriorityLow:    colorMuted,
	store.PriorityMedium: colorHighlight,
	store.PriorityHigh:   colorWarning,
	store.PriorityUrgent: colorAccent,
}

var tagColors = []string{"", "#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#9B59B6", "#3498DB"}

// folderRow is a folder placed in the flattened tree.
type folderRow struct {
	folder store.Folder
	depth  int
}

type tasksModel struct {
	planner *schedule.Planner
	width   int
	height  int

	folders      []folderRow
	tasks        []store.Task
	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected folder

	formActive bool
	form       *huh.Form
	formType   string // "folder", "subfolder", "edit_folder", "task", "edit_task"
	editingID  int64

	// Form field pointers (survive value copies)
	formName        *string
	formPriority    *store.Priority
	formColor       *string
	formEstimate    *string
	formDeadline    *string
	formDescription *string
}

func newTasksModel(p *schedule.Planner) tasksModel {
	name, color, est, deadline, desc := "", "", "", "", ""
	prio := store.PriorityMedium
	return tasksModel{
		planner:         p,
		formName:        &name,
		formPriority:    &prio,
		formColor:       &color,
		formEstimate:    &est,
		formDeadline:    &deadline,
		formDescription: &desc,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type foldersDataMsg struct {
	folders []folderRow
}

type tasksDataMsg struct {
	folderID int64
	tasks    []store.Task
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		all, err := m.planner.Folders()
		if err != nil {
			return errStatus(err)
		}
		return foldersDataMsg{folders: flattenFolders(all)}
	}
}

// flattenFolders orders folders depth first, children after their parent.
func flattenFolders(all []store.Folder) []folderRow {
	children := make(map[int64][]store.Folder)
	var roots []store.Folder
	for _, f := range all {
		if f.ParentID == nil {
			roots = append(roots, f)
		} else {
			children[*f.ParentID] = append(children[*f.ParentID], f)
		}
	}

	var rows []folderRow
	var walk func(fs []store.Folder, depth int)
	walk = func(fs []store.Folder, depth int) {
		for _, f := range fs {
			rows = append(rows, folderRow{folder: f, depth: depth})
			walk(children[f.ID], depth+1)
		}
	}
	walk(roots, 0)
	return rows
}

func (m tasksModel) selectedFolder() (store.Folder, bool) {
	if m.cursor >= len(m.folders) {
		return store.Folder{}, false
	}
	return m.folders[m.cursor].folder, true
}

func (m tasksModel) refreshTasks() tea.Cmd {
	f, ok := m.selectedFolder()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		tasks, err := m.planner.Tasks(f.ID)
		if err != nil {
			return errStatus(err)
		}
		return tasksDataMsg{folderID: f.ID, tasks: tasks}
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case foldersDataMsg:
		m.folders = msg.folders
		if m.cursor >= len(m.folders) {
			m.cursor = max(0, len(m.folders)-1)
		}
		return m, nil

	case tasksDataMsg:
		if f, ok := m.selectedFolder(); !ok || f.ID != msg.folderID {
			return m, nil
		}
		m.tasks = msg.tasks
		if m.taskCursor >= len(m.tasks) {
			m.taskCursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.viewingTasks {
			return m.updateTaskView(msg)
		}
		return m.updateFolderList(msg)
	}
	return m, nil
}

func (m tasksModel) updateFolderList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.folders)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(m.folders) > 0 {
			m.viewingTasks = true
			m.taskCursor = 0
			m.tasks = nil
			return m, m.refreshTasks()
		}
	case key.Matches(msg, keys.New):
		return m.showFolderForm("folder")
	case key.Matches(msg, keys.Start):
		if len(m.folders) > 0 {
			return m.showFolderForm("subfolder")
		}
	case key.Matches(msg, keys.Edit):
		if len(m.folders) > 0 {
			return m.showFolderForm("edit_folder")
		}
	case key.Matches(msg, keys.Delete):
		if f, ok := m.selectedFolder(); ok {
			return m, func() tea.Msg {
				if err := m.planner.DeleteFolder(f.ID); err != nil {
					if errors.Is(err, store.ErrFolderNotEmpty) {
						return statusMsg{text: fmt.Sprintf("%q still has subfolders or tasks", f.Name), isError: true}
					}
					return errStatus(err)
				}
				return m.refresh()()
			}
		}
	}
	return m, nil
}

func (m tasksModel) updateTaskView(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingTasks = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.taskCursor < len(m.tasks)-1 {
			m.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showTaskForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(m.tasks) > 0 {
			t := m.tasks[m.taskCursor]
			return m.showTaskForm(&t)
		}
	case key.Matches(msg, keys.Status):
		if len(m.tasks) > 0 {
			t := m.tasks[m.taskCursor]
			return m, func() tea.Msg {
				if err := m.planner.SetTaskStatus(t.ID, nextStatus[t.Status]); err != nil {
					return errStatus(err)
				}
				return m.refreshTasks()()
			}
		}
	case key.Matches(msg, keys.Today):
		if len(m.tasks) > 0 {
			t := m.tasks[m.taskCursor]
			return m, func() tea.Msg {
				if _, err := m.planner.AddToday(t.ID, time.Now()); err != nil {
					return errStatus(err)
				}
				return statusMsg{text: fmt.Sprintf("Added %q to today", t.Title)}
			}
		}
	case key.Matches(msg, keys.Delete):
		if len(m.tasks) > 0 {
			t := m.tasks[m.taskCursor]
			return m, func() tea.Msg {
				if err := m.planner.DeleteTask(t.ID); err != nil {
					return errStatus(err)
				}
				return m.refreshTasks()()
			}
		}
	}
	return m, nil
}

func (m tasksModel) showFolderForm(formType string) (tasksModel, tea.Cmd) {
	*m.formName = ""
	m.formType = formType
	title := "Folder Name"
	if formType == "edit_folder" {
		f, _ := m.selectedFolder()
		*m.formName = f.Name
		m.editingID = f.ID
	}
	if formType == "subfolder" {
		f, _ := m.selectedFolder()
		title = "Subfolder of " + f.Name
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(m.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showTaskForm(t *store.Task) (tasksModel, tea.Cmd) {
	*m.formName, *m.formColor, *m.formEstimate, *m.formDeadline, *m.formDescription = "", "", "", "", ""
	*m.formPriority = store.PriorityMedium
	m.formType = "task"
	if t != nil {
		m.formType = "edit_task"
		m.editingID = t.ID
		*m.formName = t.Title
		*m.formPriority = t.Priority
		*m.formColor = t.ColorTag
		*m.formDescription = t.Description
		if t.EstimateMinutes != nil {
			*m.formEstimate = strconv.Itoa(*t.EstimateMinutes)
		}
		if t.Deadline != nil {
			*m.formDeadline = interval.DateKey(*t.Deadline)
		}
	}

	prioOptions := make([]huh.Option[store.Priority], len(priorities))
	for i, p := range priorities {
		prioOptions[i] = huh.NewOption(string(p), p)
	}
	colorOptions := make([]huh.Option[string], len(tagColors))
	for i, c := range tagColors {
		label := "(none)"
		if c != "" {
			label = fmt.Sprintf("● %s", c)
		}
		colorOptions[i] = huh.NewOption(label, c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Title").Value(m.formName),
			huh.NewSelect[store.Priority]().Title("Priority").Options(prioOptions...).Value(m.formPriority),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(m.formColor),
			huh.NewInput().Title("Estimate (minutes)").Value(m.formEstimate).Validate(validEstimate),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Value(m.formDeadline).Validate(validDeadline),
			huh.NewText().Title("Description").Value(m.formDescription),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validEstimate(s string) error {
	_, err := parseEstimate(s)
	return err
}

func validDeadline(s string) error {
	_, err := parseDeadline(s)
	return err
}

func parseEstimate(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil, errors.New("estimate must be a positive number of minutes")
	}
	return &n, nil
}

func parseDeadline(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := interval.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		return m, m.submit()
	}

	return m, cmd
}

func (m tasksModel) submit() tea.Cmd {
	formType, editingID := m.formType, m.editingID
	name := *m.formName
	folder, _ := m.selectedFolder()

	switch formType {
	case "folder", "subfolder", "edit_folder":
		in := schedule.FolderInput{Name: name}
		if formType == "subfolder" {
			in.ParentID = &folder.ID
		}
		if formType == "edit_folder" {
			in.ParentID = folder.ParentID
		}
		return func() tea.Msg {
			var err error
			if formType == "edit_folder" {
				_, err = m.planner.UpdateFolder(editingID, in)
			} else {
				_, err = m.planner.CreateFolder(in)
			}
			if err != nil {
				return errStatus(err)
			}
			return m.refresh()()
		}
	}

	estimate, _ := parseEstimate(*m.formEstimate)
	deadline, _ := parseDeadline(*m.formDeadline)
	in := schedule.TaskInput{
		FolderID:        folder.ID,
		Title:           name,
		Priority:        *m.formPriority,
		ColorTag:        *m.formColor,
		Deadline:        deadline,
		EstimateMinutes: estimate,
		Description:     *m.formDescription,
	}
	return func() tea.Msg {
		var err error
		if formType == "edit_task" {
			_, err = m.planner.UpdateTask(editingID, in)
		} else {
			_, err = m.planner.CreateTask(in)
		}
		if err != nil {
			return errStatus(err)
		}
		return m.refreshTasks()()
	}
}

func (m tasksModel) view() string {
	if m.formActive && m.form != nil {
		titles := map[string]string{
			"folder":      "New Folder",
			"subfolder":   "New Subfolder",
			"edit_folder": "Rename Folder",
			"task":        "New Task",
			"edit_task":   "Edit Task",
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(titles[m.formType]), "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	if m.viewingTasks {
		return m.renderTaskView()
	}
	return m.renderFolderList()
}

func (m tasksModel) renderFolderList() string {
	w := m.width - 4
	title := titleStyle.Render("Folders")

	if len(m.folders) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No folders yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, row := range m.folders {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		indent := strings.Repeat("  ", row.depth)
		rows = append(rows, style.Render(fmt.Sprintf("%s%s▸ %s", cursor, indent, row.folder.Name)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  s: subfolder  e: rename  d: delete  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderTaskView() string {
	w := m.width - 4
	folder, _ := m.selectedFolder()
	title := titleStyle.Render(folder.Name + " / Tasks")

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, task := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := " "
		if task.ColorTag != "" {
			dot = lipgloss.NewStyle().Foreground(lipgloss.Color(task.ColorTag)).Render("●")
		}
		prio := lipgloss.NewStyle().Foreground(priorityColors[task.Priority]).Render(fmt.Sprintf("%-6s", task.Priority))
		row := fmt.Sprintf("%s%s %s %s ", cursor, dot, statusMarks[task.Status], prio) + style.Render(task.Title)
		if task.Deadline != nil {
			row += mutedStyle.Render("  due " + task.Deadline.Format("Jan 02"))
		}
		if task.EstimateMinutes != nil {
			row += mutedStyle.Render("  ~" + formatMinutes(*task.EstimateMinutes))
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: status  t: add to today  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
