package schedule

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/store"
)

// FolderInput is the editable part of a folder.
type FolderInput struct {
	Name     string `validate:"required,max=100"`
	ParentID *int64
}

// TaskInput is the editable part of a task. Empty status and priority fall
// back to todo and medium.
type TaskInput struct {
	FolderID        int64            `validate:"required"`
	Title           string           `validate:"required,max=200"`
	Status          store.TaskStatus `validate:"omitempty,oneof=todo doing done"`
	Priority        store.Priority   `validate:"omitempty,oneof=low medium high urgent"`
	ColorTag        string           `validate:"max=32"`
	Deadline        *time.Time
	EstimateMinutes *int `validate:"omitempty,gt=0"`
	Description     string
}

// Planner manages folders, tasks and the per-day task list.
type Planner struct {
	store *store.Store
	log   *zap.Logger
}

func NewPlanner(s *store.Store, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{store: s, log: log}
}

// ---------- folders ----------

func (p *Planner) CreateFolder(in FolderInput) (*store.Folder, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if _, err := p.store.GetFolder(*in.ParentID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}
	f, err := p.store.CreateFolder(in.Name, in.ParentID)
	if err != nil {
		return nil, err
	}
	p.log.Debug("folder created", zap.Int64("id", f.ID), zap.String("name", f.Name))
	return f, nil
}

func (p *Planner) UpdateFolder(id int64, in FolderInput) (*store.Folder, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.ParentID != nil && *in.ParentID == id {
		return nil, &ValidationError{Problems: []string{"folder cannot be its own parent"}}
	}
	if err := p.store.UpdateFolder(id, in.Name, in.ParentID); err != nil {
		return nil, err
	}
	return p.store.GetFolder(id)
}

func (p *Planner) DeleteFolder(id int64) error {
	return p.store.DeleteFolder(id)
}

func (p *Planner) Folders() ([]store.Folder, error) {
	return p.store.ListFolders()
}

func (p *Planner) RootFolders() ([]store.Folder, error) {
	return p.store.ListRootFolders()
}

func (p *Planner) Subfolders(parentID int64) ([]store.Folder, error) {
	return p.store.ListSubfolders(parentID)
}

// ---------- tasks ----------

func (p *Planner) CreateTask(in TaskInput) (*store.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := p.store.GetFolder(in.FolderID); err != nil {
		return nil, fmt.Errorf("task folder: %w", err)
	}
	t, err := p.store.CreateTask(in.task())
	if err != nil {
		return nil, err
	}
	p.log.Debug("task created", zap.Int64("id", t.ID), zap.String("title", t.Title))
	return t, nil
}

func (p *Planner) UpdateTask(id int64, in TaskInput) (*store.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	existing, err := p.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	t := in.task()
	t.ID = id
	if t.Status == "" {
		t.Status = existing.Status
	}
	if t.Priority == "" {
		t.Priority = existing.Priority
	}
	if err := p.store.UpdateTask(t); err != nil {
		return nil, err
	}
	return p.store.GetTask(id)
}

func (p *Planner) SetTaskStatus(id int64, status store.TaskStatus) error {
	if err := validate.Var(string(status), "required,oneof=todo doing done"); err != nil {
		return &ValidationError{Problems: []string{"status must be one of: todo doing done"}}
	}
	return p.store.UpdateTaskStatus(id, status)
}

func (p *Planner) Task(id int64) (*store.Task, error) {
	return p.store.GetTask(id)
}

func (p *Planner) Tasks(folderID int64) ([]store.Task, error) {
	return p.store.ListTasks(folderID)
}

func (p *Planner) AllTasks() ([]store.Task, error) {
	return p.store.ListAllTasks()
}

// DeleteTask removes a task. Intervals that referenced it stay, unlinked.
func (p *Planner) DeleteTask(id int64) error {
	if err := p.store.DeleteTask(id); err != nil {
		return err
	}
	p.log.Debug("task deleted", zap.Int64("id", id))
	return nil
}

// ---------- today list ----------

func (p *Planner) AddToday(taskID int64, date time.Time) (*store.TodayTask, error) {
	if _, err := p.store.GetTask(taskID); err != nil {
		return nil, err
	}
	return p.store.AddToToday(taskID, interval.Day(date))
}

func (p *Planner) RemoveToday(taskID int64, date time.Time) error {
	return p.store.RemoveFromToday(taskID, interval.Day(date))
}

func (p *Planner) Today(date time.Time) ([]store.TodayItem, error) {
	return p.store.ListToday(interval.Day(date))
}

func (p *Planner) ReorderToday(date time.Time, taskIDs []int64) error {
	return p.store.ReorderToday(interval.Day(date), taskIDs)
}

// MoveToday shifts a task by delta positions in the day's list. Moves past
// either end are clamped.
func (p *Planner) MoveToday(taskID int64, date time.Time, delta int) error {
	items, err := p.Today(date)
	if err != nil {
		return err
	}
	ids := make([]int64, len(items))
	from := -1
	for i, it := range items {
		ids[i] = it.TaskID
		if it.TaskID == taskID {
			from = i
		}
	}
	if from < 0 {
		return fmt.Errorf("task %d on %s: %w", taskID, interval.DateKey(date), store.ErrNotFound)
	}
	to := min(max(from+delta, 0), len(ids)-1)
	if to == from {
		return nil
	}
	id := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]int64{id}, ids[to:]...)...)
	return p.ReorderToday(date, ids)
}

func (in TaskInput) task() store.Task {
	return store.Task{
		FolderID:        in.FolderID,
		Title:           in.Title,
		Status:          in.Status,
		Priority:        in.Priority,
		ColorTag:        strings.TrimSpace(in.ColorTag),
		Deadline:        in.Deadline,
		EstimateMinutes: in.EstimateMinutes,
		Description:     in.Description,
	}
}
