package store

import "time"

type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusDone  TaskStatus = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Folder is a node of the task tree; ParentID is nil for root folders.
type Folder struct {
	ID       int64
	Name     string
	ParentID *int64
}

type Task struct {
	ID              int64
	FolderID        int64
	Title           string
	Status          TaskStatus
	Priority        Priority
	ColorTag        string
	Deadline        *time.Time
	EstimateMinutes *int
	Description     string
	CreatedAt       time.Time
}

// TodayTask places a task on a day's to-do list.
type TodayTask struct {
	ID           int64
	TaskID       int64
	Date         time.Time
	DisplayOrder int
}

// TodayItem is a today-list entry joined with its task.
type TodayItem struct {
	TodayTask
	Task Task
}
