package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/dayplan/internal/store"
)

func newTask(t *testing.T, s *store.Store, title string) *store.Task {
	t.Helper()
	p := NewPlanner(s, nil)
	f, err := p.CreateFolder(FolderInput{Name: "Work"})
	require.NoError(t, err)
	task, err := p.CreateTask(TaskInput{FolderID: f.ID, Title: title})
	require.NoError(t, err)
	return task
}

func TestPlannerFolderValidation(t *testing.T) {
	p := NewPlanner(newStore(t), nil)

	_, err := p.CreateFolder(FolderInput{Name: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "name is required", err.Error())

	missing := int64(42)
	_, err = p.CreateFolder(FolderInput{Name: "Child", ParentID: &missing})
	assert.ErrorIs(t, err, store.ErrNotFound)

	f, err := p.CreateFolder(FolderInput{Name: "  Inbox  "})
	require.NoError(t, err)
	assert.Equal(t, "Inbox", f.Name)

	_, err = p.UpdateFolder(f.ID, FolderInput{Name: "Inbox", ParentID: &f.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlannerFolderTree(t *testing.T) {
	p := NewPlanner(newStore(t), nil)
	root, err := p.CreateFolder(FolderInput{Name: "Root"})
	require.NoError(t, err)
	_, err = p.CreateFolder(FolderInput{Name: "Leaf", ParentID: &root.ID})
	require.NoError(t, err)

	roots, err := p.RootFolders()
	require.NoError(t, err)
	assert.Len(t, roots, 1)
	subs, err := p.Subfolders(root.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	assert.ErrorIs(t, p.DeleteFolder(root.ID), store.ErrFolderNotEmpty)
}

func TestPlannerTaskValidation(t *testing.T) {
	p := NewPlanner(newStore(t), nil)
	f, err := p.CreateFolder(FolderInput{Name: "Work"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   TaskInput
		want string
	}{
		{"blank title", TaskInput{FolderID: f.ID, Title: " "}, "title is required"},
		{"no folder", TaskInput{Title: "x"}, "folderid is required"},
		{"bad status", TaskInput{FolderID: f.ID, Title: "x", Status: "blocked"}, "status must be one of: todo doing done"},
		{"bad priority", TaskInput{FolderID: f.ID, Title: "x", Priority: "asap"}, "priority must be one of: low medium high urgent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.CreateTask(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.want, err.Error())
		})
	}

	zero := 0
	_, err = p.CreateTask(TaskInput{FolderID: f.ID, Title: "x", EstimateMinutes: &zero})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = p.CreateTask(TaskInput{FolderID: 999, Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlannerUpdateTaskKeepsStatus(t *testing.T) {
	s := newStore(t)
	p := NewPlanner(s, nil)
	task := newTask(t, s, "Draft")

	require.NoError(t, p.SetTaskStatus(task.ID, store.StatusDoing))
	updated, err := p.UpdateTask(task.ID, TaskInput{FolderID: task.FolderID, Title: "Final"})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, store.StatusDoing, updated.Status)
	assert.Equal(t, store.PriorityMedium, updated.Priority)

	assert.ErrorIs(t, p.SetTaskStatus(task.ID, "paused"), ErrValidation)
}

func TestPlannerToday(t *testing.T) {
	s := newStore(t)
	p := NewPlanner(s, nil)
	f, err := p.CreateFolder(FolderInput{Name: "Work"})
	require.NoError(t, err)

	var ids []int64
	for _, title := range []string{"A", "B", "C"} {
		task, err := p.CreateTask(TaskInput{FolderID: f.ID, Title: title})
		require.NoError(t, err)
		_, err = p.AddToday(task.ID, day)
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	titles := func() string {
		items, err := p.Today(day)
		require.NoError(t, err)
		var out string
		for _, it := range items {
			out += it.Task.Title
		}
		return out
	}
	assert.Equal(t, "ABC", titles())

	require.NoError(t, p.MoveToday(ids[2], day, -1))
	assert.Equal(t, "ACB", titles())

	require.NoError(t, p.MoveToday(ids[0], day, 5))
	assert.Equal(t, "CBA", titles())

	require.NoError(t, p.MoveToday(ids[2], day, -5))
	assert.Equal(t, "CBA", titles(), "move past the top is a no-op")

	require.NoError(t, p.RemoveToday(ids[1], day))
	assert.Equal(t, "CA", titles())

	assert.ErrorIs(t, p.MoveToday(ids[1], day, 1), store.ErrNotFound)

	_, err = p.AddToday(999, day)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
