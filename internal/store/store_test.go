package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testDay = time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

func block(start, end, label string) interval.Interval {
	return interval.Interval{
		Kind:  interval.KindPlan,
		Date:  testDay,
		Start: interval.MustParseTimeOfDay(start),
		End:   interval.MustParseTimeOfDay(end),
		Label: label,
	}
}

// newTestTask creates a folder and a task inside it.
func newTestTask(t *testing.T, s *Store, title string) *Task {
	t.Helper()
	f, err := s.CreateFolder("Work", nil)
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	task, err := s.CreateTask(Task{FolderID: f.ID, Title: title})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/dayplan.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlanBlocks().Save(block("09:00", "10:00", "Standup")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.PlanBlocks().FindByDate(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 block after reopen, got %d", len(got))
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

// ============================================================
// Intervals
// ============================================================

func TestIntervalsByKind(t *testing.T) {
	s := newTestStore(t)
	if s.Intervals(interval.KindPlan) != s.PlanBlocks() {
		t.Fatal("plan kind should map to plan blocks")
	}
	if s.Intervals(interval.KindActual) != s.ActualSessions() {
		t.Fatal("actual kind should map to actual sessions")
	}
	if s.ActualSessions().Kind() != interval.KindActual {
		t.Fatalf("expected actual kind, got %s", s.ActualSessions().Kind())
	}
}

func TestSaveAndGetInterval(t *testing.T) {
	s := newTestStore(t)
	task := newTestTask(t, s, "Write report")

	iv := block("09:00", "10:30", "Report")
	iv.Category = "work"
	iv.LinkedTaskID = &task.ID

	saved, err := s.PlanBlocks().Save(iv)
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := s.PlanBlocks().Get(saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != interval.KindPlan {
		t.Fatalf("expected plan kind, got %s", got.Kind)
	}
	if !got.Date.Equal(testDay) {
		t.Fatalf("expected date %v, got %v", testDay, got.Date)
	}
	if got.Start != interval.Clock(9, 0) || got.End != interval.Clock(10, 30) {
		t.Fatalf("unexpected range %s", got.Range())
	}
	if got.Label != "Report" || got.Category != "work" {
		t.Fatalf("unexpected label/category %q/%q", got.Label, got.Category)
	}
	if got.LinkedTaskID == nil || *got.LinkedTaskID != task.ID {
		t.Fatalf("expected linked task %d, got %v", task.ID, got.LinkedTaskID)
	}
}

func TestSaveEndOfDay(t *testing.T) {
	s := newTestStore(t)
	saved, err := s.PlanBlocks().Save(block("23:00", "24:00", "Late"))
	if err != nil {
		t.Fatal(err)
	}
	if saved.End != interval.EndOfDay {
		t.Fatalf("expected 24:00, got %s", saved.End)
	}
}

func TestGetIntervalNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ActualSessions().Get(999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKindsAreSeparate(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.PlanBlocks().Save(block("09:00", "10:00", "Plan")); err != nil {
		t.Fatal(err)
	}
	actual, err := s.ActualSessions().FindByDate(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(actual) != 0 {
		t.Fatalf("expected no actual sessions, got %d", len(actual))
	}
}

func TestFindByDateOrderedByStart(t *testing.T) {
	s := newTestStore(t)
	tbl := s.PlanBlocks()
	for _, iv := range []interval.Interval{
		block("14:00", "15:00", "C"),
		block("08:00", "09:00", "A"),
		block("10:00", "11:00", "B"),
	} {
		if _, err := tbl.Save(iv); err != nil {
			t.Fatal(err)
		}
	}
	other := block("07:00", "08:00", "Tomorrow")
	other.Date = testDay.AddDate(0, 0, 1)
	if _, err := tbl.Save(other); err != nil {
		t.Fatal(err)
	}

	got, err := tbl.FindByDate(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(got))
	}
	for i, want := range []string{"A", "B", "C"} {
		if got[i].Label != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Label)
		}
	}
}

func TestFindRange(t *testing.T) {
	s := newTestStore(t)
	tbl := s.ActualSessions()
	for d := 0; d < 4; d++ {
		iv := block("09:00", "10:00", "Work")
		iv.Kind = interval.KindActual
		iv.Date = testDay.AddDate(0, 0, d)
		if _, err := tbl.Save(iv); err != nil {
			t.Fatal(err)
		}
	}

	got, err := tbl.FindRange(testDay.AddDate(0, 0, 1), testDay.AddDate(0, 0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions in range, got %d", len(got))
	}
	if !got[0].Date.Equal(testDay.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected first date %v", got[0].Date)
	}
}

func TestUpdateInterval(t *testing.T) {
	s := newTestStore(t)
	saved, err := s.PlanBlocks().Save(block("09:00", "10:00", "Draft"))
	if err != nil {
		t.Fatal(err)
	}

	saved.Label = "Final"
	saved.End = interval.Clock(11, 0)
	if err := s.PlanBlocks().Update(*saved); err != nil {
		t.Fatal(err)
	}

	got, _ := s.PlanBlocks().Get(saved.ID)
	if got.Label != "Final" || got.End != interval.Clock(11, 0) {
		t.Fatalf("update not persisted: %s", got)
	}
}

func TestUpdateIntervalNotFound(t *testing.T) {
	s := newTestStore(t)
	iv := block("09:00", "10:00", "Ghost")
	iv.ID = 42
	if err := s.PlanBlocks().Update(iv); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInterval(t *testing.T) {
	s := newTestStore(t)
	saved, _ := s.PlanBlocks().Save(block("09:00", "10:00", "Gone"))
	if err := s.PlanBlocks().Delete(saved.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlanBlocks().Get(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.PlanBlocks().Delete(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// ============================================================
// Folders
// ============================================================

func TestFolderTree(t *testing.T) {
	s := newTestStore(t)
	root, err := s.CreateFolder("Projects", nil)
	if err != nil {
		t.Fatal(err)
	}
	if root.ParentID != nil {
		t.Fatal("root folder should have no parent")
	}
	child, err := s.CreateFolder("Dayplan", &root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Fatalf("expected parent %d, got %v", root.ID, child.ParentID)
	}
	if _, err := s.CreateFolder("Archive", nil); err != nil {
		t.Fatal(err)
	}

	roots, err := s.ListRootFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 || roots[0].Name != "Archive" {
		t.Fatalf("expected [Archive Projects], got %v", roots)
	}

	subs, err := s.ListSubfolders(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Name != "Dayplan" {
		t.Fatalf("unexpected subfolders %v", subs)
	}

	all, _ := s.ListFolders()
	if len(all) != 3 {
		t.Fatalf("expected 3 folders, got %d", len(all))
	}
}

func TestUpdateFolder(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateFolder("A", nil)
	b, _ := s.CreateFolder("B", nil)

	if err := s.UpdateFolder(b.ID, "B2", &a.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetFolder(b.ID)
	if got.Name != "B2" || got.ParentID == nil || *got.ParentID != a.ID {
		t.Fatalf("update not persisted: %+v", got)
	}
	if err := s.UpdateFolder(999, "X", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteFolderRefusesNonEmpty(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateFolder("Parent", nil)
	child, _ := s.CreateFolder("Child", &parent.ID)

	if err := s.DeleteFolder(parent.ID); !errors.Is(err, ErrFolderNotEmpty) {
		t.Fatalf("expected ErrFolderNotEmpty for subfolder, got %v", err)
	}

	if _, err := s.CreateTask(Task{FolderID: child.ID, Title: "Leaf"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteFolder(child.ID); !errors.Is(err, ErrFolderNotEmpty) {
		t.Fatalf("expected ErrFolderNotEmpty for task, got %v", err)
	}
}

func TestDeleteEmptyFolder(t *testing.T) {
	s := newTestStore(t)
	f, _ := s.CreateFolder("Empty", nil)
	if err := s.DeleteFolder(f.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetFolder(f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateTaskDefaults(t *testing.T) {
	s := newTestStore(t)
	task := newTestTask(t, s, "Inbox zero")
	if task.Status != StatusTodo {
		t.Fatalf("expected todo, got %s", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("expected medium, got %s", task.Priority)
	}
	if task.Deadline != nil || task.EstimateMinutes != nil {
		t.Fatal("expected nil deadline and estimate")
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestTaskOptionalFields(t *testing.T) {
	s := newTestStore(t)
	f, _ := s.CreateFolder("Work", nil)
	deadline := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	estimate := 90
	task, err := s.CreateTask(Task{
		FolderID:        f.ID,
		Title:           "Ship",
		Priority:        PriorityUrgent,
		ColorTag:        "red",
		Deadline:        &deadline,
		EstimateMinutes: &estimate,
		Description:     "release 1.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.Deadline == nil || !task.Deadline.Equal(deadline) {
		t.Fatalf("expected deadline %v, got %v", deadline, task.Deadline)
	}
	if task.EstimateMinutes == nil || *task.EstimateMinutes != 90 {
		t.Fatalf("expected estimate 90, got %v", task.EstimateMinutes)
	}
	if task.ColorTag != "red" || task.Description != "release 1.0" {
		t.Fatalf("unexpected fields %+v", task)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	task := newTestTask(t, s, "Old")
	task.Title = "New"
	task.Priority = PriorityHigh
	if err := s.UpdateTask(*task); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateTaskStatus(task.ID, StatusDone); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Title != "New" || got.Priority != PriorityHigh || got.Status != StatusDone {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestTaskInvalidStatusRejected(t *testing.T) {
	s := newTestStore(t)
	task := newTestTask(t, s, "Check")
	if err := s.UpdateTaskStatus(task.ID, "blocked"); err == nil {
		t.Fatal("expected check constraint error")
	}
}

func TestListTasks(t *testing.T) {
	s := newTestStore(t)
	f, _ := s.CreateFolder("Work", nil)
	other, _ := s.CreateFolder("Home", nil)
	s.CreateTask(Task{FolderID: f.ID, Title: "b"})
	s.CreateTask(Task{FolderID: f.ID, Title: "a"})
	s.CreateTask(Task{FolderID: other.ID, Title: "c"})

	tasks, err := s.ListTasks(f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].Title != "a" {
		t.Fatalf("unexpected tasks %v", tasks)
	}
	all, _ := s.ListAllTasks()
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
}

func TestDeleteTaskUnlinksIntervals(t *testing.T) {
	s := newTestStore(t)
	task := newTestTask(t, s, "Linked")
	iv := block("09:00", "10:00", "Linked work")
	iv.LinkedTaskID = &task.ID
	saved, _ := s.PlanBlocks().Save(iv)
	if _, err := s.AddToToday(task.ID, testDay); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.PlanBlocks().Get(saved.ID)
	if err != nil {
		t.Fatalf("interval should survive task delete: %v", err)
	}
	if got.LinkedTaskID != nil {
		t.Fatalf("expected link cleared, got %d", *got.LinkedTaskID)
	}
	items, _ := s.ListToday(testDay)
	if len(items) != 0 {
		t.Fatalf("expected today entry removed, got %d", len(items))
	}
	if err := s.DeleteTask(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Today list
// ============================================================

func TestAddToTodayAppends(t *testing.T) {
	s := newTestStore(t)
	f, _ := s.CreateFolder("Work", nil)
	a, _ := s.CreateTask(Task{FolderID: f.ID, Title: "A"})
	b, _ := s.CreateTask(Task{FolderID: f.ID, Title: "B"})

	ta, err := s.AddToToday(a.ID, testDay)
	if err != nil {
		t.Fatal(err)
	}
	tb, _ := s.AddToToday(b.ID, testDay)
	if ta.DisplayOrder != 1 || tb.DisplayOrder != 2 {
		t.Fatalf("expected orders 1,2 got %d,%d", ta.DisplayOrder, tb.DisplayOrder)
	}

	again, err := s.AddToToday(a.ID, testDay)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != ta.ID || again.DisplayOrder != 1 {
		t.Fatalf("re-adding should be a no-op, got %+v", again)
	}

	items, _ := s.ListToday(testDay)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Task.Title != "A" || items[1].Task.Title != "B" {
		t.Fatalf("unexpected order %s, %s", items[0].Task.Title, items[1].Task.Title)
	}
}

func TestTodayIsPerDate(t *testing.T) {
	s := newTestStore(t)
	task := newTestTask(t, s, "Daily")
	s.AddToToday(task.ID, testDay)

	in, _ := s.IsInToday(task.ID, testDay)
	if !in {
		t.Fatal("expected task in today list")
	}
	in, _ = s.IsInToday(task.ID, testDay.AddDate(0, 0, 1))
	if in {
		t.Fatal("task should not be listed on another day")
	}

	if err := s.RemoveFromToday(task.ID, testDay); err != nil {
		t.Fatal(err)
	}
	in, _ = s.IsInToday(task.ID, testDay)
	if in {
		t.Fatal("expected task removed")
	}
}

func TestReorderToday(t *testing.T) {
	s := newTestStore(t)
	f, _ := s.CreateFolder("Work", nil)
	var ids []int64
	for _, title := range []string{"A", "B", "C"} {
		task, _ := s.CreateTask(Task{FolderID: f.ID, Title: title})
		s.AddToToday(task.ID, testDay)
		ids = append(ids, task.ID)
	}

	if err := s.ReorderToday(testDay, []int64{ids[2], ids[0], ids[1]}); err != nil {
		t.Fatal(err)
	}
	items, _ := s.ListToday(testDay)
	got := items[0].Task.Title + items[1].Task.Title + items[2].Task.Title
	if got != "CAB" {
		t.Fatalf("expected CAB, got %s", got)
	}
}
