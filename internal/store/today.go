package store

import (
	"fmt"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
)

// AddToToday appends a task to the day's list. Adding a task that is already
// listed is a no-op returning the existing entry.
func (s *Store) AddToToday(taskID int64, date time.Time) (*TodayTask, error) {
	day := interval.DateKey(date)
	_, err := s.db.Exec(`
		INSERT INTO today_tasks (task_id, date, display_order)
		VALUES (?, ?, (SELECT COALESCE(MAX(display_order), 0) + 1 FROM today_tasks WHERE date = ?))
		ON CONFLICT(task_id, date) DO NOTHING`,
		taskID, day, day,
	)
	if err != nil {
		return nil, fmt.Errorf("add task %d to %s: %w", taskID, day, err)
	}

	tt := &TodayTask{TaskID: taskID}
	var d string
	err = s.db.QueryRow(
		`SELECT id, date, display_order FROM today_tasks WHERE task_id = ? AND date = ?`, taskID, day,
	).Scan(&tt.ID, &d, &tt.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("read today entry: %w", err)
	}
	tt.Date, _ = interval.ParseDate(d)
	return tt, nil
}

func (s *Store) RemoveFromToday(taskID int64, date time.Time) error {
	_, err := s.db.Exec(`DELETE FROM today_tasks WHERE task_id = ? AND date = ?`, taskID, interval.DateKey(date))
	return err
}

func (s *Store) IsInToday(taskID int64, date time.Time) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM today_tasks WHERE task_id = ? AND date = ?`, taskID, interval.DateKey(date),
	).Scan(&n)
	return n > 0, err
}

// ListToday returns the day's list in display order, joined with each task.
func (s *Store) ListToday(date time.Time) ([]TodayItem, error) {
	rows, err := s.db.Query(`
		SELECT tt.id, tt.task_id, tt.date, tt.display_order,
		       t.id, t.folder_id, t.title, t.status, t.priority, t.color_tag, t.deadline,
		       t.estimate_minutes, t.description, t.created_at
		FROM today_tasks tt
		JOIN tasks t ON t.id = tt.task_id
		WHERE tt.date = ?
		ORDER BY tt.display_order, tt.id`, interval.DateKey(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list today: %w", err)
	}
	defer rows.Close()

	var items []TodayItem
	for rows.Next() {
		var it TodayItem
		var d string
		var task *Task
		task, err = scanTask(prefixScanner{rows: rows, prefix: []any{&it.ID, &it.TaskID, &d, &it.DisplayOrder}})
		if err != nil {
			return nil, err
		}
		it.Date, _ = interval.ParseDate(d)
		it.Task = *task
		items = append(items, it)
	}
	return items, rows.Err()
}

// ReorderToday sets the display order of the day's list to follow taskIDs.
func (s *Store) ReorderToday(date time.Time, taskIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	day := interval.DateKey(date)
	for i, id := range taskIDs {
		if _, err := tx.Exec(
			`UPDATE today_tasks SET display_order = ? WHERE task_id = ? AND date = ?`, i+1, id, day,
		); err != nil {
			return fmt.Errorf("reorder today: %w", err)
		}
	}
	return tx.Commit()
}

// prefixScanner lets scanTask read the trailing task columns of a joined row.
type prefixScanner struct {
	rows   scanner
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.rows.Scan(append(p.prefix, dest...)...)
}
