package store

import (
	"database/sql"
	"fmt"
	"time"
)

const taskColumns = `id, folder_id, title, status, priority, color_tag, deadline, estimate_minutes, description, created_at`

func (s *Store) CreateTask(t Task) (*Task, error) {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO tasks (folder_id, title, status, priority, color_tag, deadline, estimate_minutes, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.FolderID, t.Title, t.Status, t.Priority, t.ColorTag, deadlineArg(t.Deadline), t.EstimateMinutes, t.Description, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("task", id, err)
	}
	return t, nil
}

func (s *Store) ListTasks(folderID int64) ([]Task, error) {
	return s.listTasks(`SELECT `+taskColumns+` FROM tasks WHERE folder_id = ? ORDER BY title`, folderID)
}

func (s *Store) ListAllTasks() ([]Task, error) {
	return s.listTasks(`SELECT ` + taskColumns + ` FROM tasks ORDER BY title`)
}

func (s *Store) listTasks(query string, args ...any) ([]Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(t Task) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET folder_id = ?, title = ?, status = ?, priority = ?, color_tag = ?, deadline = ?,
		 estimate_minutes = ?, description = ? WHERE id = ?`,
		t.FolderID, t.Title, t.Status, t.Priority, t.ColorTag, deadlineArg(t.Deadline), t.EstimateMinutes, t.Description, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return expectRow(res, "task", t.ID)
}

func (s *Store) UpdateTaskStatus(id int64, status TaskStatus) error {
	res, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update task %d status: %w", id, err)
	}
	return expectRow(res, "task", id)
}

// DeleteTask removes a task and its today-list entries. Intervals linked to
// it are kept and become unlinked.
func (s *Store) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectRow(res, "task", id)
}

func scanTask(row scanner) (*Task, error) {
	t := &Task{}
	var deadline sql.NullString
	var estimate sql.NullInt64
	var createdAt string
	err := row.Scan(&t.ID, &t.FolderID, &t.Title, &t.Status, &t.Priority, &t.ColorTag,
		&deadline, &estimate, &t.Description, &createdAt)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		d, _ := time.Parse("2006-01-02", deadline.String)
		t.Deadline = &d
	}
	if estimate.Valid {
		m := int(estimate.Int64)
		t.EstimateMinutes = &m
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func deadlineArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format("2006-01-02")
}
