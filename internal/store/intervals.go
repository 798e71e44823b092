package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
)

// IntervalTable persists one kind of interval: plan blocks or actual sessions.
type IntervalTable struct {
	db    *sql.DB
	kind  interval.Kind
	table string
}

// Intervals returns the table holding intervals of the given kind.
func (s *Store) Intervals(kind interval.Kind) *IntervalTable {
	if kind == interval.KindActual {
		return s.actuals
	}
	return s.plans
}

func (s *Store) PlanBlocks() *IntervalTable     { return s.plans }
func (s *Store) ActualSessions() *IntervalTable { return s.actuals }

func (t *IntervalTable) Kind() interval.Kind { return t.kind }

const intervalColumns = `id, date, start_time, end_time, title, category, linked_task_id`

func (t *IntervalTable) Save(iv interval.Interval) (*interval.Interval, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := t.db.Exec(
		`INSERT INTO `+t.table+` (date, start_time, end_time, title, category, linked_task_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		interval.DateKey(iv.Date), iv.Start.String(), iv.End.String(), iv.Label, iv.Category, iv.LinkedTaskID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.kind, err)
	}
	id, _ := res.LastInsertId()
	return t.Get(id)
}

func (t *IntervalTable) Get(id int64) (*interval.Interval, error) {
	row := t.db.QueryRow(`SELECT `+intervalColumns+` FROM `+t.table+` WHERE id = ?`, id)
	iv, err := t.scan(row)
	if err != nil {
		return nil, notFound(string(t.kind), id, err)
	}
	return iv, nil
}

// FindByDate lists the intervals of a day ordered by start time.
func (t *IntervalTable) FindByDate(date time.Time) ([]interval.Interval, error) {
	return t.query(
		`SELECT `+intervalColumns+` FROM `+t.table+` WHERE date = ? ORDER BY start_time, id`,
		interval.DateKey(date),
	)
}

// FindRange lists the intervals of every day in [from, to).
func (t *IntervalTable) FindRange(from, to time.Time) ([]interval.Interval, error) {
	return t.query(
		`SELECT `+intervalColumns+` FROM `+t.table+` WHERE date >= ? AND date < ? ORDER BY date, start_time, id`,
		interval.DateKey(from), interval.DateKey(to),
	)
}

func (t *IntervalTable) Update(iv interval.Interval) error {
	res, err := t.db.Exec(
		`UPDATE `+t.table+` SET date = ?, start_time = ?, end_time = ?, title = ?, category = ?, linked_task_id = ?
		 WHERE id = ?`,
		interval.DateKey(iv.Date), iv.Start.String(), iv.End.String(), iv.Label, iv.Category, iv.LinkedTaskID, iv.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", t.kind, iv.ID, err)
	}
	return expectRow(res, string(t.kind), iv.ID)
}

func (t *IntervalTable) Delete(id int64) error {
	res, err := t.db.Exec(`DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", t.kind, id, err)
	}
	return expectRow(res, string(t.kind), id)
}

type scanner interface {
	Scan(dest ...any) error
}

func (t *IntervalTable) scan(row scanner) (*interval.Interval, error) {
	iv := &interval.Interval{Kind: t.kind}
	var date, start, end string
	var taskID sql.NullInt64
	if err := row.Scan(&iv.ID, &date, &start, &end, &iv.Label, &iv.Category, &taskID); err != nil {
		return nil, err
	}
	if taskID.Valid {
		iv.LinkedTaskID = &taskID.Int64
	}
	iv.Date, _ = interval.ParseDate(date)
	iv.Start, _ = interval.ParseTimeOfDay(start)
	iv.End, _ = interval.ParseTimeOfDay(end)
	return iv, nil
}

func (t *IntervalTable) query(q string, args ...any) ([]interval.Interval, error) {
	rows, err := t.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.kind, err)
	}
	defer rows.Close()

	var out []interval.Interval
	for rows.Next() {
		iv, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

func expectRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
