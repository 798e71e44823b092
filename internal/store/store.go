package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/dayplan/internal/interval"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB

	plans   *IntervalTable
	actuals *IntervalTable
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.plans = &IntervalTable{db: db, kind: interval.KindPlan, table: "plan_blocks"}
	s.actuals = &IntervalTable{db: db, kind: interval.KindActual, table: "actual_sessions"}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS folders (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		parent_id  INTEGER REFERENCES folders(id)
	);

	CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		folder_id         INTEGER NOT NULL REFERENCES folders(id),
		title             TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'doing', 'done')),
		priority          TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
		color_tag         TEXT NOT NULL DEFAULT '',
		deadline          TEXT,
		estimate_minutes  INTEGER,
		description       TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_folder ON tasks(folder_id);

	CREATE TABLE IF NOT EXISTS today_tasks (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id        INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		date           TEXT NOT NULL,
		display_order  INTEGER NOT NULL DEFAULT 0,
		UNIQUE(task_id, date)
	);

	CREATE TABLE IF NOT EXISTS plan_blocks (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		date            TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		title           TEXT NOT NULL,
		category        TEXT NOT NULL DEFAULT '',
		linked_task_id  INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_plan_blocks_date ON plan_blocks(date);

	CREATE TABLE IF NOT EXISTS actual_sessions (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		date            TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		title           TEXT NOT NULL,
		category        TEXT NOT NULL DEFAULT '',
		linked_task_id  INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_actual_sessions_date ON actual_sessions(date);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/dayplan/dayplan.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "dayplan", "dayplan.db"), nil
}

func notFound(what string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get %s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %d: %w", what, id, err)
}
