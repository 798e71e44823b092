package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrFolderNotEmpty is returned when deleting a folder that still holds
// subfolders or tasks.
var ErrFolderNotEmpty = errors.New("folder not empty")

func (s *Store) CreateFolder(name string, parentID *int64) (*Folder, error) {
	res, err := s.db.Exec(`INSERT INTO folders (name, parent_id) VALUES (?, ?)`, name, parentID)
	if err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetFolder(id)
}

func (s *Store) GetFolder(id int64) (*Folder, error) {
	f := &Folder{}
	var parent sql.NullInt64
	err := s.db.QueryRow(`SELECT id, name, parent_id FROM folders WHERE id = ?`, id).Scan(&f.ID, &f.Name, &parent)
	if err != nil {
		return nil, notFound("folder", id, err)
	}
	if parent.Valid {
		f.ParentID = &parent.Int64
	}
	return f, nil
}

// ListRootFolders returns the folders without a parent, by name.
func (s *Store) ListRootFolders() ([]Folder, error) {
	return s.listFolders(`SELECT id, name, parent_id FROM folders WHERE parent_id IS NULL ORDER BY name`)
}

func (s *Store) ListSubfolders(parentID int64) ([]Folder, error) {
	return s.listFolders(`SELECT id, name, parent_id FROM folders WHERE parent_id = ? ORDER BY name`, parentID)
}

func (s *Store) ListFolders() ([]Folder, error) {
	return s.listFolders(`SELECT id, name, parent_id FROM folders ORDER BY name`)
}

func (s *Store) listFolders(query string, args ...any) ([]Folder, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		var parent sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &parent); err != nil {
			return nil, err
		}
		if parent.Valid {
			f.ParentID = &parent.Int64
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (s *Store) UpdateFolder(id int64, name string, parentID *int64) error {
	res, err := s.db.Exec(`UPDATE folders SET name = ?, parent_id = ? WHERE id = ?`, name, parentID, id)
	if err != nil {
		return fmt.Errorf("update folder %d: %w", id, err)
	}
	return expectRow(res, "folder", id)
}

// DeleteFolder removes an empty folder.
func (s *Store) DeleteFolder(id int64) error {
	var children int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM folders WHERE parent_id = ?) +
		       (SELECT COUNT(*) FROM tasks WHERE folder_id = ?)`, id, id,
	).Scan(&children)
	if err != nil {
		return fmt.Errorf("count folder %d contents: %w", id, err)
	}
	if children > 0 {
		return fmt.Errorf("delete folder %d: %w", id, ErrFolderNotEmpty)
	}
	res, err := s.db.Exec(`DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder %d: %w", id, err)
	}
	return expectRow(res, "folder", id)
}
