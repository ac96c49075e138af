package store

import (
	"database/sql"
	"fmt"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	err := scanner.Scan(
		&n.ID, &n.GroupID, &n.Title, &n.Content, &n.Priority,
		&n.AuthorID, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const noteCols = `id, group_id, title, content, priority, author_id, created_at, updated_at`

func (s *NoteStore) Create(groupID int64, title, content, priority string, authorID int64) (*model.Note, error) {
	result, err := s.db.Exec(
		`INSERT INTO notes (group_id, title, content, priority, author_id) VALUES (?, ?, ?, ?, ?)`,
		groupID, title, content, priority, authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) GetByID(id int64) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *NoteStore) listRows(query string, args ...any) ([]model.Note, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// ListByGroup returns notes newest first, high priority ones on top.
func (s *NoteStore) ListByGroup(groupID int64) ([]model.Note, error) {
	return s.listRows(
		`SELECT `+noteCols+` FROM notes WHERE group_id = ?
		 ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END, created_at DESC`,
		groupID,
	)
}

func (s *NoteStore) ListByPriority(groupID int64, priority string) ([]model.Note, error) {
	return s.listRows(
		`SELECT `+noteCols+` FROM notes WHERE group_id = ? AND priority = ? ORDER BY created_at DESC`,
		groupID, priority,
	)
}

func (s *NoteStore) Search(groupID int64, query string) ([]model.Note, error) {
	pattern := "%" + query + "%"
	return s.listRows(
		`SELECT `+noteCols+` FROM notes
		 WHERE group_id = ? AND (title LIKE ? OR content LIKE ?)
		 ORDER BY created_at DESC`,
		groupID, pattern, pattern,
	)
}

func (s *NoteStore) Update(id int64, title, content, priority string) (*model.Note, error) {
	_, err := s.db.Exec(
		`UPDATE notes SET title = ?, content = ?, priority = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, content, priority, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
