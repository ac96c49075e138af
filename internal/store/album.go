package store

import (
	"database/sql"
	"fmt"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type AlbumStore struct {
	db *sql.DB
}

func NewAlbumStore(db *sql.DB) *AlbumStore {
	return &AlbumStore{db: db}
}

func scanAlbum(scanner interface{ Scan(...any) error }) (*model.Album, error) {
	var a model.Album
	err := scanner.Scan(
		&a.ID, &a.GroupID, &a.Name, &a.Description,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const albumCols = `id, group_id, name, description, created_by, created_at, updated_at`

func (s *AlbumStore) Create(groupID int64, name, description string, createdBy int64) (*model.Album, error) {
	result, err := s.db.Exec(
		`INSERT INTO albums (group_id, name, description, created_by) VALUES (?, ?, ?, ?)`,
		groupID, name, description, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert album: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AlbumStore) GetByID(id int64) (*model.Album, error) {
	row := s.db.QueryRow(`SELECT `+albumCols+` FROM albums WHERE id = ?`, id)
	a, err := scanAlbum(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}
	return a, nil
}

func (s *AlbumStore) listRows(query string, args ...any) ([]model.Album, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var albums []model.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, *a)
	}
	return albums, rows.Err()
}

func (s *AlbumStore) ListByGroup(groupID int64) ([]model.Album, error) {
	return s.listRows(
		`SELECT `+albumCols+` FROM albums WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
}

func (s *AlbumStore) ListRecent(groupID int64, limit int) ([]model.Album, error) {
	return s.listRows(
		`SELECT `+albumCols+` FROM albums WHERE group_id = ? ORDER BY created_at DESC LIMIT ?`,
		groupID, limit,
	)
}

func (s *AlbumStore) Search(groupID int64, query string) ([]model.Album, error) {
	pattern := "%" + query + "%"
	return s.listRows(
		`SELECT `+albumCols+` FROM albums
		 WHERE group_id = ? AND (name LIKE ? OR description LIKE ?)
		 ORDER BY created_at DESC`,
		groupID, pattern, pattern,
	)
}

func (s *AlbumStore) Update(id int64, name, description string) (*model.Album, error) {
	_, err := s.db.Exec(
		`UPDATE albums SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update album: %w", err)
	}
	return s.GetByID(id)
}

func (s *AlbumStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}
