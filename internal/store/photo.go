package store

import (
	"database/sql"
	"fmt"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func scanPhoto(scanner interface{ Scan(...any) error }) (*model.Photo, error) {
	var p model.Photo
	var albumID sql.NullInt64
	err := scanner.Scan(
		&p.ID, &p.GroupID, &albumID, &p.ObjectKey, &p.URL,
		&p.Caption, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if albumID.Valid {
		p.AlbumID = &albumID.Int64
	}
	return &p, nil
}

const photoCols = `id, group_id, album_id, object_key, url, caption, uploaded_by, created_at, updated_at`

func (s *PhotoStore) Create(groupID int64, albumID *int64, objectKey, url, caption string, uploadedBy int64) (*model.Photo, error) {
	var aID sql.NullInt64
	if albumID != nil {
		aID = sql.NullInt64{Int64: *albumID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO photos (group_id, album_id, object_key, url, caption, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		groupID, aID, objectKey, url, caption, uploadedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PhotoStore) GetByID(id int64) (*model.Photo, error) {
	row := s.db.QueryRow(`SELECT `+photoCols+` FROM photos WHERE id = ?`, id)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

func (s *PhotoStore) listRows(query string, args ...any) ([]model.Photo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func (s *PhotoStore) ListByGroup(groupID int64) ([]model.Photo, error) {
	return s.listRows(
		`SELECT `+photoCols+` FROM photos WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
}

func (s *PhotoStore) ListByAlbum(albumID int64) ([]model.Photo, error) {
	return s.listRows(
		`SELECT `+photoCols+` FROM photos WHERE album_id = ? ORDER BY created_at DESC`,
		albumID,
	)
}

func (s *PhotoStore) ListWithoutAlbum(groupID int64) ([]model.Photo, error) {
	return s.listRows(
		`SELECT `+photoCols+` FROM photos WHERE group_id = ? AND album_id IS NULL ORDER BY created_at DESC`,
		groupID,
	)
}

func (s *PhotoStore) ListRecent(groupID int64, limit int) ([]model.Photo, error) {
	return s.listRows(
		`SELECT `+photoCols+` FROM photos WHERE group_id = ? ORDER BY created_at DESC LIMIT ?`,
		groupID, limit,
	)
}

// MoveToAlbum reassigns a photo; a nil albumID moves it out of any album.
func (s *PhotoStore) MoveToAlbum(id int64, albumID *int64) (*model.Photo, error) {
	var aID sql.NullInt64
	if albumID != nil {
		aID = sql.NullInt64{Int64: *albumID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE photos SET album_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		aID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("move photo: %w", err)
	}
	return s.GetByID(id)
}

func (s *PhotoStore) Update(id int64, caption string) (*model.Photo, error) {
	_, err := s.db.Exec(
		`UPDATE photos SET caption = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		caption, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return s.GetByID(id)
}

func (s *PhotoStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// CountByGroup returns the number of photos a group has, for stats.
func (s *PhotoStore) CountByGroup(groupID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM photos WHERE group_id = ?`, groupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return n, nil
}
