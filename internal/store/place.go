package store

import (
	"database/sql"
	"fmt"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type PlaceStore struct {
	db *sql.DB
}

func NewPlaceStore(db *sql.DB) *PlaceStore {
	return &PlaceStore{db: db}
}

func scanPlace(scanner interface{ Scan(...any) error }) (*model.Place, error) {
	var p model.Place
	err := scanner.Scan(
		&p.ID, &p.GroupID, &p.Name, &p.Type, &p.Address,
		&p.Phone, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const placeCols = `id, group_id, name, type, address, phone, notes, created_by, created_at, updated_at`

func (s *PlaceStore) Create(groupID int64, name, placeType, address, phone, notes string, createdBy int64) (*model.Place, error) {
	result, err := s.db.Exec(
		`INSERT INTO places (group_id, name, type, address, phone, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		groupID, name, placeType, address, phone, notes, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert place: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlaceStore) GetByID(id int64) (*model.Place, error) {
	row := s.db.QueryRow(`SELECT `+placeCols+` FROM places WHERE id = ?`, id)
	p, err := scanPlace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get place: %w", err)
	}
	return p, nil
}

func (s *PlaceStore) listRows(query string, args ...any) ([]model.Place, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, *p)
	}
	return places, rows.Err()
}

func (s *PlaceStore) ListByGroup(groupID int64) ([]model.Place, error) {
	return s.listRows(
		`SELECT `+placeCols+` FROM places WHERE group_id = ? ORDER BY name ASC`,
		groupID,
	)
}

func (s *PlaceStore) ListByType(groupID int64, placeType string) ([]model.Place, error) {
	return s.listRows(
		`SELECT `+placeCols+` FROM places WHERE group_id = ? AND type = ? ORDER BY name ASC`,
		groupID, placeType,
	)
}

func (s *PlaceStore) Search(groupID int64, query string) ([]model.Place, error) {
	pattern := "%" + query + "%"
	return s.listRows(
		`SELECT `+placeCols+` FROM places
		 WHERE group_id = ? AND (name LIKE ? OR address LIKE ? OR notes LIKE ?)
		 ORDER BY name ASC`,
		groupID, pattern, pattern, pattern,
	)
}

// ListTypes returns the distinct place types in use by a group.
func (s *PlaceStore) ListTypes(groupID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT type FROM places WHERE group_id = ? AND type != '' ORDER BY type ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("query place types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan place type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *PlaceStore) Update(id int64, name, placeType, address, phone, notes string) (*model.Place, error) {
	_, err := s.db.Exec(
		`UPDATE places
		 SET name = ?, type = ?, address = ?, phone = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, placeType, address, phone, notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update place: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlaceStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	return nil
}
