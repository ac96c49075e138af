package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.GroupID, &e.Title, &e.Description, &e.Type,
		&e.Date, &e.Time, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, group_id, title, description, type, date, time, created_by, created_at, updated_at`

func (s *EventStore) Create(groupID int64, title, description, eventType string, date time.Time, timeOfDay string, createdBy int64) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (group_id, title, description, type, date, time, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		groupID, title, description, eventType, dateOnly(date), timeOfDay, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *EventStore) listRows(query string, args ...any) ([]model.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) ListByGroup(groupID int64) ([]model.Event, error) {
	return s.listRows(
		`SELECT `+eventCols+` FROM events WHERE group_id = ? ORDER BY date ASC, time ASC`,
		groupID,
	)
}

func (s *EventStore) ListUpcoming(groupID int64, from time.Time, limit int) ([]model.Event, error) {
	return s.listRows(
		`SELECT `+eventCols+` FROM events
		 WHERE group_id = ? AND date >= ?
		 ORDER BY date ASC, time ASC LIMIT ?`,
		groupID, dateOnly(from), limit,
	)
}

func (s *EventStore) ListByType(groupID int64, eventType string) ([]model.Event, error) {
	return s.listRows(
		`SELECT `+eventCols+` FROM events
		 WHERE group_id = ? AND type = ?
		 ORDER BY date ASC, time ASC`,
		groupID, eventType,
	)
}

// ListBirthdays returns birthday events whose date falls in the given month
// of any year, for the "birthdays of the month" panel. The driver stores
// time.Time columns in a text form SQLite's date functions cannot parse, so
// the month filter runs in Go on the scanned dates.
func (s *EventStore) ListBirthdays(groupID int64, month time.Month) ([]model.Event, error) {
	events, err := s.listRows(
		`SELECT `+eventCols+` FROM events
		 WHERE group_id = ? AND type = ?
		 ORDER BY date ASC`,
		groupID, model.EventTypeBirthday,
	)
	if err != nil {
		return nil, err
	}
	var matched []model.Event
	for _, e := range events {
		if e.Date.Month() == month {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *EventStore) ListByDateRange(groupID int64, start, end time.Time) ([]model.Event, error) {
	return s.listRows(
		`SELECT `+eventCols+` FROM events
		 WHERE group_id = ? AND date >= ? AND date < ?
		 ORDER BY date ASC, time ASC`,
		groupID, dateOnly(start), dateOnly(end),
	)
}

func (s *EventStore) Update(id int64, title, description, eventType string, date time.Time, timeOfDay string) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events
		 SET title = ?, description = ?, type = ?, date = ?, time = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, eventType, dateOnly(date), timeOfDay, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
