package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type AppointmentStore struct {
	db *sql.DB
}

func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func scanAppointment(scanner interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	err := scanner.Scan(
		&a.ID, &a.GroupID, &a.Title, &a.Doctor, &a.Location,
		&a.Date, &a.Time, &a.Notes, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const appointmentCols = `id, group_id, title, doctor, location, date, time, notes, created_by, created_at, updated_at`

func (s *AppointmentStore) Create(groupID int64, title, doctor, location string, date time.Time, timeOfDay, notes string, createdBy int64) (*model.Appointment, error) {
	result, err := s.db.Exec(
		`INSERT INTO appointments (group_id, title, doctor, location, date, time, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		groupID, title, doctor, location, dateOnly(date), timeOfDay, notes, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AppointmentStore) GetByID(id int64) (*model.Appointment, error) {
	row := s.db.QueryRow(`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *AppointmentStore) listRows(query string, args ...any) ([]model.Appointment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

func (s *AppointmentStore) ListByGroup(groupID int64) ([]model.Appointment, error) {
	return s.listRows(
		`SELECT `+appointmentCols+` FROM appointments WHERE group_id = ? ORDER BY date ASC, time ASC`,
		groupID,
	)
}

// ListUpcoming returns appointments on or after the given day, soonest first.
func (s *AppointmentStore) ListUpcoming(groupID int64, from time.Time, limit int) ([]model.Appointment, error) {
	return s.listRows(
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE group_id = ? AND date >= ?
		 ORDER BY date ASC, time ASC LIMIT ?`,
		groupID, dateOnly(from), limit,
	)
}

func (s *AppointmentStore) ListByDate(groupID int64, date time.Time) ([]model.Appointment, error) {
	return s.listRows(
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE group_id = ? AND date = ?
		 ORDER BY time ASC`,
		groupID, dateOnly(date),
	)
}

func (s *AppointmentStore) ListByDoctor(groupID int64, doctor string) ([]model.Appointment, error) {
	return s.listRows(
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE group_id = ? AND doctor LIKE ?
		 ORDER BY date ASC, time ASC`,
		groupID, "%"+doctor+"%",
	)
}

func (s *AppointmentStore) ListByDateRange(groupID int64, start, end time.Time) ([]model.Appointment, error) {
	return s.listRows(
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE group_id = ? AND date >= ? AND date < ?
		 ORDER BY date ASC, time ASC`,
		groupID, dateOnly(start), dateOnly(end),
	)
}

func (s *AppointmentStore) Update(id int64, title, doctor, location string, date time.Time, timeOfDay, notes string) (*model.Appointment, error) {
	_, err := s.db.Exec(
		`UPDATE appointments
		 SET title = ?, doctor = ?, location = ?, date = ?, time = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, doctor, location, dateOnly(date), timeOfDay, notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return s.GetByID(id)
}

func (s *AppointmentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
