package model

import "time"

// Event types understood by the front end.
const (
	EventTypeBirthday = "birthday"
	EventTypeParty    = "party"
	EventTypeMeeting  = "meeting"
	EventTypeOther    = "other"
)

type Event struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
