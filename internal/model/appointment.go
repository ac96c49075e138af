package model

import "time"

type Appointment struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Title     string    `json:"title"`
	Doctor    string    `json:"doctor"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	Notes     string    `json:"notes"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
