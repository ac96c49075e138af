package model

import "time"

type Album struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Photo struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	AlbumID    *int64    `json:"album_id"`
	ObjectKey  string    `json:"object_key"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption"`
	UploadedBy int64     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
