package models

import "time"

// Template is a reusable document scaffold managed by elevated actors.
type Template struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedBy int64     `json:"created_by,string"`
	CreatedAt time.Time `json:"created_at"`
}
