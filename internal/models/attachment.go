package models

import "time"

type Attachment struct {
	ID          int64     `json:"id,string"`
	DocumentID  int64     `json:"document_id,string"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"-"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}
