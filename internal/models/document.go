package models

import "time"

// Document lives under a root and inherits all authorization from it;
// documents hold no permissions of their own. The parent relation forms a
// tree and must stay acyclic.
type Document struct {
	ID        int64      `json:"id,string"`
	RootID    int64      `json:"root_id,string"`
	AuthorID  int64      `json:"author_id,string"`
	ParentID  *int64     `json:"parent_id,string,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
