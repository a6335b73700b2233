package models

import "time"

type Group struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id,string,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupMember is one user↔group membership row. The admin flag grants a
// Teacher-level member management rights over this specific group.
type GroupMember struct {
	GroupID  int64     `json:"group_id,string"`
	UserID   int64     `json:"user_id,string"`
	IsAdmin  bool      `json:"is_admin"`
	JoinedAt time.Time `json:"joined_at"`
}
