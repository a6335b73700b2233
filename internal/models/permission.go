package models

import "github.com/ivopashov/classdocs/internal/access"

// RootUserPermission grants a single user a level on a root.
// Unique per (root, user).
type RootUserPermission struct {
	RootID int64        `json:"root_id,string"`
	UserID int64        `json:"user_id,string"`
	Access access.Level `json:"access"`
}

// RootGroupPermission grants a group a level on a root.
// Unique per (root, group).
type RootGroupPermission struct {
	RootID  int64        `json:"root_id,string"`
	GroupID int64        `json:"group_id,string"`
	Access  access.Level `json:"access"`
}
