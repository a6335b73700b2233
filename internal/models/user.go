package models

import (
	"time"

	"github.com/ivopashov/classdocs/internal/access"
)

type User struct {
	ID           int64       `json:"id,string"`
	Username     string      `json:"username"`
	DisplayName  string      `json:"display_name"`
	Role         access.Role `json:"role"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}
