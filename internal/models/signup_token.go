package models

import (
	"time"

	"github.com/ivopashov/classdocs/internal/access"
)

// SignupToken is a single-use invitation. Registration consumes one; the
// token's role becomes the new user's role.
type SignupToken struct {
	Token     string      `json:"token"`
	Role      access.Role `json:"role"`
	CreatedBy int64       `json:"created_by,string"`
	ExpiresAt time.Time   `json:"expires_at"`
	UsedBy    *int64      `json:"used_by,string,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
