package models

import (
	"time"

	"github.com/ivopashov/classdocs/internal/access"
)

// DocumentRoot is the permission-bearing container for a tree of documents.
// SharedAccess is the default level for any actor not covered by a more
// specific grant; it is always defined.
type DocumentRoot struct {
	ID           int64        `json:"id,string"`
	Name         string       `json:"name"`
	SharedAccess access.Level `json:"shared_access"`
	CreatedBy    int64        `json:"created_by,string"`
	CreatedAt    time.Time    `json:"created_at"`
}
