package model

import "time"

// AdminLogEntry is one record in the administrative audit log. Every registry
// mutation appends one; entries are never updated or deleted.
type AdminLogEntry struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined field (not always populated).
	ActorName string `json:"actor_name,omitempty"`
}
