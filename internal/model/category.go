package model

import "time"

// Category groups related items. Names are unique (case-insensitive) among
// active categories.
type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
