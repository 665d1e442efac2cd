package model

import "time"

// Item represents a single physical piece of equipment. Items are tracked
// individually and held by at most one user at a time.
type Item struct {
	ID         int64      `json:"id"`
	CategoryID int64      `json:"category_id"`
	Label      string     `json:"label"`
	Code       string     `json:"code,omitempty"`
	Status     string     `json:"status"`
	HolderID   *int64     `json:"holder_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	HolderName   string `json:"holder_name,omitempty"`
}

// Item statuses. An item is held iff it has a holder.
const (
	ItemStatusAvailable   = "available"
	ItemStatusHeld        = "held"
	ItemStatusLost        = "lost"
	ItemStatusMaintenance = "maintenance"
)
