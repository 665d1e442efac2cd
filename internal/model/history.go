package model

import "time"

// HistoryRecord is one entry in the append-only custody ledger. Records are
// never updated or deleted. Take and return entries always carry a photo.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	PhotoID   string    `json:"photo_id,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemLabel string `json:"item_label,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

// Ledger actions.
const (
	ActionTake            = "take"
	ActionReturn          = "return"
	ActionMarkLost        = "mark_lost"
	ActionMarkMaintenance = "mark_maintenance"
	ActionRestore         = "restore"
)
