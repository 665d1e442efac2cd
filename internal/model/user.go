package model

import "time"

// User is a chat member known to the system, created on first interaction.
// ExternalID is the identity assigned by the chat transport.
type User struct {
	ID          int64     `json:"id"`
	ExternalID  string    `json:"external_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// IsAdmin reports whether the user may perform administrative operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
