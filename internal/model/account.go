package model

import "time"

// Account is an HTTP credential used by the gateway bridge and by admins
// accessing the overview endpoints. Separate from chat members.
type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Account roles.
const (
	AccountRoleAdmin   = "admin"
	AccountRoleGateway = "gateway"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		AccountRoleAdmin:   2,
		AccountRoleGateway: 1,
	}
	return levels[role] >= levels[minimum]
}
