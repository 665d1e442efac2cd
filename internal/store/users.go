package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// UpsertUser creates a user on first contact or refreshes the display name on
// subsequent events. If admin is true the user is promoted; configured
// initial admins pass it on every event, so a promotion survives re-upserts.
// Admins are never demoted here.
func UpsertUser(ctx context.Context, db *sql.DB, externalID, displayName string, admin bool) (*model.User, error) {
	role := model.RoleMember
	if admin {
		role = model.RoleAdmin
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (external_id, display_name, role) VALUES (?, ?, ?)
		 ON CONFLICT (external_id) DO UPDATE SET display_name = excluded.display_name`,
		externalID, displayName, role,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	if admin {
		_, err = db.ExecContext(ctx,
			`UPDATE users SET role = ? WHERE external_id = ? AND role != ?`,
			model.RoleAdmin, externalID, model.RoleAdmin,
		)
		if err != nil {
			return nil, fmt.Errorf("promoting user: %w", err)
		}
	}

	return GetUserByExternalID(ctx, db, externalID)
}

// GetUser returns a user by ID, or nil if it doesn't exist.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, external_id, display_name, role, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByExternalID returns a user by their chat-transport identity.
func GetUserByExternalID(ctx context.Context, db *sql.DB, externalID string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, external_id, display_name, role, created_at
		 FROM users WHERE external_id = ?`, externalID,
	).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by external id: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, external_id, display_name, role, created_at
		 FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserRole changes a user's role.
func SetUserRole(ctx context.Context, db *sql.DB, id int64, role string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("setting user role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("setting user role: user %d not found", id)
	}
	return nil
}
