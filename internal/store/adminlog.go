package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// LogAdminAction appends an entry to the administrative audit log.
func LogAdminAction(ctx context.Context, db *sql.DB, actorID int64, action, detail string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO admin_log (actor_id, action, detail) VALUES (?, ?, ?)`,
		actorID, action, detail,
	)
	if err != nil {
		return fmt.Errorf("logging admin action: %w", err)
	}
	return nil
}

// ListAdminLog returns the newest audit entries with actor names joined,
// newest first. A non-positive limit defaults to 100.
func ListAdminLog(ctx context.Context, db *sql.DB, limit int) ([]model.AdminLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.actor_id, l.action, l.detail, l.created_at,
		        u.display_name AS actor_name
		 FROM admin_log l
		 JOIN users u ON u.id = l.actor_id
		 ORDER BY l.id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing admin log: %w", err)
	}
	defer rows.Close()

	var entries []model.AdminLogEntry
	for rows.Next() {
		var e model.AdminLogEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Detail, &e.CreatedAt, &e.ActorName); err != nil {
			return nil, fmt.Errorf("scanning admin log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
