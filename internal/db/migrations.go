package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the
// end.
var migrations = []string{
	// Migration 1: history lookups by item and user were unindexed in early
	// databases.
	`CREATE INDEX IF NOT EXISTS idx_history_item ON history(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id)`,
}

// Migrate ensures the schema exists and runs all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	// ALTER TABLE ADD COLUMN has no IF NOT EXISTS in SQLite, so column
	// additions to pre-existing databases go through ensureColumn.
	if err := ensureColumn(db, "items", "code", "TEXT"); err != nil {
		return err
	}

	return nil
}

// ensureColumn adds a column to a table unless it already exists.
func ensureColumn(db *sql.DB, table, column, typ string) error {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("inspecting %s columns: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning column name: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, typ))
	if err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, column, err)
	}
	return nil
}
