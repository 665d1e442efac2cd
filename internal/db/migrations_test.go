package db

import "testing"

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate (second run): %v", err)
	}
}

func TestMigrateAddsItemCodeColumn(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	// An items table from before the code column existed.
	_, err = database.Exec(`CREATE TABLE items (
		id          INTEGER PRIMARY KEY,
		category_id INTEGER NOT NULL,
		label       TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'available',
		holder_id   INTEGER,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at  DATETIME
	)`)
	if err != nil {
		t.Fatalf("creating legacy table: %v", err)
	}

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if _, err := database.Exec(`UPDATE items SET code = 'INV-1'`); err != nil {
		t.Errorf("expected code column after migration: %v", err)
	}
}
