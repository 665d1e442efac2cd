package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SavePhoto stores a processed proof image and returns its reference ID.
func SavePhoto(ctx context.Context, db *sql.DB, data []byte, mime string) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO photos (id, data, mime) VALUES (?, ?, ?)`,
		id, data, mime,
	)
	if err != nil {
		return "", fmt.Errorf("saving photo: %w", err)
	}
	return id, nil
}

// GetPhoto returns a stored photo's data and MIME type.
func GetPhoto(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM photos WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo: %w", err)
	}
	return data, mime, nil
}

// PhotoExists reports whether a photo reference is known.
func PhotoExists(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM photos WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking photo: %w", err)
	}
	return count > 0, nil
}
