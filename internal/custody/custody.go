// Package custody is the only writer of available/held transitions. Both
// operations commit a single conditional update together with the matching
// ledger entry, so the datastore decides concurrent races and a state change
// can never exist without its history row.
package custody

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// Take checks an available item out to a user. The photo reference is
// mandatory. If another actor wins the race the conditional update affects
// zero rows and Take fails with ErrItemUnavailable; the caller must
// re-prompt, never retry silently.
func Take(ctx context.Context, db *sql.DB, itemID, userID int64, photoID string) (*model.HistoryRecord, error) {
	if photoID == "" {
		return nil, model.ErrMissingPhoto
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, holder_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		model.ItemStatusHeld, userID, itemID, model.ItemStatusAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking claim result: %w", err)
	}
	if n == 0 {
		return nil, takeFailure(ctx, tx, itemID)
	}

	recordID, err := appendRecord(ctx, tx, itemID, userID, model.ActionTake, photoID, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing take: %w", err)
	}

	return store.GetHistoryRecord(ctx, db, recordID)
}

// Return checks an item back in. Only the current holder may return it. The
// photo reference is mandatory; the condition note is optional.
func Return(ctx context.Context, db *sql.DB, itemID, userID int64, photoID, note string) (*model.HistoryRecord, error) {
	if photoID == "" {
		return nil, model.ErrMissingPhoto
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, holder_id = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND holder_id = ? AND deleted_at IS NULL`,
		model.ItemStatusAvailable, itemID, model.ItemStatusHeld, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("releasing item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking release result: %w", err)
	}
	if n == 0 {
		return nil, returnFailure(ctx, tx, itemID)
	}

	recordID, err := appendRecord(ctx, tx, itemID, userID, model.ActionReturn, photoID, note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return store.GetHistoryRecord(ctx, db, recordID)
}

// appendRecord inserts a ledger entry within the transaction of the state
// change it documents.
func appendRecord(ctx context.Context, tx *sql.Tx, itemID, userID int64, action, photoID, note string) (int64, error) {
	var photo, n any
	if photoID != "" {
		photo = photoID
	}
	if note != "" {
		n = note
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO history (item_id, user_id, action, photo_id, note) VALUES (?, ?, ?, ?, ?)`,
		itemID, userID, action, photo, n,
	)
	if err != nil {
		return 0, fmt.Errorf("appending history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting history id: %w", err)
	}
	return id, nil
}

// takeFailure distinguishes a missing item from a lost race.
func takeFailure(ctx context.Context, tx *sql.Tx, itemID int64) error {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM items WHERE id = ? AND deleted_at IS NULL`, itemID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return model.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("inspecting item: %w", err)
	}
	return model.ErrItemUnavailable
}

// returnFailure distinguishes a missing item from a wrong or absent holder.
func returnFailure(ctx context.Context, tx *sql.Tx, itemID int64) error {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM items WHERE id = ? AND deleted_at IS NULL`, itemID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return model.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("inspecting item: %w", err)
	}
	return model.ErrNotHolder
}
