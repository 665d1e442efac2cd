package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

const historyQuery = `SELECT h.id, h.item_id, h.user_id, h.action, h.photo_id, h.note, h.created_at,
	        i.label AS item_label, u.display_name AS user_name
	 FROM history h
	 JOIN items i ON i.id = h.item_id
	 JOIN users u ON u.id = h.user_id`

// GetHistoryRecord returns a single ledger entry by ID.
func GetHistoryRecord(ctx context.Context, db *sql.DB, id int64) (*model.HistoryRecord, error) {
	h := &model.HistoryRecord{}
	var photoID, note sql.NullString
	err := db.QueryRowContext(ctx,
		historyQuery+` WHERE h.id = ?`, id,
	).Scan(&h.ID, &h.ItemID, &h.UserID, &h.Action, &photoID, &note, &h.CreatedAt,
		&h.ItemLabel, &h.UserName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting history record: %w", err)
	}
	h.PhotoID = photoID.String
	h.Note = note.String
	return h, nil
}

// ListHistoryForItem returns the full ledger for an item, oldest first.
func ListHistoryForItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.HistoryRecord, error) {
	rows, err := db.QueryContext(ctx,
		historyQuery+` WHERE h.item_id = ? ORDER BY h.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item history: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows)
}

// ListHistoryForUser returns all ledger entries involving a user, oldest
// first.
func ListHistoryForUser(ctx context.Context, db *sql.DB, userID int64) ([]model.HistoryRecord, error) {
	rows, err := db.QueryContext(ctx,
		historyQuery+` WHERE h.user_id = ? ORDER BY h.id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user history: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]model.HistoryRecord, error) {
	var records []model.HistoryRecord
	for rows.Next() {
		var h model.HistoryRecord
		var photoID, note sql.NullString
		if err := rows.Scan(&h.ID, &h.ItemID, &h.UserID, &h.Action, &photoID, &note, &h.CreatedAt,
			&h.ItemLabel, &h.UserName); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		h.PhotoID = photoID.String
		h.Note = note.String
		records = append(records, h)
	}
	return records, rows.Err()
}
