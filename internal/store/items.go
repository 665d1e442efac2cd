package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

const itemColumns = `i.id, i.category_id, i.label, COALESCE(i.code, '') AS code, i.status, i.holder_id,
	        i.created_at, i.updated_at, i.deleted_at,
	        c.name AS category_name, COALESCE(u.display_name, '') AS holder_name`

const itemJoins = `FROM items i
	 JOIN categories c ON c.id = i.category_id
	 LEFT JOIN users u ON u.id = i.holder_id`

// CreateItem creates a new item under a category. The item starts available.
func CreateItem(ctx context.Context, db *sql.DB, categoryID int64, label string) (*model.Item, error) {
	category, err := GetCategory(ctx, db, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || category.DeletedAt != nil {
		return nil, model.ErrCategoryNotFound
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (category_id, label) VALUES (?, ?)`,
		categoryID, label,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with category and holder names joined, or
// nil if it doesn't exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` `+itemJoins+` WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.CategoryID, &item.Label, &item.Code, &item.Status, &item.HolderID,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
		&item.CategoryName, &item.HolderName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all non-archived items, optionally filtered by category
// and/or status.
func ListItems(ctx context.Context, db *sql.DB, categoryID int64, status string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` ` + itemJoins + ` WHERE i.deleted_at IS NULL`
	var args []any

	if categoryID > 0 {
		query += ` AND i.category_id = ?`
		args = append(args, categoryID)
	}
	if status != "" {
		query += ` AND i.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY i.label`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsForHolder returns all items currently held by a user.
func ListItemsForHolder(ctx context.Context, db *sql.DB, userID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` `+itemJoins+`
		 WHERE i.holder_id = ? AND i.deleted_at IS NULL ORDER BY i.label`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing held items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// SearchItems returns non-archived items whose label contains the query,
// ignoring case.
func SearchItems(ctx context.Context, db *sql.DB, query string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` `+itemJoins+`
		 WHERE i.deleted_at IS NULL AND i.label LIKE ? COLLATE NOCASE
		 ORDER BY i.label LIMIT 50`,
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// RenameItem changes an item's label. Metadata-only, always legal.
func RenameItem(ctx context.Context, db *sql.DB, id int64, label string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET label = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		label, id,
	)
	if err != nil {
		return fmt.Errorf("renaming item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

// UpdateItemCode sets or clears an item's inventory code. An empty code
// stores NULL.
func UpdateItemCode(ctx context.Context, db *sql.DB, id int64, code string) error {
	var c any
	if code != "" {
		c = code
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET code = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		c, id,
	)
	if err != nil {
		return fmt.Errorf("updating item code: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

// ArchiveItem soft-deletes an item. Items referenced by history are never
// physically deleted. A held item cannot be archived.
func ArchiveItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND status != ?`,
		id, model.ItemStatusHeld,
	)
	if err != nil {
		return fmt.Errorf("archiving item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		item, err := GetItem(ctx, db, id)
		if err != nil {
			return err
		}
		if item == nil || item.DeletedAt != nil {
			return model.ErrItemNotFound
		}
		return model.ErrIllegalTransition
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Label, &item.Code, &item.Status, &item.HolderID,
			&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
			&item.CategoryName, &item.HolderName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
