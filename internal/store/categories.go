package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// CreateCategory creates a new category. Names must be unique
// (case-insensitive) among active categories.
func CreateCategory(ctx context.Context, db *sql.DB, name string) (*model.Category, error) {
	taken, err := categoryNameTaken(ctx, db, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, model.ErrDuplicateName
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?)`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID, or nil if it doesn't exist.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all active categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, deleted_at
		 FROM categories WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// RenameCategory changes a category's name. Metadata-only, always legal if
// the new name is free.
func RenameCategory(ctx context.Context, db *sql.DB, id int64, name string) error {
	taken, err := categoryNameTaken(ctx, db, name, id)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrDuplicateName
	}

	result, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND deleted_at IS NULL`,
		name, id,
	)
	if err != nil {
		return fmt.Errorf("renaming category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory soft-deletes a category. Fails with ErrCategoryNotEmpty
// unless every item under it has been archived.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE category_id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking category items: %w", err)
	}
	if count > 0 {
		return model.ErrCategoryNotEmpty
	}

	result, err := db.ExecContext(ctx,
		`UPDATE categories SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// categoryNameTaken checks whether an active category other than excludeID
// already uses the name, ignoring case.
func categoryNameTaken(ctx context.Context, db *sql.DB, name string, excludeID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories
		 WHERE name = ? COLLATE NOCASE AND deleted_at IS NULL AND id != ?`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking category name: %w", err)
	}
	return count > 0, nil
}
