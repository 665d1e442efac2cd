// Package registry owns the item and category lifecycle. Every mutation
// requires an admin actor; available/held transitions are out of its reach
// and belong to the custody engine.
package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// requireAdmin is the single authorization guard for registry operations.
func requireAdmin(actor *model.User) error {
	if actor == nil || !actor.IsAdmin() {
		return model.ErrNotAuthorized
	}
	return nil
}

// CreateCategory creates a category.
func CreateCategory(ctx context.Context, db *sql.DB, actor *model.User, name string) (*model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := store.CreateCategory(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if err := store.LogAdminAction(ctx, db, actor.ID, "create_category", fmt.Sprintf("category %d %q", category.ID, category.Name)); err != nil {
		return nil, err
	}
	return category, nil
}

// RenameCategory changes a category's name.
func RenameCategory(ctx context.Context, db *sql.DB, actor *model.User, id int64, name string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := store.RenameCategory(ctx, db, id, name); err != nil {
		return err
	}
	return store.LogAdminAction(ctx, db, actor.ID, "rename_category", fmt.Sprintf("category %d to %q", id, name))
}

// DeleteCategory soft-deletes a category; blocked while it has non-archived
// items.
func DeleteCategory(ctx context.Context, db *sql.DB, actor *model.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := store.DeleteCategory(ctx, db, id); err != nil {
		return err
	}
	return store.LogAdminAction(ctx, db, actor.ID, "delete_category", fmt.Sprintf("category %d", id))
}

// CreateItem creates an item under a category.
func CreateItem(ctx context.Context, db *sql.DB, actor *model.User, categoryID int64, label string) (*model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	item, err := store.CreateItem(ctx, db, categoryID, label)
	if err != nil {
		return nil, err
	}
	if err := store.LogAdminAction(ctx, db, actor.ID, "create_item", fmt.Sprintf("item %d %q", item.ID, item.Label)); err != nil {
		return nil, err
	}
	return item, nil
}

// RenameItem changes an item's label.
func RenameItem(ctx context.Context, db *sql.DB, actor *model.User, id int64, label string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := store.RenameItem(ctx, db, id, label); err != nil {
		return err
	}
	return store.LogAdminAction(ctx, db, actor.ID, "rename_item", fmt.Sprintf("item %d to %q", id, label))
}

// SetItemCode sets or clears an item's inventory code.
func SetItemCode(ctx context.Context, db *sql.DB, actor *model.User, id int64, code string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := store.UpdateItemCode(ctx, db, id, code); err != nil {
		return err
	}
	return store.LogAdminAction(ctx, db, actor.ID, "set_item_code", fmt.Sprintf("item %d to %q", id, code))
}

// ArchiveItem soft-deletes an item. Held items cannot be archived.
func ArchiveItem(ctx context.Context, db *sql.DB, actor *model.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := store.ArchiveItem(ctx, db, id); err != nil {
		return err
	}
	return store.LogAdminAction(ctx, db, actor.ID, "archive_item", fmt.Sprintf("item %d", id))
}

// SetUserRole promotes or demotes a member. Only admins may change roles.
func SetUserRole(ctx context.Context, db *sql.DB, actor *model.User, userID int64, role string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := store.SetUserRole(ctx, db, userID, role); err != nil {
		return err
	}
	return store.LogAdminAction(ctx, db, actor.ID, "set_user_role", fmt.Sprintf("user %d to %s", userID, role))
}

// MarkLost marks an available or held item as lost. Marking a held item
// force-clears the holder; the ledger entry is attributed to the former
// holder so their custody span is closed on record.
func MarkLost(ctx context.Context, db *sql.DB, actor *model.User, itemID int64, note string) (*model.HistoryRecord, error) {
	return setStatus(ctx, db, actor, itemID, model.ItemStatusLost, model.ActionMarkLost, note)
}

// MarkMaintenance marks an available or held item as under maintenance,
// force-clearing the holder like MarkLost.
func MarkMaintenance(ctx context.Context, db *sql.DB, actor *model.User, itemID int64, note string) (*model.HistoryRecord, error) {
	return setStatus(ctx, db, actor, itemID, model.ItemStatusMaintenance, model.ActionMarkMaintenance, note)
}

// Restore returns a lost or maintenance item to circulation.
func Restore(ctx context.Context, db *sql.DB, actor *model.User, itemID int64, note string) (*model.HistoryRecord, error) {
	return setStatus(ctx, db, actor, itemID, model.ItemStatusAvailable, model.ActionRestore, note)
}

// legalFrom lists the statuses a target status may be reached from.
var legalFrom = map[string][]string{
	model.ItemStatusLost:        {model.ItemStatusAvailable, model.ItemStatusHeld},
	model.ItemStatusMaintenance: {model.ItemStatusAvailable, model.ItemStatusHeld},
	model.ItemStatusAvailable:   {model.ItemStatusLost, model.ItemStatusMaintenance},
}

// setStatus applies an admin status transition and appends the matching
// ledger entry in the same transaction. Anything not covered by legalFrom
// (notably any transition into held) fails with ErrIllegalTransition.
func setStatus(ctx context.Context, db *sql.DB, actor *model.User, itemID int64, target, action, note string) (*model.HistoryRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	var holderID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT status, holder_id FROM items WHERE id = ? AND deleted_at IS NULL`, itemID,
	).Scan(&status, &holderID)
	if err == sql.ErrNoRows {
		return nil, model.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading item status: %w", err)
	}

	if !transitionAllowed(status, target) {
		return nil, model.ErrIllegalTransition
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = ?, holder_id = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		target, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}

	// A mark on a held item is the return-equivalent entry for the former
	// holder; everything else is attributed to the acting admin.
	subject := actor.ID
	if holderID.Valid {
		subject = holderID.Int64
	}

	var n any
	if note != "" {
		n = note
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO history (item_id, user_id, action, note) VALUES (?, ?, ?, ?)`,
		itemID, subject, action, n,
	)
	if err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}

	recordID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting history id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO admin_log (actor_id, action, detail) VALUES (?, ?, ?)`,
		actor.ID, action, fmt.Sprintf("item %d", itemID),
	)
	if err != nil {
		return nil, fmt.Errorf("logging admin action: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status change: %w", err)
	}

	return store.GetHistoryRecord(ctx, db, recordID)
}

func transitionAllowed(from, to string) bool {
	for _, s := range legalFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}
