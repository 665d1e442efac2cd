package registry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/erazemk/izposoja/internal/custody"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

func setup(t *testing.T) (*sql.DB, *model.User, *model.User) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, err := store.UpsertUser(ctx, database, "ext-admin", "Admin", true)
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	member, err := store.UpsertUser(ctx, database, "ext-member", "Member", false)
	if err != nil {
		t.Fatalf("creating member: %v", err)
	}
	return database, admin, member
}

func TestNonAdminRejected(t *testing.T) {
	database, _, member := setup(t)
	ctx := context.Background()

	if _, err := CreateCategory(ctx, database, member, "Audio"); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("CreateCategory: expected ErrNotAuthorized, got %v", err)
	}
	if err := DeleteCategory(ctx, database, member, 1); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("DeleteCategory: expected ErrNotAuthorized, got %v", err)
	}
	if _, err := CreateItem(ctx, database, member, 1, "Speaker"); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("CreateItem: expected ErrNotAuthorized, got %v", err)
	}
	if _, err := MarkLost(ctx, database, member, 1, ""); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("MarkLost: expected ErrNotAuthorized, got %v", err)
	}
	if err := SetUserRole(ctx, database, member, member.ID, model.RoleAdmin); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("SetUserRole: expected ErrNotAuthorized, got %v", err)
	}
	if _, err := CreateCategory(ctx, database, nil, "Audio"); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("nil actor: expected ErrNotAuthorized, got %v", err)
	}
}

func TestMarkLostAndRestore(t *testing.T) {
	database, admin, _ := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")

	record, err := MarkLost(ctx, database, admin, item.ID, "vanished after the event")
	if err != nil {
		t.Fatalf("MarkLost: %v", err)
	}
	if record.Action != model.ActionMarkLost {
		t.Errorf("expected mark_lost entry, got %q", record.Action)
	}
	if record.UserID != admin.ID {
		t.Errorf("expected entry attributed to the admin, got user %d", record.UserID)
	}
	if record.Note != "vanished after the event" {
		t.Errorf("expected note on the entry, got %q", record.Note)
	}

	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusLost {
		t.Errorf("expected lost, got %q", got.Status)
	}

	// Lost items cannot be taken.
	photoID, _ := store.SavePhoto(ctx, database, []byte("x"), "image/jpeg")
	if _, err := custody.Take(ctx, database, item.ID, admin.ID, photoID); !errors.Is(err, model.ErrItemUnavailable) {
		t.Errorf("expected ErrItemUnavailable for lost item, got %v", err)
	}

	record, err = Restore(ctx, database, admin, item.ID, "")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if record.Action != model.ActionRestore {
		t.Errorf("expected restore entry, got %q", record.Action)
	}

	got, _ = store.GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected available after restore, got %q", got.Status)
	}
}

func TestMarkHeldItemClearsHolder(t *testing.T) {
	database, admin, member := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")
	photoID, _ := store.SavePhoto(ctx, database, []byte("x"), "image/jpeg")

	if _, err := custody.Take(ctx, database, item.ID, member.ID, photoID); err != nil {
		t.Fatalf("Take: %v", err)
	}

	record, err := MarkMaintenance(ctx, database, admin, item.ID, "")
	if err != nil {
		t.Fatalf("MarkMaintenance: %v", err)
	}

	// The entry closes the holder's custody span, so it is attributed to
	// the former holder rather than the acting admin.
	if record.UserID != member.ID {
		t.Errorf("expected entry attributed to former holder, got user %d", record.UserID)
	}

	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusMaintenance {
		t.Errorf("expected maintenance, got %q", got.Status)
	}
	if got.HolderID != nil {
		t.Errorf("expected holder cleared, got %v", *got.HolderID)
	}

	// The former holder cannot return what was taken off them.
	if _, err := custody.Return(ctx, database, item.ID, member.ID, photoID, ""); !errors.Is(err, model.ErrNotHolder) {
		t.Errorf("expected ErrNotHolder after force-clear, got %v", err)
	}
}

func TestIllegalTransitions(t *testing.T) {
	database, admin, _ := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")

	// Restoring an available item makes no sense.
	if _, err := Restore(ctx, database, admin, item.ID, ""); !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for restore of available item, got %v", err)
	}

	// Lost → maintenance must go through restore first.
	MarkLost(ctx, database, admin, item.ID, "")
	if _, err := MarkMaintenance(ctx, database, admin, item.ID, ""); !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for lost→maintenance, got %v", err)
	}

	// Marking a lost item lost again is a no-op request, also illegal.
	if _, err := MarkLost(ctx, database, admin, item.ID, ""); !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for lost→lost, got %v", err)
	}

	if _, err := MarkLost(ctx, database, admin, 9999, ""); !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestArchiveHeldItemBlocked(t *testing.T) {
	database, admin, member := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")
	photoID, _ := store.SavePhoto(ctx, database, []byte("x"), "image/jpeg")
	custody.Take(ctx, database, item.ID, member.ID, photoID)

	if err := ArchiveItem(ctx, database, admin, item.ID); !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for archiving held item, got %v", err)
	}

	custody.Return(ctx, database, item.ID, member.ID, photoID, "")
	if err := ArchiveItem(ctx, database, admin, item.ID); err != nil {
		t.Errorf("expected archive after return to succeed, got %v", err)
	}
}

func TestSetUserRoleByAdmin(t *testing.T) {
	database, admin, member := setup(t)
	ctx := context.Background()

	if err := SetUserRole(ctx, database, admin, member.ID, model.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	got, _ := store.GetUser(ctx, database, member.ID)
	if !got.IsAdmin() {
		t.Errorf("expected promoted member, got %q", got.Role)
	}
}

func TestSetItemCode(t *testing.T) {
	database, admin, member := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")

	if err := SetItemCode(ctx, database, member, item.ID, "INV-001"); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for member, got %v", err)
	}

	if err := SetItemCode(ctx, database, admin, item.ID, "INV-001"); err != nil {
		t.Fatalf("SetItemCode: %v", err)
	}
	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Code != "INV-001" {
		t.Errorf("expected code 'INV-001', got %q", got.Code)
	}

	if err := SetItemCode(ctx, database, admin, item.ID, ""); err != nil {
		t.Fatalf("SetItemCode clear: %v", err)
	}
	got, _ = store.GetItem(ctx, database, item.ID)
	if got.Code != "" {
		t.Errorf("expected cleared code, got %q", got.Code)
	}

	if err := SetItemCode(ctx, database, admin, 9999, "INV-002"); !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestAdminActionsLogged(t *testing.T) {
	database, admin, member := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")
	RenameItem(ctx, database, admin, item.ID, "Big Speaker")
	SetUserRole(ctx, database, admin, member.ID, model.RoleAdmin)
	if _, err := MarkLost(ctx, database, admin, item.ID, ""); err != nil {
		t.Fatalf("MarkLost: %v", err)
	}

	entries, err := store.ListAdminLog(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListAdminLog: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 audit entries, got %d", len(entries))
	}

	// Newest first, one per mutation, all attributed to the acting admin.
	want := []string{"mark_lost", "set_user_role", "rename_item", "create_item", "create_category"}
	for i, action := range want {
		if entries[i].Action != action {
			t.Errorf("entry %d: expected action %q, got %q", i, action, entries[i].Action)
		}
		if entries[i].ActorID != admin.ID {
			t.Errorf("entry %d: expected actor %d, got %d", i, admin.ID, entries[i].ActorID)
		}
	}
}

func TestStatusChangeAuditInSameTransaction(t *testing.T) {
	database, admin, _ := setup(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, admin, "Audio")
	item, _ := CreateItem(ctx, database, admin, category.ID, "Speaker")

	before, _ := store.ListAdminLog(ctx, database, 0)

	// A rejected transition must leave no audit trace.
	if _, err := Restore(ctx, database, admin, item.ID, ""); !errors.Is(err, model.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	after, _ := store.ListAdminLog(ctx, database, 0)
	if len(after) != len(before) {
		t.Errorf("expected no audit entry for rejected transition, got %d new", len(after)-len(before))
	}

	if _, err := MarkLost(ctx, database, admin, item.ID, ""); err != nil {
		t.Fatalf("MarkLost: %v", err)
	}
	after, _ = store.ListAdminLog(ctx, database, 0)
	if len(after) != len(before)+1 {
		t.Fatalf("expected exactly one new audit entry, got %d", len(after)-len(before))
	}
	if after[0].Action != "mark_lost" {
		t.Errorf("expected mark_lost entry, got %q", after[0].Action)
	}
}
