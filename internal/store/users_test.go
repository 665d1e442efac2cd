package store

import (
	"context"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestUpsertUserFirstContact(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := UpsertUser(ctx, database, "ext-1", "Alice", false)
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if user.ExternalID != "ext-1" || user.DisplayName != "Alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Role != model.RoleMember {
		t.Errorf("expected member role, got %q", user.Role)
	}
}

func TestUpsertUserRefreshesDisplayName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := UpsertUser(ctx, database, "ext-1", "Alice", false)
	second, err := UpsertUser(ctx, database, "ext-1", "Alice B.", false)
	if err != nil {
		t.Fatalf("UpsertUser (second): %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same user row, got %d and %d", first.ID, second.ID)
	}
	if second.DisplayName != "Alice B." {
		t.Errorf("expected refreshed display name, got %q", second.DisplayName)
	}
}

func TestUpsertUserPromotesNeverDemotes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := UpsertUser(ctx, database, "ext-1", "Alice", true)
	if user.Role != model.RoleAdmin {
		t.Fatalf("expected admin after promoted upsert, got %q", user.Role)
	}

	// A later upsert without the admin hint must not demote.
	user, _ = UpsertUser(ctx, database, "ext-1", "Alice", false)
	if user.Role != model.RoleAdmin {
		t.Errorf("expected admin to survive plain upsert, got %q", user.Role)
	}
}

func TestSetUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := UpsertUser(ctx, database, "ext-1", "Alice", false)

	if err := SetUserRole(ctx, database, user.ID, model.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	got, _ := GetUser(ctx, database, user.ID)
	if !got.IsAdmin() {
		t.Errorf("expected admin after promotion, got %q", got.Role)
	}

	if err := SetUserRole(ctx, database, user.ID, model.RoleMember); err != nil {
		t.Fatalf("SetUserRole (demote): %v", err)
	}
	got, _ = GetUser(ctx, database, user.ID)
	if got.IsAdmin() {
		t.Errorf("expected member after demotion, got %q", got.Role)
	}

	if err := SetUserRole(ctx, database, 9999, model.RoleAdmin); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	UpsertUser(ctx, database, "ext-1", "Alice", false)
	UpsertUser(ctx, database, "ext-2", "Bob", true)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].DisplayName != "Alice" || users[1].DisplayName != "Bob" {
		t.Errorf("expected ID ordering, got %+v", users)
	}
}

func TestGetUserByExternalID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	UpsertUser(ctx, database, "ext-1", "Alice", false)

	user, err := GetUserByExternalID(ctx, database, "ext-1")
	if err != nil {
		t.Fatalf("GetUserByExternalID: %v", err)
	}
	if user == nil || user.DisplayName != "Alice" {
		t.Errorf("expected Alice, got %+v", user)
	}

	missing, err := GetUserByExternalID(ctx, database, "ext-404")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown external ID, got %+v, %v", missing, err)
	}
}
