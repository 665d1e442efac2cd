package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/registry"
	"github.com/erazemk/izposoja/internal/store"
)

// Admin sub-actions, chosen at the first step of a management flow.
const (
	actionCreate      = "create"
	actionRename      = "rename"
	actionCode        = "code"
	actionDelete      = "delete"
	actionArchive     = "archive"
	actionLost        = "lost"
	actionMaintenance = "maintenance"
	actionRestore     = "restore"
)

// ── Category management ─────────────────────────────────────────────────────

func (e *Engine) startAdminCategory(ctx context.Context, user *model.User, sess *session) Prompt {
	if p, ok := e.requireAdminFlow(user, sess); !ok {
		return p
	}

	categories, err := store.ListCategories(ctx, e.DB)
	if err != nil {
		return e.transientFailure(err)
	}

	var b strings.Builder
	if len(categories) == 0 {
		b.WriteString("No categories yet.\n")
	} else {
		fmt.Fprintf(&b, "%d categories:\n", len(categories))
		for _, c := range categories {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}
	b.WriteString("\nSend 'create', 'rename' or 'delete'.")

	sess.flow = FlowAdminCategory
	sess.step = stepAwaitAction
	return Prompt{Text: b.String()}
}

func (e *Engine) advanceAdminCategory(ctx context.Context, user *model.User, sess *session, ev Event) Prompt {
	switch sess.step {
	case stepAwaitAction:
		if ev.Kind != KindText {
			return Prompt{Text: "Send 'create', 'rename' or 'delete'."}
		}
		switch ev.Text {
		case actionCreate:
			sess.action = actionCreate
			sess.step = stepAwaitName
			return Prompt{Text: "Send the new category's name."}
		case actionRename, actionDelete:
			categories, err := store.ListCategories(ctx, e.DB)
			if err != nil {
				return e.transientFailure(err)
			}
			if len(categories) == 0 {
				sess.reset()
				return Prompt{Text: "There are no categories to manage."}
			}
			sess.action = ev.Text
			sess.step = stepAwaitCategory
			return Prompt{Text: "Pick a category:", Choices: categoryChoices(categories)}
		default:
			return Prompt{Text: "Send 'create', 'rename' or 'delete'."}
		}

	case stepAwaitCategory:
		if ev.Kind != KindSelect {
			return Prompt{Text: "Please pick a category from the list."}
		}
		category, err := store.GetCategory(ctx, e.DB, ev.SelectID)
		if err != nil {
			return e.transientFailure(err)
		}
		if category == nil || category.DeletedAt != nil {
			return e.failure(sess, model.ErrCategoryNotFound)
		}
		sess.categoryID = category.ID
		if sess.action == actionRename {
			sess.step = stepAwaitName
			return Prompt{Text: fmt.Sprintf("Send the new name for %s.", category.Name)}
		}
		sess.step = stepConfirm
		return Prompt{Text: fmt.Sprintf("Delete %s? Send 'confirm' or the cancel command.", category.Name)}

	case stepAwaitName:
		if ev.Kind != KindText || strings.TrimSpace(ev.Text) == "" {
			return Prompt{Text: "Please send a name."}
		}
		name := strings.TrimSpace(ev.Text)

		if sess.action == actionCreate {
			category, err := registry.CreateCategory(ctx, e.DB, user, name)
			if err != nil {
				return e.failure(sess, err)
			}
			sess.reset()
			e.Sessions.remove(user.ID)
			return Prompt{Text: fmt.Sprintf("Category %s created.", category.Name)}
		}

		if err := registry.RenameCategory(ctx, e.DB, user, sess.categoryID, name); err != nil {
			return e.failure(sess, err)
		}
		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: fmt.Sprintf("Category renamed to %s.", name)}

	case stepConfirm:
		if ev.Kind != KindText || ev.Text != "confirm" {
			return Prompt{Text: "Send 'confirm' to delete, or the cancel command to abort."}
		}
		if err := registry.DeleteCategory(ctx, e.DB, user, sess.categoryID); err != nil {
			return e.failure(sess, err)
		}
		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: "Category deleted."}
	}

	return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
}

// ── Item management ─────────────────────────────────────────────────────────

func (e *Engine) startAdminItem(ctx context.Context, user *model.User, sess *session) Prompt {
	if p, ok := e.requireAdminFlow(user, sess); !ok {
		return p
	}

	sess.flow = FlowAdminItem
	sess.step = stepAwaitAction
	return Prompt{Text: "Send 'create', 'rename', 'code', 'archive', 'lost', 'maintenance' or 'restore'."}
}

func (e *Engine) advanceAdminItem(ctx context.Context, user *model.User, sess *session, ev Event) Prompt {
	switch sess.step {
	case stepAwaitAction:
		if ev.Kind != KindText {
			return Prompt{Text: "Send 'create', 'rename', 'code', 'archive', 'lost', 'maintenance' or 'restore'."}
		}
		switch ev.Text {
		case actionCreate:
			categories, err := store.ListCategories(ctx, e.DB)
			if err != nil {
				return e.transientFailure(err)
			}
			if len(categories) == 0 {
				sess.reset()
				return Prompt{Text: "Create a category first."}
			}
			sess.action = actionCreate
			sess.step = stepAwaitCategory
			return Prompt{Text: "Pick a category for the new item:", Choices: categoryChoices(categories)}
		case actionRename, actionCode, actionArchive, actionLost, actionMaintenance, actionRestore:
			items, err := store.ListItems(ctx, e.DB, 0, "")
			if err != nil {
				return e.transientFailure(err)
			}
			if len(items) == 0 {
				sess.reset()
				return Prompt{Text: "There are no items to manage."}
			}
			sess.action = ev.Text
			sess.step = stepAwaitItem
			return Prompt{Text: "Pick an item:", Choices: itemChoices(items)}
		default:
			return Prompt{Text: "Send 'create', 'rename', 'code', 'archive', 'lost', 'maintenance' or 'restore'."}
		}

	case stepAwaitCategory:
		if ev.Kind != KindSelect {
			return Prompt{Text: "Please pick a category from the list."}
		}
		category, err := store.GetCategory(ctx, e.DB, ev.SelectID)
		if err != nil {
			return e.transientFailure(err)
		}
		if category == nil || category.DeletedAt != nil {
			return e.failure(sess, model.ErrCategoryNotFound)
		}
		sess.categoryID = category.ID
		sess.step = stepAwaitName
		return Prompt{Text: "Send the new item's label."}

	case stepAwaitItem:
		if ev.Kind != KindSelect {
			return Prompt{Text: "Please pick an item from the list."}
		}
		item, err := store.GetItem(ctx, e.DB, ev.SelectID)
		if err != nil {
			return e.transientFailure(err)
		}
		if item == nil || item.DeletedAt != nil {
			return e.failure(sess, model.ErrItemNotFound)
		}
		sess.itemID = item.ID
		if sess.action == actionRename {
			sess.step = stepAwaitName
			return Prompt{Text: fmt.Sprintf("Send the new label for %s.", item.Label)}
		}
		if sess.action == actionCode {
			sess.step = stepAwaitName
			return Prompt{Text: fmt.Sprintf("Send the inventory code for %s, or 'clear' to remove it.", item.Label)}
		}
		sess.step = stepConfirm
		return Prompt{Text: fmt.Sprintf("Apply '%s' to %s? Send 'confirm' or the cancel command.", sess.action, item.Label)}

	case stepAwaitName:
		if ev.Kind != KindText || strings.TrimSpace(ev.Text) == "" {
			return Prompt{Text: "Please send a label."}
		}
		label := strings.TrimSpace(ev.Text)

		if sess.action == actionCode {
			code := label
			if code == "clear" {
				code = ""
			}
			if err := registry.SetItemCode(ctx, e.DB, user, sess.itemID, code); err != nil {
				return e.failure(sess, err)
			}
			sess.reset()
			e.Sessions.remove(user.ID)
			if code == "" {
				return Prompt{Text: "Inventory code cleared."}
			}
			return Prompt{Text: fmt.Sprintf("Inventory code set to %s.", code)}
		}

		if sess.action == actionCreate {
			item, err := registry.CreateItem(ctx, e.DB, user, sess.categoryID, label)
			if err != nil {
				return e.failure(sess, err)
			}
			sess.reset()
			e.Sessions.remove(user.ID)
			return Prompt{Text: fmt.Sprintf("Item %s created and available.", item.Label)}
		}

		if err := registry.RenameItem(ctx, e.DB, user, sess.itemID, label); err != nil {
			return e.failure(sess, err)
		}
		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: fmt.Sprintf("Item renamed to %s.", label)}

	case stepConfirm:
		if ev.Kind != KindText || ev.Text != "confirm" {
			return Prompt{Text: "Send 'confirm' to apply, or the cancel command to abort."}
		}

		var err error
		switch sess.action {
		case actionArchive:
			err = registry.ArchiveItem(ctx, e.DB, user, sess.itemID)
		case actionLost:
			_, err = registry.MarkLost(ctx, e.DB, user, sess.itemID, "")
		case actionMaintenance:
			_, err = registry.MarkMaintenance(ctx, e.DB, user, sess.itemID, "")
		case actionRestore:
			_, err = registry.Restore(ctx, e.DB, user, sess.itemID, "")
		}
		if err != nil {
			return e.failure(sess, err)
		}
		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: "Done."}
	}

	return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
}

// ── Member role management ──────────────────────────────────────────────────

func (e *Engine) startAdminUser(ctx context.Context, user *model.User, sess *session) Prompt {
	if p, ok := e.requireAdminFlow(user, sess); !ok {
		return p
	}

	users, err := store.ListUsers(ctx, e.DB)
	if err != nil {
		return e.transientFailure(err)
	}

	choices := make([]Choice, 0, len(users))
	for _, u := range users {
		choices = append(choices, Choice{ID: u.ID, Label: fmt.Sprintf("%s (%s)", u.DisplayName, u.Role)})
	}

	sess.flow = FlowAdminUser
	sess.step = stepAwaitUser
	return Prompt{Text: "Pick a member to toggle their admin role:", Choices: choices}
}

func (e *Engine) advanceAdminUser(ctx context.Context, user *model.User, sess *session, ev Event) Prompt {
	switch sess.step {
	case stepAwaitUser:
		if ev.Kind != KindSelect {
			return Prompt{Text: "Please pick a member from the list."}
		}
		target, err := store.GetUser(ctx, e.DB, ev.SelectID)
		if err != nil {
			return e.transientFailure(err)
		}
		if target == nil {
			return Prompt{Text: "That member does not exist. Pick one from the list."}
		}

		sess.targetID = target.ID
		sess.step = stepConfirm
		if target.IsAdmin() {
			return Prompt{Text: fmt.Sprintf("Demote %s to member? Send 'confirm' or the cancel command.", target.DisplayName)}
		}
		return Prompt{Text: fmt.Sprintf("Make %s an admin? Send 'confirm' or the cancel command.", target.DisplayName)}

	case stepConfirm:
		if ev.Kind != KindText || ev.Text != "confirm" {
			return Prompt{Text: "Send 'confirm' to apply, or the cancel command to abort."}
		}

		target, err := store.GetUser(ctx, e.DB, sess.targetID)
		if err != nil {
			return e.transientFailure(err)
		}
		if target == nil {
			sess.reset()
			return Prompt{Text: "That member no longer exists."}
		}

		role := model.RoleAdmin
		if target.IsAdmin() {
			role = model.RoleMember
		}
		if err := registry.SetUserRole(ctx, e.DB, user, target.ID, role); err != nil {
			return e.failure(sess, err)
		}

		sess.reset()
		e.Sessions.remove(user.ID)
		if role == model.RoleAdmin {
			return Prompt{Text: fmt.Sprintf("%s is now an admin.", target.DisplayName)}
		}
		return Prompt{Text: fmt.Sprintf("%s is now a regular member.", target.DisplayName)}
	}

	return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
}

// ── Item search ─────────────────────────────────────────────────────────────

func (e *Engine) startAdminSearch(user *model.User, sess *session) Prompt {
	if p, ok := e.requireAdminFlow(user, sess); !ok {
		return p
	}

	sess.flow = FlowAdminSearch
	sess.step = stepAwaitQuery
	return Prompt{Text: "Send a search query."}
}

func (e *Engine) advanceAdminSearch(ctx context.Context, user *model.User, sess *session, ev Event) Prompt {
	if sess.step != stepAwaitQuery {
		return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
	}
	if ev.Kind != KindText || strings.TrimSpace(ev.Text) == "" {
		return Prompt{Text: "Send a search query."}
	}

	items, err := store.SearchItems(ctx, e.DB, strings.TrimSpace(ev.Text))
	if err != nil {
		return e.transientFailure(err)
	}

	sess.reset()
	e.Sessions.remove(user.ID)

	if len(items) == 0 {
		return Prompt{Text: "No items matched."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es):\n", len(items))
	for _, item := range items {
		line := fmt.Sprintf("- %s (%s, %s", item.Label, item.CategoryName, item.Status)
		if item.HolderName != "" {
			line += ", held by " + item.HolderName
		}
		b.WriteString(line + ")\n")
	}
	return Prompt{Text: strings.TrimRight(b.String(), "\n")}
}
