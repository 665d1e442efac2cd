package dialog

import (
	"context"
	"fmt"

	"github.com/erazemk/izposoja/internal/custody"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// startTake begins the take flow by offering the category list.
func (e *Engine) startTake(ctx context.Context, sess *session) Prompt {
	categories, err := store.ListCategories(ctx, e.DB)
	if err != nil {
		return e.transientFailure(err)
	}
	if len(categories) == 0 {
		return Prompt{Text: "There are no categories yet. Ask an admin to set up the inventory."}
	}

	sess.flow = FlowTake
	sess.step = stepAwaitCategory
	return Prompt{Text: "Pick a category:", Choices: categoryChoices(categories)}
}

// advanceTake moves the take flow one step. Invalid input re-prompts the same
// step; nothing is mutated before the terminal confirm.
func (e *Engine) advanceTake(ctx context.Context, user *model.User, sess *session, ev Event) Prompt {
	switch sess.step {
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

		items, err := store.ListItems(ctx, e.DB, category.ID, model.ItemStatusAvailable)
		if err != nil {
			return e.transientFailure(err)
		}
		if len(items) == 0 {
			return Prompt{Text: fmt.Sprintf("Nothing is available in %s right now. Pick another category.", category.Name)}
		}

		sess.categoryID = category.ID
		sess.step = stepAwaitItem
		return Prompt{Text: "Pick an item:", Choices: itemChoices(items)}

	case stepAwaitItem:
		if ev.Kind != KindSelect {
			return Prompt{Text: "Please pick an item from the list."}
		}
		item, err := store.GetItem(ctx, e.DB, ev.SelectID)
		if err != nil {
			return e.transientFailure(err)
		}
		if item == nil || item.DeletedAt != nil || item.CategoryID != sess.categoryID {
			return e.failure(sess, model.ErrItemNotFound)
		}
		if item.Status != model.ItemStatusAvailable {
			// Not a race yet: the flow hasn't committed anything, so just
			// steer the user back to the list.
			return Prompt{Text: fmt.Sprintf("%s is not available. Pick another item.", item.Label)}
		}

		sess.itemID = item.ID
		sess.step = stepAwaitPhoto
		return Prompt{Text: fmt.Sprintf("Send a photo of %s to confirm pickup.", item.Label)}

	case stepAwaitPhoto:
		if ev.Kind != KindPhoto || ev.PhotoID == "" {
			return Prompt{Text: "Please send a photo (not text)."}
		}
		ok, err := store.PhotoExists(ctx, e.DB, ev.PhotoID)
		if err != nil {
			return e.transientFailure(err)
		}
		if !ok {
			return Prompt{Text: "That photo was not received properly. Please send it again."}
		}

		sess.photoID = ev.PhotoID
		sess.step = stepConfirm
		return Prompt{Text: "Confirm taking the item? Send 'confirm' or the cancel command."}

	case stepConfirm:
		if ev.Kind != KindText || ev.Text != "confirm" {
			return Prompt{Text: "Send 'confirm' to finish, or the cancel command to abort."}
		}

		record, err := custody.Take(ctx, e.DB, sess.itemID, user.ID, sess.photoID)
		if err != nil {
			return e.failure(sess, err)
		}

		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: fmt.Sprintf("%s is now checked out to you. Don't forget to return it.", record.ItemLabel)}
	}

	return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
}
