package dialog

import (
	"context"
	"fmt"

	"github.com/erazemk/izposoja/internal/custody"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// startReturn begins the return flow with the list of items the user holds.
func (e *Engine) startReturn(ctx context.Context, user *model.User, sess *session) Prompt {
	items, err := store.ListItemsForHolder(ctx, e.DB, user.ID)
	if err != nil {
		return e.transientFailure(err)
	}
	if len(items) == 0 {
		return Prompt{Text: "You are not holding any equipment."}
	}

	sess.flow = FlowReturn
	sess.step = stepAwaitItem
	return Prompt{Text: "Which item are you returning?", Choices: itemChoices(items)}
}

// advanceReturn moves the return flow one step.
func (e *Engine) advanceReturn(ctx context.Context, user *model.User, sess *session, ev Event) Prompt {
	switch sess.step {
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
		if item.HolderID == nil || *item.HolderID != user.ID {
			return Prompt{Text: fmt.Sprintf("You are not holding %s. Pick an item from the list.", item.Label)}
		}

		sess.itemID = item.ID
		sess.step = stepAwaitPhoto
		return Prompt{Text: fmt.Sprintf("Send a photo of %s to confirm its condition.", item.Label)}

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
		sess.step = stepAwaitNote
		return Prompt{Text: "Add a condition note, or send 'skip'."}

	case stepAwaitNote:
		if ev.Kind != KindText {
			return Prompt{Text: "Send a short condition note, or 'skip'."}
		}
		if ev.Text != "skip" {
			sess.note = ev.Text
		}
		sess.step = stepConfirm
		return Prompt{Text: "Confirm the return? Send 'confirm' or the cancel command."}

	case stepConfirm:
		if ev.Kind != KindText || ev.Text != "confirm" {
			return Prompt{Text: "Send 'confirm' to finish, or the cancel command to abort."}
		}

		record, err := custody.Return(ctx, e.DB, sess.itemID, user.ID, sess.photoID, sess.note)
		if err != nil {
			return e.failure(sess, err)
		}

		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: fmt.Sprintf("%s has been returned. Thank you!", record.ItemLabel)}
	}

	return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
}
