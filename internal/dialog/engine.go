// Package dialog drives the multi-step conversations: taking and returning
// equipment, and the admin management flows. Each user has one session;
// events for one user are handled strictly in arrival order, and no flow
// mutates anything before its terminal step.
package dialog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// DefaultSessionTTL is how long an idle mid-flow session survives.
const DefaultSessionTTL = 10 * time.Minute

// Engine advances user sessions in response to gateway events.
type Engine struct {
	DB       *sql.DB
	Sessions *Sessions
}

// New creates a conversation engine with the given session idle TTL.
func New(db *sql.DB, ttl time.Duration) *Engine {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Engine{DB: db, Sessions: NewSessions(ttl)}
}

// HandleEvent advances the user's session and returns the reply prompt.
// Every domain error is converted into a prompt here; the gateway never sees
// them.
func (e *Engine) HandleEvent(ctx context.Context, user *model.User, ev Event) Prompt {
	sess := e.Sessions.acquire(user.ID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.expired(e.Sessions.ttl, time.Now()) {
		if ev.Kind != KindCommand {
			return e.failure(sess, model.ErrSessionExpired)
		}
		sess.reset()
	}
	sess.updatedAt = time.Now()

	if ev.Kind == KindCommand {
		return e.handleCommand(ctx, user, sess, strings.ToLower(strings.TrimSpace(ev.Text)))
	}

	switch sess.flow {
	case FlowTake:
		return e.advanceTake(ctx, user, sess, ev)
	case FlowReturn:
		return e.advanceReturn(ctx, user, sess, ev)
	case FlowAdminCategory:
		return e.advanceAdminCategory(ctx, user, sess, ev)
	case FlowAdminItem:
		return e.advanceAdminItem(ctx, user, sess, ev)
	case FlowAdminUser:
		return e.advanceAdminUser(ctx, user, sess, ev)
	case FlowAdminSearch:
		return e.advanceAdminSearch(ctx, user, sess, ev)
	default:
		return Prompt{Text: "No active flow. Send 'menu' to see what you can do."}
	}
}

// handleCommand starts flows and answers one-shot commands. Starting a new
// flow while another is active overwrites it; in-progress selections are
// discarded.
func (e *Engine) handleCommand(ctx context.Context, user *model.User, sess *session, cmd string) Prompt {
	switch cmd {
	case "menu", "start":
		sess.reset()
		return e.menuPrompt(user)

	case "cancel":
		sess.reset()
		e.Sessions.remove(user.ID)
		return Prompt{Text: "Cancelled."}

	case "take":
		sess.reset()
		return e.startTake(ctx, sess)

	case "return":
		sess.reset()
		return e.startReturn(ctx, user, sess)

	case "mine":
		sess.reset()
		return e.myItemsPrompt(ctx, user)

	case "categories":
		sess.reset()
		return e.startAdminCategory(ctx, user, sess)

	case "items":
		sess.reset()
		return e.startAdminItem(ctx, user, sess)

	case "users":
		sess.reset()
		return e.startAdminUser(ctx, user, sess)

	case "search":
		sess.reset()
		return e.startAdminSearch(user, sess)

	default:
		return Prompt{Text: fmt.Sprintf("Unknown command %q. Send 'menu' for help.", cmd)}
	}
}

// menuPrompt lists the commands available to the user.
func (e *Engine) menuPrompt(user *model.User) Prompt {
	text := "What would you like to do?\n" +
		"take — check out equipment\n" +
		"return — return equipment you hold\n" +
		"mine — list equipment you hold\n" +
		"cancel — abort the current flow"
	if user.IsAdmin() {
		text += "\n\nAdmin:\n" +
			"categories — manage categories\n" +
			"items — manage items\n" +
			"users — manage member roles\n" +
			"search — find items by label"
	}
	return Prompt{Text: text}
}

// myItemsPrompt lists the equipment the user currently holds.
func (e *Engine) myItemsPrompt(ctx context.Context, user *model.User) Prompt {
	items, err := store.ListItemsForHolder(ctx, e.DB, user.ID)
	if err != nil {
		return e.transientFailure(err)
	}
	if len(items) == 0 {
		return Prompt{Text: "You are not holding any equipment."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You hold %d item(s):\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s)\n", item.Label, item.CategoryName)
	}
	return Prompt{Text: strings.TrimRight(b.String(), "\n")}
}

// requireAdminFlow gates admin flow entry. The terminal registry calls check
// again, so a stale role cannot slip a mutation through.
func (e *Engine) requireAdminFlow(user *model.User, sess *session) (Prompt, bool) {
	if user.IsAdmin() {
		return Prompt{}, true
	}
	sess.reset()
	return Prompt{Text: "You are not authorized to do that."}, false
}

// failure maps a domain error to a prompt. Validation-class errors keep the
// session where it is so the user can try again; race and authorization
// errors reset it — a retry must be a fresh, user-initiated action.
func (e *Engine) failure(sess *session, err error) Prompt {
	switch {
	case errors.Is(err, model.ErrItemUnavailable):
		sess.reset()
		return Prompt{Text: "Too late — someone else took this item first. Send 'take' to pick another."}
	case errors.Is(err, model.ErrNotHolder):
		sess.reset()
		return Prompt{Text: "You are not holding this item, so you cannot return it."}
	case errors.Is(err, model.ErrNotAuthorized):
		sess.reset()
		return Prompt{Text: "You are not authorized to do that."}
	case errors.Is(err, model.ErrCategoryNotEmpty):
		sess.reset()
		return Prompt{Text: "The category still has items. Archive them first."}
	case errors.Is(err, model.ErrDuplicateName):
		return Prompt{Text: "That name is already in use. Send a different one."}
	case errors.Is(err, model.ErrCategoryNotFound):
		return Prompt{Text: "That category does not exist. Pick one from the list."}
	case errors.Is(err, model.ErrItemNotFound):
		return Prompt{Text: "That item does not exist. Pick one from the list."}
	case errors.Is(err, model.ErrIllegalTransition):
		sess.reset()
		return Prompt{Text: "The item's current status does not allow that."}
	case errors.Is(err, model.ErrMissingPhoto):
		return Prompt{Text: "A photo is required. Please send one."}
	case errors.Is(err, model.ErrSessionExpired):
		sess.reset()
		return Prompt{Text: "Your session expired. Send 'menu' to start over."}
	default:
		return e.transientFailure(err)
	}
}

// transientFailure handles datastore errors: log, drop the flow, apologize.
func (e *Engine) transientFailure(err error) Prompt {
	slog.Error("dialog operation failed", "error", err)
	return Prompt{Text: "Something went wrong on our side. Please try again."}
}

// categoryChoices builds the selection list for active categories.
func categoryChoices(categories []model.Category) []Choice {
	choices := make([]Choice, 0, len(categories))
	for _, c := range categories {
		choices = append(choices, Choice{ID: c.ID, Label: c.Name})
	}
	return choices
}

// itemChoices builds the selection list for items.
func itemChoices(items []model.Item) []Choice {
	choices := make([]Choice, 0, len(items))
	for _, item := range items {
		choices = append(choices, Choice{ID: item.ID, Label: item.Label})
	}
	return choices
}
