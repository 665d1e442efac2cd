package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// OverviewHandler serves the read-only admin views over the inventory and
// the custody ledger.
type OverviewHandler struct {
	DB *sql.DB
}

// ListHeld handles GET /api/items/held.
func (h *OverviewHandler) ListHeld(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, 0, model.ItemStatusHeld)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list held items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ListAvailable handles GET /api/items/available.
func (h *OverviewHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, 0, model.ItemStatusAvailable)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list available items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ItemHistory handles GET /api/items/{id}/history.
func (h *OverviewHandler) ItemHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	history, err := store.ListHistoryForItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.HistoryRecord{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// UserHistory handles GET /api/users/{id}/history.
func (h *OverviewHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}

	history, err := store.ListHistoryForUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get member history")
		return
	}
	if history == nil {
		history = []model.HistoryRecord{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// AdminLog handles GET /api/admin-log.
func (h *OverviewHandler) AdminLog(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListAdminLog(r.Context(), h.DB, 100)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list admin log")
		return
	}
	if entries == nil {
		entries = []model.AdminLogEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// ListUsers handles GET /api/users.
func (h *OverviewHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}
