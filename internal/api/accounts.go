package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// AccountsHandler manages the HTTP credential accounts themselves.
type AccountsHandler struct {
	DB *sql.DB
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.ListAccounts(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	jsonResponse(w, http.StatusOK, accounts)
}

// Delete handles DELETE /api/accounts/{id}. An account cannot delete itself,
// so the last admin cannot lock everyone out mid-session.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	claims := GetClaims(r.Context())
	if claims != nil && claims.AccountID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	account, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if account == nil || account.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := store.DeleteAccount(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
