package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/dialog"
	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/store"
)

// EventsHandler bridges gateway traffic to the conversation engine: inbound
// user events and the photo uploads that accompany them.
type EventsHandler struct {
	DB     *sql.DB
	Engine *dialog.Engine

	// InitialAdmins holds external IDs that are granted the admin role on
	// first contact.
	InitialAdmins map[string]bool
}

type eventRequest struct {
	ExternalID  string       `json:"external_id"`
	DisplayName string       `json:"display_name"`
	Event       dialog.Event `json:"event"`
}

// HandleEvent handles POST /api/events: it upserts the sender as a member and
// advances their conversation session, returning the reply prompt.
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ExternalID == "" {
		jsonError(w, http.StatusBadRequest, "external_id required")
		return
	}
	switch req.Event.Kind {
	case dialog.KindCommand, dialog.KindText, dialog.KindSelect, dialog.KindPhoto:
	default:
		jsonError(w, http.StatusBadRequest, "unknown event kind")
		return
	}

	user, err := store.UpsertUser(r.Context(), h.DB, req.ExternalID, req.DisplayName, h.InitialAdmins[req.ExternalID])
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to resolve member")
		return
	}

	prompt := h.Engine.HandleEvent(r.Context(), user, req.Event)
	jsonResponse(w, http.StatusOK, prompt)
}

// UploadPhoto handles POST /api/photos: the gateway submits proof photos
// here before referencing them in a photo event.
func (h *EventsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := store.SavePhoto(r.Context(), h.DB, result.Data, result.MIME)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"photo_id": id})
}

// GetPhoto handles GET /api/photos/{id}.
func (h *EventsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetPhoto(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
