package handlers

import (
	"net/http"

	"safe-route-service/internal/api/dto"
	"safe-route-service/internal/platform/validator"
	"safe-route-service/internal/services"
)

type ShareHandler struct {
	Shares   *services.ShareService
	Sessions *services.Sessions
	Validate *validator.Validator
}

// Publish stores a client-supplied result and returns its share id.
func (h *ShareHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req dto.ShareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Shares.Publish(r.Context(), req.Result.ToDomain())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.ShareResponse{ID: id})
}

// PublishSession shares the Ready result of a session.
func (h *ShareHandler) PublishSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Sessions.Lookup(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}

	id, err := s.Publish(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.ShareResponse{ID: id})
}

// Get returns a published snapshot exactly as stored.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Shares.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromSnapshot(snap))
}
