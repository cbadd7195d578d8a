package handlers

import (
	"net/http"

	"safe-route-service/internal/api/dto"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/validator"
	"safe-route-service/internal/services"
)

type SearchHandler struct {
	Engine   *services.Engine
	Sessions *services.Sessions
	Validate *validator.Validator
}

// Search runs one route search. With a session id the search goes through
// that session, and a newer search in the same session wins.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var (
		res *domain.SearchResult
		err error
	)
	if req.SessionID != "" {
		res, err = h.Sessions.Get(req.SessionID).Search(r.Context(), req.Origin, req.Destination)
	} else {
		res, err = h.Engine.Search(r.Context(), req.Origin, req.Destination)
	}
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SearchResponse{
		SessionID:       req.SessionID,
		SearchResultDTO: dto.FromSearchResult(res),
	})
}

// Session reports the state of a session's latest search.
func (h *SearchHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s, ok := h.Sessions.Lookup(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}

	state, res, failure := s.Status()
	resp := dto.SessionResponse{SessionID: id, State: state.String()}
	if res != nil {
		out := dto.FromSearchResult(res)
		resp.Result = &out
	}
	if failure != nil {
		resp.Error = failure.Error()
	}
	writeJSON(w, r, http.StatusOK, resp)
}
