package dto

import (
	"time"

	"safe-route-service/internal/domain"
)

type ShareRequest struct {
	Result *SearchResultDTO `json:"result" validate:"required"`
}

type ShareResponse struct {
	ID string `json:"id"`
}

type SharedResponse struct {
	ID        string          `json:"id"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Result    SearchResultDTO `json:"result"`
}

func FromSnapshot(s domain.ShareSnapshot) SharedResponse {
	return SharedResponse{
		ID:        s.ID,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		Result:    FromSearchResult(&s.Result),
	}
}

type SessionResponse struct {
	SessionID string           `json:"session_id"`
	State     string           `json:"state"`
	Error     string           `json:"error,omitempty"`
	Result    *SearchResultDTO `json:"result,omitempty"`
}
