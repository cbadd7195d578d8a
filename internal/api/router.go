package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"safe-route-service/internal/api/handlers"
	"safe-route-service/internal/platform/metrics"
	"safe-route-service/internal/platform/validator"
	"safe-route-service/internal/services"
)

// Deps are the services the HTTP layer needs.
type Deps struct {
	Engine   *services.Engine
	Sessions *services.Sessions
	Shares   *services.ShareService
	Terrain  *services.TerrainScorer

	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	v := validator.New()

	searchHandler := &handlers.SearchHandler{Engine: d.Engine, Sessions: d.Sessions, Validate: v}
	shareHandler := &handlers.ShareHandler{Shares: d.Shares, Sessions: d.Sessions, Validate: v}
	locationHandler := &handlers.LocationHandler{Resolver: d.Engine.Resolver(), Terrain: d.Terrain, Validate: v}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /search", searchHandler.Search)
	mux.HandleFunc("GET /sessions/{id}", searchHandler.Session)
	mux.HandleFunc("POST /sessions/{id}/share", shareHandler.PublishSession)
	mux.HandleFunc("POST /shares", shareHandler.Publish)
	mux.HandleFunc("GET /shares/{id}", shareHandler.Get)
	mux.HandleFunc("GET /reverse-geocode", locationHandler.ReverseGeocode)
	mux.HandleFunc("POST /sea-distance", locationHandler.SeaDistance)

	var h http.Handler = mux
	if d.RateLimitRPS > 0 {
		h = NewIPRateLimiter(rate.Limit(d.RateLimitRPS), max(d.RateLimitBurst, 1)).Middleware(h)
	}
	return requestIDMiddleware(loggingMiddleware(h))
}
