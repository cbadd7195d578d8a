package ports

import (
	"context"

	"safe-route-service/internal/domain"
)

// One path as returned by a routing provider, before geometry decoding.
type RoutePath struct {
	DistanceMeters  float64
	DurationSeconds float64
	// Polyline-encoded geometry at precision 1e-5. Empty means the provider
	// omitted it.
	EncodedGeometry string
}

// Contract for retrieving candidate walking routes between two coordinates.
type RouteProvider interface {
	// Return up to alternatives paths in the provider's relevance order.
	// An empty slice means no path exists and is not an error.
	Route(ctx context.Context, origin, destination domain.Coordinate, alternatives int) ([]RoutePath, error)
}
