package ports

import (
	"context"

	"safe-route-service/internal/domain"
)

// Answer of an elevation provider. Elevations are aligned with the request
// points when Status is OK.
type ElevationResponse struct {
	Status     string
	Elevations []float64
}

// Contract for batched elevation lookups.
type ElevationProvider interface {
	Elevation(ctx context.Context, points []domain.Coordinate) (ElevationResponse, error)
}

// Contract for sea-proximity lookups. The provider returns one aggregated
// distance for the whole batch, not one value per point.
type SeaProximityProvider interface {
	SeaDistance(ctx context.Context, points []domain.Coordinate) (float64, error)
}

// Throttled is implemented by providers that queue calls behind a
// client-side rate limit. When ThrottledCalls reports true the provider
// bounds each upstream request itself after the queue, and callers must not
// wrap the call in their own deadline.
type Throttled interface {
	ThrottledCalls() bool
}
