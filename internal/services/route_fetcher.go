package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/polyline"
	"safe-route-service/internal/ports"
)

// MaxAlternatives is the hard cap on candidate routes per search.
const MaxAlternatives = 5

// RouteFetcher requests candidate routes and normalizes them into decoded
// CandidateRoutes. Provider order is relevance order and is never re-sorted.
type RouteFetcher struct {
	provider ports.RouteProvider
	timeout  time.Duration
}

func NewRouteFetcher(provider ports.RouteProvider, timeout time.Duration) *RouteFetcher {
	return &RouteFetcher{provider: provider, timeout: timeout}
}

// FetchRoutes returns at most maxAlternatives routes (capped at 5). Zero paths
// yield an empty slice, not an error.
func (f *RouteFetcher) FetchRoutes(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
	maxAlternatives int,
) (_ []domain.CandidateRoute, err error) {
	defer obs.Time(ctx, "routes.FetchRoutes")(&err)

	limit := clampAlternatives(maxAlternatives)

	callCtx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	paths, err := f.provider.Route(callCtx, origin, destination, limit)
	if err != nil {
		return nil, providerError("fetch routes", err)
	}

	if len(paths) > limit {
		paths = paths[:limit]
	}

	routes := make([]domain.CandidateRoute, 0, len(paths))
	for i, p := range paths {
		route, err := normalizePath(p)
		if err != nil {
			return nil, fmt.Errorf("fetch routes: path %d: %w", i, err)
		}
		routes = append(routes, route)
	}

	return routes, nil
}

func normalizePath(p ports.RoutePath) (domain.CandidateRoute, error) {
	if p.EncodedGeometry == "" {
		return domain.CandidateRoute{}, apperr.ProviderContractViolation("path is missing its geometry", nil)
	}
	if !nonNegative(p.DistanceMeters) || !nonNegative(p.DurationSeconds) {
		return domain.CandidateRoute{}, apperr.ProviderContractViolation(
			fmt.Sprintf("invalid metrics distance=%v duration=%v", p.DistanceMeters, p.DurationSeconds), nil,
		)
	}

	geometry, err := polyline.Decode(p.EncodedGeometry)
	if err != nil {
		return domain.CandidateRoute{}, err
	}
	if len(geometry) < domain.MinGeometryPoints {
		return domain.CandidateRoute{}, apperr.ProviderContractViolation(
			fmt.Sprintf("geometry has %d points, want at least %d", len(geometry), domain.MinGeometryPoints), nil,
		)
	}

	return domain.CandidateRoute{
		DistanceMeters:  p.DistanceMeters,
		DurationSeconds: p.DurationSeconds,
		Geometry:        geometry,
		EncodedGeometry: p.EncodedGeometry,
	}, nil
}

func clampAlternatives(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxAlternatives {
		return MaxAlternatives
	}
	return n
}

func nonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}
