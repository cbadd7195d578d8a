// Package mock provides in-memory providers for tests.
package mock

import (
	"context"
	"strings"
	"sync"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/ports"
)

// Place is one address known to the mock geocoder.
type Place struct {
	Address  string
	Location domain.Coordinate
}

// Geocoder answers from a fixed address table. Unknown addresses get
// ZERO_RESULTS.
type Geocoder struct {
	mu     sync.Mutex
	m      map[string]domain.Coordinate
	err    error
	calls  int
	labels map[domain.Coordinate]string
}

func NewGeocoder(places []Place) *Geocoder {
	m := make(map[string]domain.Coordinate, len(places))
	labels := make(map[domain.Coordinate]string, len(places))
	for _, p := range places {
		m[strings.ToLower(p.Address)] = p.Location
		labels[p.Location] = p.Address
	}
	return &Geocoder{m: m, labels: labels}
}

// Fail makes every later call return err.
func (g *Geocoder) Fail(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

// Calls returns how many lookups were made.
func (g *Geocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *Geocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.err != nil {
		return ports.GeocodeResponse{}, g.err
	}

	loc, ok := g.m[strings.ToLower(address)]
	if !ok {
		return ports.GeocodeResponse{Status: "ZERO_RESULTS"}, nil
	}
	return ports.GeocodeResponse{
		Status:  ports.StatusOK,
		Results: []ports.GeocodeMatch{{Location: loc, FormattedAddress: address}},
	}, nil
}

func (g *Geocoder) ReverseGeocode(ctx context.Context, location domain.Coordinate) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.labels[location], nil
}

// RouteFunc adapts a function to ports.RouteProvider.
type RouteFunc func(ctx context.Context, origin, destination domain.Coordinate, alternatives int) ([]ports.RoutePath, error)

func (f RouteFunc) Route(ctx context.Context, origin, destination domain.Coordinate, alternatives int) ([]ports.RoutePath, error) {
	return f(ctx, origin, destination, alternatives)
}

// StaticRoutes always returns paths, truncated to the requested count.
func StaticRoutes(paths ...ports.RoutePath) RouteFunc {
	return func(ctx context.Context, _, _ domain.Coordinate, alternatives int) ([]ports.RoutePath, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if alternatives > 0 && len(paths) > alternatives {
			return append([]ports.RoutePath(nil), paths[:alternatives]...), nil
		}
		return append([]ports.RoutePath(nil), paths...), nil
	}
}

// ElevationFunc adapts a function to ports.ElevationProvider.
type ElevationFunc func(ctx context.Context, points []domain.Coordinate) (ports.ElevationResponse, error)

func (f ElevationFunc) Elevation(ctx context.Context, points []domain.Coordinate) (ports.ElevationResponse, error) {
	return f(ctx, points)
}

// ElevationByPoint answers every point with elevation(point).
func ElevationByPoint(elevation func(domain.Coordinate) float64) ElevationFunc {
	return func(ctx context.Context, points []domain.Coordinate) (ports.ElevationResponse, error) {
		out := make([]float64, len(points))
		for i, p := range points {
			out[i] = elevation(p)
		}
		return ports.ElevationResponse{Status: ports.StatusOK, Elevations: out}, nil
	}
}

// SeaDistanceFunc adapts a function to ports.SeaProximityProvider.
type SeaDistanceFunc func(ctx context.Context, points []domain.Coordinate) (float64, error)

func (f SeaDistanceFunc) SeaDistance(ctx context.Context, points []domain.Coordinate) (float64, error) {
	return f(ctx, points)
}

// SeaDistanceByPoint sums distance(point) over the batch.
func SeaDistanceByPoint(distance func(domain.Coordinate) float64) SeaDistanceFunc {
	return func(ctx context.Context, points []domain.Coordinate) (float64, error) {
		total := 0.0
		for _, p := range points {
			total += distance(p)
		}
		return total, nil
	}
}

var (
	_ ports.GeocodingProvider    = (*Geocoder)(nil)
	_ ports.ReverseGeocoder      = (*Geocoder)(nil)
	_ ports.RouteProvider        = RouteFunc(nil)
	_ ports.ElevationProvider    = ElevationFunc(nil)
	_ ports.SeaProximityProvider = SeaDistanceFunc(nil)
)
