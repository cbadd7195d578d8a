package services

import (
	"math"
	"testing"
	"time"

	"safe-route-service/internal/adapters/mock"
	"safe-route-service/internal/adapters/repositories"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/polyline"
	"safe-route-service/internal/ports"
)

const testTimeout = 2 * time.Second

var (
	tokyoStation   = mock.Place{Address: "Tokyo Station", Location: domain.Coordinate{Lat: 35.6812, Lng: 139.7671}}
	shibuyaStation = mock.Place{Address: "Shibuya Station", Location: domain.Coordinate{Lat: 35.658, Lng: 139.7016}}
)

// routeGeometry builds a ten-point geometry whose longitude identifies the
// route: every point of route r has Lng = 139 + r.
func routeGeometry(r int) domain.RouteGeometry {
	g := make(domain.RouteGeometry, 10)
	for j := range g {
		g[j] = domain.Coordinate{Lat: 35.6 + 0.01*float64(j), Lng: 139 + float64(r)}
	}
	return g
}

func routeOf(p domain.Coordinate) int {
	return int(math.Round(p.Lng - 139))
}

func routePaths(n int) []ports.RoutePath {
	paths := make([]ports.RoutePath, n)
	for r := range paths {
		paths[r] = ports.RoutePath{
			DistanceMeters:  1000 * float64(r+1),
			DurationSeconds: 600 * float64(r+1),
			EncodedGeometry: polyline.Encode(routeGeometry(r)),
		}
	}
	return paths
}

// terrain maps route index to per-point values.
type terrain struct {
	elevation map[int]float64
	sea       map[int]float64
}

func (tr terrain) elevationProvider() mock.ElevationFunc {
	return mock.ElevationByPoint(func(p domain.Coordinate) float64 { return tr.elevation[routeOf(p)] })
}

func (tr terrain) seaProvider() mock.SeaDistanceFunc {
	return mock.SeaDistanceByPoint(func(p domain.Coordinate) float64 { return tr.sea[routeOf(p)] })
}

type engineDeps struct {
	geocoder  *mock.Geocoder
	routes    ports.RouteProvider
	elevation ports.ElevationProvider
	sea       ports.SeaProximityProvider
}

func defaultDeps(routes int, tr terrain) engineDeps {
	return engineDeps{
		geocoder:  mock.NewGeocoder([]mock.Place{tokyoStation, shibuyaStation}),
		routes:    mock.StaticRoutes(routePaths(routes)...),
		elevation: tr.elevationProvider(),
		sea:       tr.seaProvider(),
	}
}

func newTestEngine(t *testing.T, d engineDeps) *Engine {
	t.Helper()
	return NewEngine(
		NewResolver(d.geocoder, d.geocoder, testTimeout),
		NewRouteFetcher(d.routes, testTimeout),
		NewTerrainScorer(d.elevation, d.sea, DefaultSampleCount, testTimeout),
		NewSelector(DefaultWeights()),
		MaxAlternatives,
	)
}

func newTestShares() *ShareService {
	return NewShareService(repositories.NewMemorySnapshotRepository())
}
