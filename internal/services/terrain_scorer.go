package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/metrics"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// DefaultSampleCount is the number of interior points sampled per route.
const DefaultSampleCount = 3

// Bounds concurrent route scoring; each route issues two provider calls.
const maxConcurrentScoring = 5

type routeScoreResult struct {
	index int
	score domain.RouteScore
}

// TerrainScorer samples each route and aggregates elevation and sea
// proximity into a RouteScore. A failed lookup degrades its term to zero
// rather than failing the search.
type TerrainScorer struct {
	elevation ports.ElevationProvider
	sea       ports.SeaProximityProvider
	samples   int
	timeout   time.Duration
}

func NewTerrainScorer(
	elevation ports.ElevationProvider,
	sea ports.SeaProximityProvider,
	samples int,
	timeout time.Duration,
) *TerrainScorer {
	if samples < 1 {
		samples = DefaultSampleCount
	}
	return &TerrainScorer{elevation: elevation, sea: sea, samples: samples, timeout: timeout}
}

// SampleIndices picks k interior indices from a geometry of n points at
// floor(i*n/(k+1)) for i in 1..k. Integer arithmetic keeps the result
// deterministic. Indices may repeat when n is small.
func SampleIndices(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}

	idx := make([]int, k)
	for i := 1; i <= k; i++ {
		idx[i-1] = i * n / (k + 1)
	}
	return idx
}

// SamplePoints returns the geometry points at SampleIndices.
func SamplePoints(geometry domain.RouteGeometry, k int) []domain.Coordinate {
	idx := SampleIndices(len(geometry), k)
	points := make([]domain.Coordinate, len(idx))
	for i, j := range idx {
		points[i] = geometry[j]
	}
	return points
}

// ScoreRoutes scores every route concurrently. The returned slice is aligned
// with routes by index regardless of completion order.
func (s *TerrainScorer) ScoreRoutes(ctx context.Context, routes []domain.CandidateRoute) []domain.RouteScore {
	scores := make([]domain.RouteScore, len(routes))
	if len(routes) == 0 {
		return scores
	}

	sem := make(chan struct{}, maxConcurrentScoring)
	resultsCh := make(chan routeScoreResult, len(routes))
	var wg sync.WaitGroup

	for i, route := range routes {
		wg.Add(1)
		go func(index int, r domain.CandidateRoute) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			resultsCh <- routeScoreResult{index: index, score: s.ScoreRoute(ctx, index, r)}
		}(i, route)
	}

	wg.Wait()
	close(resultsCh)

	for res := range resultsCh {
		scores[res.index] = res.score
	}
	return scores
}

// ScoreRoute returns the aggregates for one route. WeightedScore is left for
// the selector.
func (s *TerrainScorer) ScoreRoute(ctx context.Context, index int, route domain.CandidateRoute) domain.RouteScore {
	points := SamplePoints(route.Geometry, s.samples)

	var (
		score domain.RouteScore
		wg    sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		samples, ok := s.elevationSamples(ctx, index, points)
		if !ok {
			score.ElevationDegraded = true
			metrics.TerrainDegraded.WithLabelValues("elevation").Inc()
			return
		}
		for _, sample := range samples {
			score.ElevationAggregate += sample.ElevationMeters
		}
	}()
	go func() {
		defer wg.Done()
		total, ok := s.seaDistance(ctx, index, points)
		if !ok {
			score.SeaDistanceDegraded = true
			metrics.TerrainDegraded.WithLabelValues("sea_distance").Inc()
			return
		}
		score.SeaDistanceAggregate = total
	}()
	wg.Wait()

	return score
}

func (s *TerrainScorer) elevationSamples(ctx context.Context, index int, points []domain.Coordinate) (_ []domain.TerrainSample, ok bool) {
	var err error
	defer obs.Time(ctx, "terrain.Elevation")(&err)

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.elevation.Elevation(callCtx, points)
	if err != nil {
		slog.WarnContext(ctx, "elevation lookup failed, term degraded to zero",
			"req_id", obs.RequestID(ctx), "route", index, "error", err)
		return nil, false
	}
	if resp.Status != ports.StatusOK {
		slog.WarnContext(ctx, "elevation lookup returned non-OK status, term degraded to zero",
			"req_id", obs.RequestID(ctx), "route", index, "status", resp.Status)
		return nil, false
	}
	if len(resp.Elevations) != len(points) {
		slog.WarnContext(ctx, "elevation count does not match sampled points, term degraded to zero",
			"req_id", obs.RequestID(ctx), "route", index, "want", len(points), "got", len(resp.Elevations))
		return nil, false
	}

	samples := make([]domain.TerrainSample, len(points))
	for i, p := range points {
		e := resp.Elevations[i]
		if math.IsNaN(e) || math.IsInf(e, 0) {
			slog.WarnContext(ctx, "elevation provider returned non-finite value, term degraded to zero",
				"req_id", obs.RequestID(ctx), "route", index, "point", i)
			return nil, false
		}
		samples[i] = domain.TerrainSample{Point: p, ElevationMeters: e}
	}
	return samples, true
}

func (s *TerrainScorer) seaDistance(ctx context.Context, index int, points []domain.Coordinate) (_ float64, ok bool) {
	var err error
	defer obs.Time(ctx, "terrain.SeaDistance")(&err)

	callCtx, cancel := s.seaCallContext(ctx)
	defer cancel()

	total, err := s.sea.SeaDistance(callCtx, points)
	if err != nil {
		slog.WarnContext(ctx, "sea distance lookup failed, term degraded to zero",
			"req_id", obs.RequestID(ctx), "route", index, "error", err)
		return 0, false
	}
	if !nonNegative(total) {
		slog.WarnContext(ctx, "sea distance provider returned invalid total, term degraded to zero",
			"req_id", obs.RequestID(ctx), "route", index, "total", total)
		return 0, false
	}
	return total, true
}

// SeaDistance exposes the raw sea proximity lookup for a batch of points.
// Unlike scoring, a failure here is returned to the caller.
func (s *TerrainScorer) SeaDistance(ctx context.Context, points []domain.Coordinate) (float64, error) {
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return 0, apperr.Wrap(apperr.KindInvalidInput, fmt.Sprintf("location %d", i), err).WithOp("sea distance")
		}
	}

	callCtx, cancel := s.seaCallContext(ctx)
	defer cancel()

	total, err := s.sea.SeaDistance(callCtx, points)
	if err != nil {
		return 0, providerError("sea distance", err)
	}
	if !nonNegative(total) {
		return 0, apperr.ProviderContractViolation(fmt.Sprintf("invalid sea distance total %v", total), nil).WithOp("sea distance")
	}
	return total, nil
}

// seaCallContext bounds one sea lookup. A throttled provider times its own
// upstream request, so waiting in its queue does not use up the deadline.
func (s *TerrainScorer) seaCallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t, ok := s.sea.(ports.Throttled); ok && t.ThrottledCalls() {
		return context.WithCancel(ctx)
	}
	return withTimeout(ctx, s.timeout)
}
