package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/metrics"
	"safe-route-service/internal/platform/obs"
)

// Engine runs the search pipeline: resolve both addresses, fetch candidate
// routes, score terrain and pick a recommendation. It holds no per-search
// state; Session layers the state machine on top.
type Engine struct {
	resolver        *Resolver
	routes          *RouteFetcher
	scorer          *TerrainScorer
	selector        Selector
	maxAlternatives int
}

func NewEngine(
	resolver *Resolver,
	routes *RouteFetcher,
	scorer *TerrainScorer,
	selector Selector,
	maxAlternatives int,
) *Engine {
	return &Engine{
		resolver:        resolver,
		routes:          routes,
		scorer:          scorer,
		selector:        selector,
		maxAlternatives: clampAlternatives(maxAlternatives),
	}
}

// Resolver exposes the engine's resolver for location labelling.
func (e *Engine) Resolver() *Resolver { return e.resolver }

// Search runs one search outside of any session.
func (e *Engine) Search(ctx context.Context, origin, destination string) (*domain.SearchResult, error) {
	return e.run(ctx, origin, destination, nil)
}

// run executes the pipeline. advance, when set, is called before each stage
// and aborts the run if it returns an error.
func (e *Engine) run(
	ctx context.Context,
	origin string,
	destination string,
	advance func(State) error,
) (_ *domain.SearchResult, err error) {
	defer obs.Time(ctx, "engine.Search")(&err)
	defer func() { metrics.SearchesTotal.WithLabelValues(searchOutcome(err)).Inc() }()

	step := func(st State) error {
		if advance == nil {
			return nil
		}
		return advance(st)
	}

	origin = normalizeAddress(origin)
	destination = normalizeAddress(destination)
	if origin == "" || destination == "" {
		return nil, apperr.InvalidInput("origin and destination must be non-empty").WithOp("search")
	}

	if err := step(StateGeocoding); err != nil {
		return nil, err
	}

	var from, to domain.Coordinate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := e.resolver.Resolve(gctx, origin)
		from = c
		return err
	})
	g.Go(func() error {
		c, err := e.resolver.Resolve(gctx, destination)
		to = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := step(StateRoutesFetching); err != nil {
		return nil, err
	}

	routes, err := e.routes.FetchRoutes(ctx, from, to, e.maxAlternatives)
	if err != nil {
		return nil, err
	}

	if err := step(StateScoring); err != nil {
		return nil, err
	}

	aggregates := e.scorer.ScoreRoutes(ctx, routes)
	scores, best := e.selector.Rank(aggregates)

	slog.InfoContext(ctx, "search complete",
		"req_id", obs.RequestID(ctx),
		"routes", len(routes),
		"recommended", best,
	)

	return &domain.SearchResult{
		Origin:           origin,
		Destination:      destination,
		Routes:           routes,
		Scores:           scores,
		RecommendedIndex: best,
	}, nil
}

func searchOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.GetKind(err).String()
}

