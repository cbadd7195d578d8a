package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"safe-route-service/internal/adapters/cache"
	"safe-route-service/internal/adapters/google"
	"safe-route-service/internal/adapters/graphhopper"
	"safe-route-service/internal/adapters/ors"
	"safe-route-service/internal/adapters/overpass"
	"safe-route-service/internal/adapters/repositories"
	"safe-route-service/internal/api"
	"safe-route-service/internal/config"
	"safe-route-service/internal/platform/db"
	"safe-route-service/internal/platform/logging"
	"safe-route-service/internal/ports"
	"safe-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Google, GraphHopper or ORS, Overpass, Postgres or Redis)
// behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		pg  *sql.DB
		rdb *redis.Client
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		pg = conn
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	// One pooled client for every provider; per-call deadlines come from the services.
	session := &http.Client{Timeout: 2 * cfg.ProviderTimeout}

	googleClient, err := google.NewClient(cfg.GoogleMapsAPIKey, "", session)
	if err != nil {
		return err
	}

	var orsProvider *ors.Provider
	if cfg.GeocodeProvider == config.ProviderORS || cfg.RouteProvider == config.ProviderORS {
		orsProvider, err = ors.NewProvider(cfg.ORSAPIKey, "", cfg.ORSProfile, session)
		if err != nil {
			return err
		}
	}

	var geocoder ports.GeocodingProvider = googleClient
	if cfg.GeocodeProvider == config.ProviderORS {
		geocoder = orsProvider
	}
	if store := geocodeStore(cfg, pg, rdb); store != nil {
		geocoder = cache.NewCachingGeocoder(geocoder, store)
	}

	var routes ports.RouteProvider
	switch cfg.RouteProvider {
	case config.ProviderORS:
		routes = orsProvider
	default:
		gh, err := graphhopper.NewProvider(cfg.GraphHopperAPIKey, "", cfg.GraphHopperProfile, session)
		if err != nil {
			return err
		}
		routes = gh
	}

	// COASTLINE_CACHE_TTL=0 turns the coastline cache off.
	cacheTTL := cfg.CoastlineCacheTTL
	if cacheTTL == 0 {
		cacheTTL = -1
	}
	sea := overpass.NewClient(cfg.OverpassURL, overpass.Options{
		RadiusMeters: cfg.CoastlineRadiusMeters,
		RPS:          cfg.OverpassRPS,
		Timeout:      cfg.ProviderTimeout,
		CacheTTL:     cacheTTL,
	}, session)

	var snapshots ports.SnapshotRepository
	switch cfg.ShareStore {
	case config.ShareStorePostgres:
		snapshots = repositories.NewPostgresSnapshotRepository(pg)
	case config.ShareStoreRedis:
		snapshots = repositories.NewRedisSnapshotRepository(rdb, cfg.ShareTTL)
	default:
		snapshots = repositories.NewMemorySnapshotRepository()
	}

	terrain := services.NewTerrainScorer(googleClient, sea, cfg.SampleCount, cfg.ProviderTimeout)
	engine := services.NewEngine(
		services.NewResolver(geocoder, googleClient, cfg.ProviderTimeout),
		services.NewRouteFetcher(routes, cfg.ProviderTimeout),
		terrain,
		services.NewSelector(services.Weights{Elevation: cfg.WeightElevation, Sea: cfg.WeightSea}),
		cfg.MaxAlternatives,
	)
	shares := services.NewShareService(snapshots)

	router := api.NewRouter(api.Deps{
		Engine:         engine,
		Sessions:       services.NewSessions(engine, shares, cfg.SessionTTL),
		Shares:         shares,
		Terrain:        terrain,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
	})

	// A search makes several sequential provider round trips, so writes get
	// more room than the provider timeout alone.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      4*cfg.ProviderTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			"addr", srv.Addr,
			"env", cfg.Env,
			"geocoder", cfg.GeocodeProvider,
			"router", cfg.RouteProvider,
			"share_store", cfg.ShareStore,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// geocodeStore prefers Postgres, then Redis. Nil means no cache.
func geocodeStore(cfg *config.Config, pg *sql.DB, rdb *redis.Client) cache.GeocodeStore {
	if !cfg.GeocodeCache {
		return nil
	}
	switch {
	case pg != nil:
		return cache.NewSQLGeocodeCache(pg)
	case rdb != nil:
		return cache.NewRedisGeocodeCache(rdb, cfg.GeocodeCacheTTL)
	default:
		return nil
	}
}
