// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ShareStoreMemory   = "memory"
	ShareStorePostgres = "postgres"
	ShareStoreRedis    = "redis"

	ProviderGoogle      = "google"
	ProviderORS         = "ors"
	ProviderGraphHopper = "graphhopper"

	// MaxAlternativesCap bounds how many candidate routes a search keeps.
	MaxAlternativesCap = 5
)

type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string

	DatabaseURL string
	RedisURL    string
	ShareStore  string
	ShareTTL    time.Duration
	// GEOCODE_CACHE=off skips the cache even when a store is configured.
	GeocodeCache    bool
	GeocodeCacheTTL time.Duration

	GeocodeProvider    string
	RouteProvider      string
	GoogleMapsAPIKey   string
	GraphHopperAPIKey  string
	GraphHopperProfile string
	ORSAPIKey          string
	ORSProfile         string

	OverpassURL           string
	CoastlineRadiusMeters float64
	OverpassRPS           float64
	CoastlineCacheTTL     time.Duration

	MaxAlternatives int
	SampleCount     int
	WeightElevation float64
	WeightSea       float64
	ProviderTimeout time.Duration
	SessionTTL      time.Duration

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []string
	parseFloat := func(key, fallback string) float64 {
		v, err := strconv.ParseFloat(Get(key, fallback), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a number", key))
		}
		return v
	}
	parseInt := func(key, fallback string) int {
		v, err := strconv.Atoi(Get(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be an integer", key))
		}
		return v
	}
	parseDuration := func(key, fallback string) time.Duration {
		v, err := time.ParseDuration(Get(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a duration", key))
		}
		return v
	}

	cfg := &Config{
		Env:                   Get("APP_ENV", "development"),
		Port:                  Get("PORT", "8080"),
		LogLevel:              Get("LOG_LEVEL", "info"),
		LogFormat:             Get("LOG_FORMAT", "json"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		ShareStore:            strings.ToLower(Get("SHARE_STORE", ShareStoreMemory)),
		ShareTTL:              parseDuration("SHARE_TTL", "0s"),
		GeocodeCache:          strings.ToLower(Get("GEOCODE_CACHE", "on")) != "off",
		GeocodeCacheTTL:       parseDuration("GEOCODE_CACHE_TTL", "168h"),
		GeocodeProvider:       strings.ToLower(Get("GEOCODE_PROVIDER", ProviderGoogle)),
		RouteProvider:         strings.ToLower(Get("ROUTE_PROVIDER", ProviderGraphHopper)),
		GoogleMapsAPIKey:      os.Getenv("GOOGLE_MAPS_API_KEY"),
		GraphHopperAPIKey:     os.Getenv("GRAPHHOPPER_API_KEY"),
		GraphHopperProfile:    Get("GRAPHHOPPER_PROFILE", "foot"),
		ORSAPIKey:             os.Getenv("ORS_API_KEY"),
		ORSProfile:            Get("ORS_PROFILE", "foot-walking"),
		OverpassURL:           Get("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		CoastlineRadiusMeters: parseFloat("COASTLINE_RADIUS_METERS", "3000"),
		OverpassRPS:           parseFloat("OVERPASS_RPS", "1"),
		CoastlineCacheTTL:     parseDuration("COASTLINE_CACHE_TTL", "24h"),
		MaxAlternatives:       parseInt("MAX_ALTERNATIVES", "5"),
		SampleCount:           parseInt("SAMPLE_COUNT", "3"),
		WeightElevation:       parseFloat("WEIGHT_ELEVATION", "0.7"),
		WeightSea:             parseFloat("WEIGHT_SEA", "0.3"),
		ProviderTimeout:       parseDuration("PROVIDER_TIMEOUT", "10s"),
		SessionTTL:            parseDuration("SESSION_TTL", "30m"),
		APIRateLimitRPS:       parseFloat("API_RATE_LIMIT_RPS", "5"),
		APIRateLimitBurst:     parseInt("API_RATE_LIMIT_BURST", "10"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config parse failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	if cfg.MaxAlternatives > MaxAlternativesCap {
		cfg.MaxAlternatives = MaxAlternativesCap
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected providers and store have what they need.
func (c *Config) Validate() error {
	var errs []string

	switch c.ShareStore {
	case ShareStoreMemory:
	case ShareStorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, "DATABASE_URL is required when SHARE_STORE=postgres")
		}
	case ShareStoreRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			errs = append(errs, "REDIS_URL is required when SHARE_STORE=redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("SHARE_STORE must be memory, postgres or redis, got %q", c.ShareStore))
	}
	if c.ShareTTL < 0 {
		errs = append(errs, "SHARE_TTL must not be negative")
	}
	if c.GeocodeCacheTTL < 0 {
		errs = append(errs, "GEOCODE_CACHE_TTL must not be negative")
	}

	switch c.GeocodeProvider {
	case ProviderGoogle:
	case ProviderORS:
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			errs = append(errs, "ORS_API_KEY is required when GEOCODE_PROVIDER=ors")
		}
	default:
		errs = append(errs, fmt.Sprintf("GEOCODE_PROVIDER must be google or ors, got %q", c.GeocodeProvider))
	}

	switch c.RouteProvider {
	case ProviderGraphHopper:
		if strings.TrimSpace(c.GraphHopperAPIKey) == "" {
			errs = append(errs, "GRAPHHOPPER_API_KEY is required when ROUTE_PROVIDER=graphhopper")
		}
	case ProviderORS:
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			errs = append(errs, "ORS_API_KEY is required when ROUTE_PROVIDER=ors")
		}
	default:
		errs = append(errs, fmt.Sprintf("ROUTE_PROVIDER must be graphhopper or ors, got %q", c.RouteProvider))
	}

	// Elevation and reverse geocoding always go through Google.
	if strings.TrimSpace(c.GoogleMapsAPIKey) == "" {
		errs = append(errs, "GOOGLE_MAPS_API_KEY is required")
	}

	if c.MaxAlternatives < 1 {
		errs = append(errs, "MAX_ALTERNATIVES must be at least 1")
	}
	if c.SampleCount < 1 || c.SampleCount > 20 {
		errs = append(errs, fmt.Sprintf("SAMPLE_COUNT must be 1-20, got %d", c.SampleCount))
	}
	if !finite(c.WeightElevation) || !finite(c.WeightSea) {
		errs = append(errs, "WEIGHT_ELEVATION and WEIGHT_SEA must be finite")
	}
	if c.CoastlineRadiusMeters <= 0 {
		errs = append(errs, "COASTLINE_RADIUS_METERS must be positive")
	}
	if c.OverpassRPS <= 0 {
		errs = append(errs, "OVERPASS_RPS must be positive")
	}
	if c.CoastlineCacheTTL < 0 {
		errs = append(errs, "COASTLINE_CACHE_TTL must not be negative")
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, "PROVIDER_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.APIRateLimitRPS <= 0 || c.APIRateLimitBurst < 1 {
		errs = append(errs, "API_RATE_LIMIT_RPS must be positive and API_RATE_LIMIT_BURST at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
