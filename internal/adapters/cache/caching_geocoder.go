// Package cache puts persistent geocode caches in front of a geocoding
// provider.
package cache

import (
	"context"
	"log/slog"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/metrics"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// GeocodeStore is a persistent address -> coordinate map.
type GeocodeStore interface {
	Get(ctx context.Context, address string) (domain.Coordinate, bool, error)
	Put(ctx context.Context, address string, c domain.Coordinate) error
}

// CachingGeocoder checks the store before calling the provider and stores
// successful first matches. Cache failures are logged and bypassed; they
// never fail a lookup.
type CachingGeocoder struct {
	next  ports.GeocodingProvider
	store GeocodeStore
}

func NewCachingGeocoder(next ports.GeocodingProvider, store GeocodeStore) *CachingGeocoder {
	return &CachingGeocoder{next: next, store: store}
}

var _ ports.GeocodingProvider = (*CachingGeocoder)(nil)

func (c *CachingGeocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResponse, error) {
	hit, ok, err := c.store.Get(ctx, address)
	switch {
	case err != nil:
		metrics.GeocodeCacheLookups.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "geocode cache read failed", "req_id", obs.RequestID(ctx), "error", err)
	case ok:
		metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
		return ports.GeocodeResponse{
			Status:  ports.StatusOK,
			Results: []ports.GeocodeMatch{{Location: hit}},
		}, nil
	default:
		metrics.GeocodeCacheLookups.WithLabelValues("miss").Inc()
	}

	resp, err := c.next.Geocode(ctx, address)
	if err != nil {
		return resp, err
	}

	if resp.Status == ports.StatusOK && len(resp.Results) > 0 && resp.Results[0].Location.Validate() == nil {
		if err := c.store.Put(ctx, address, resp.Results[0].Location); err != nil {
			slog.WarnContext(ctx, "geocode cache write failed", "req_id", obs.RequestID(ctx), "error", err)
		}
	}

	return resp, nil
}
