package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// Resolver maps free-text addresses to coordinates, and coordinates back to
// a label for the "current location" input. It never retries: geocoding is
// interactive and the caller owns the retry policy.
type Resolver struct {
	provider ports.GeocodingProvider
	reverse  ports.ReverseGeocoder
	timeout  time.Duration
}

func NewResolver(provider ports.GeocodingProvider, reverse ports.ReverseGeocoder, timeout time.Duration) *Resolver {
	return &Resolver{provider: provider, reverse: reverse, timeout: timeout}
}

// Resolve returns the coordinate of the provider's first match.
func (r *Resolver) Resolve(ctx context.Context, address string) (_ domain.Coordinate, err error) {
	defer obs.Time(ctx, "resolver.Resolve")(&err)

	addr := normalizeAddress(address)
	if addr == "" {
		return domain.Coordinate{}, apperr.InvalidInput("address must be non-empty").WithOp("resolve address")
	}

	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.provider.Geocode(callCtx, addr)
	if err != nil {
		return domain.Coordinate{}, providerError(fmt.Sprintf("resolve address %q", addr), err)
	}

	if resp.Status != ports.StatusOK {
		return domain.Coordinate{}, apperr.ResolutionFailed(
			fmt.Sprintf("geocoder status %s for %q", resp.Status, addr),
		).WithOp("resolve address")
	}
	if len(resp.Results) == 0 {
		return domain.Coordinate{}, apperr.ResolutionFailed(
			fmt.Sprintf("no geocode results for %q", addr),
		).WithOp("resolve address")
	}

	loc := resp.Results[0].Location
	if err := loc.Validate(); err != nil {
		return domain.Coordinate{}, apperr.ProviderContractViolation(
			fmt.Sprintf("geocoder returned invalid coordinate for %q", addr), err,
		).WithOp("resolve address")
	}

	return loc, nil
}

// Label returns a formatted address for a coordinate supplied by the
// client's location input.
func (r *Resolver) Label(ctx context.Context, location domain.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, "resolver.Label")(&err)

	if err := location.Validate(); err != nil {
		return "", apperr.Wrap(apperr.KindInvalidInput, "invalid coordinate", err).WithOp("label location")
	}
	if r.reverse == nil {
		return "", providerError("label location", errors.New("reverse geocoder not configured"))
	}

	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	label, err := r.reverse.ReverseGeocode(callCtx, location)
	if err != nil {
		return "", providerError("label location", err)
	}
	if strings.TrimSpace(label) == "" {
		return "", apperr.ResolutionFailed("no address for location").WithOp("label location")
	}

	return label, nil
}

// normalizeAddress collapses whitespace so equal addresses share cache keys.
func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
