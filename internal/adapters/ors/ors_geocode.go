package ors

import (
	"context"
	"fmt"
	"net/url"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// ORS has no status field; an empty feature list is reported the way
// Google reports it.
const statusZeroResults = "ZERO_RESULTS"

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves one address via /geocode/search and returns the best
// match only.
func (o *Provider) Geocode(ctx context.Context, address string) (_ ports.GeocodeResponse, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	q := url.Values{}
	q.Set("text", address)
	q.Set("size", "1")

	var decoded geocodeResponse
	if err := o.api.GetJSON(ctx, "/geocode/search", q, &decoded); err != nil {
		return ports.GeocodeResponse{}, fmt.Errorf("ors geocode %q: %w", address, err)
	}

	if len(decoded.Features) == 0 {
		return ports.GeocodeResponse{Status: statusZeroResults}, nil
	}

	f := decoded.Features[0]
	coords := f.Geometry.Coordinates
	if len(coords) != 2 {
		return ports.GeocodeResponse{}, apperr.ProviderContractViolation(
			fmt.Sprintf("ors geocode %q: invalid coordinate format", address), nil,
		)
	}

	return ports.GeocodeResponse{
		Status: ports.StatusOK,
		Results: []ports.GeocodeMatch{{
			Location:         domain.Coordinate{Lat: coords[1], Lng: coords[0]},
			FormattedAddress: f.Properties.Label,
		}},
	}, nil
}
