package ports

import (
	"context"

	"safe-route-service/internal/domain"
)

// Status reported by a geocoding provider when at least one match was found.
const StatusOK = "OK"

// Raw answer of a geocoding provider. Interpretation belongs to the resolver.
type GeocodeResponse struct {
	Status  string
	Results []GeocodeMatch
}

type GeocodeMatch struct {
	Location         domain.Coordinate
	FormattedAddress string
}

// Contract for forward geocoding of free-text addresses.
type GeocodingProvider interface {
	Geocode(ctx context.Context, address string) (GeocodeResponse, error)
}

// Contract for labelling a coordinate with a human-readable address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, location domain.Coordinate) (string, error)
}
