// Package google adapts the Google Maps Geocoding and Elevation web
// services to the provider ports.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"safe-route-service/internal/adapters/apiclient"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

const statusZeroResults = "ZERO_RESULTS"

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type elevationResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Client implements GeocodingProvider, ReverseGeocoder and ElevationProvider.
// It is safe for concurrent use.
type Client struct {
	api    *apiclient.Client
	apiKey string
}

func NewClient(apiKey, baseURL string, session *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{api: apiclient.New("google", baseURL, session), apiKey: apiKey}, nil
}

var (
	_ ports.GeocodingProvider = (*Client)(nil)
	_ ports.ReverseGeocoder   = (*Client)(nil)
	_ ports.ElevationProvider = (*Client)(nil)
)

// Geocode passes the provider status through; the resolver decides what a
// non-OK status means.
func (c *Client) Geocode(ctx context.Context, address string) (_ ports.GeocodeResponse, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	var decoded geocodeResponse
	if err := c.api.GetJSON(ctx, "/geocode/json", q, &decoded); err != nil {
		return ports.GeocodeResponse{}, fmt.Errorf("google geocode %q: %w", address, err)
	}

	out := ports.GeocodeResponse{Status: decoded.Status}
	if decoded.Status != ports.StatusOK {
		return out, nil
	}

	for i, r := range decoded.Results {
		loc := r.Geometry.Location
		if loc.Lat == nil || loc.Lng == nil {
			return ports.GeocodeResponse{}, apperr.ProviderContractViolation(
				fmt.Sprintf("google geocode %q: result %d has no location", address, i), nil,
			)
		}
		out.Results = append(out.Results, ports.GeocodeMatch{
			Location:         domain.Coordinate{Lat: *loc.Lat, Lng: *loc.Lng},
			FormattedAddress: r.FormattedAddress,
		})
	}

	return out, nil
}

// ReverseGeocode returns the first formatted address for location, or ""
// when Google has none.
func (c *Client) ReverseGeocode(ctx context.Context, location domain.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, "google.ReverseGeocode")(&err)

	q := url.Values{}
	q.Set("latlng", location.String())
	q.Set("key", c.apiKey)

	var decoded geocodeResponse
	if err := c.api.GetJSON(ctx, "/geocode/json", q, &decoded); err != nil {
		return "", fmt.Errorf("google reverse geocode %s: %w", location, err)
	}

	switch decoded.Status {
	case ports.StatusOK:
	case statusZeroResults:
		return "", nil
	default:
		return "", apperr.ProviderUnavailable(
			fmt.Sprintf("google reverse geocode status %s", decoded.Status),
			statusErr(decoded.ErrorMessage),
		)
	}

	for _, r := range decoded.Results {
		if r.FormattedAddress != "" {
			return r.FormattedAddress, nil
		}
	}
	return "", nil
}

// Elevation looks up all points in one request. With status OK the
// elevations are aligned with points.
func (c *Client) Elevation(ctx context.Context, points []domain.Coordinate) (_ ports.ElevationResponse, err error) {
	defer obs.Time(ctx, "google.Elevation")(&err)

	if len(points) == 0 {
		return ports.ElevationResponse{Status: ports.StatusOK, Elevations: []float64{}}, nil
	}

	locs := make([]string, len(points))
	for i, p := range points {
		locs[i] = p.String()
	}

	q := url.Values{}
	q.Set("locations", strings.Join(locs, "|"))
	q.Set("key", c.apiKey)

	var decoded elevationResponse
	if err := c.api.GetJSON(ctx, "/elevation/json", q, &decoded); err != nil {
		return ports.ElevationResponse{}, fmt.Errorf("google elevation: %w", err)
	}

	out := ports.ElevationResponse{Status: decoded.Status}
	if decoded.Status != ports.StatusOK {
		return out, nil
	}

	out.Elevations = make([]float64, 0, len(decoded.Results))
	for i, r := range decoded.Results {
		if r.Elevation == nil {
			return ports.ElevationResponse{}, apperr.ProviderContractViolation(
				fmt.Sprintf("google elevation: result %d has no elevation", i), nil,
			)
		}
		out.Elevations = append(out.Elevations, *r.Elevation)
	}

	return out, nil
}

func statusErr(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}
