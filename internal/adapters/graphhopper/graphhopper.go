// Package graphhopper adapts the GraphHopper Routing API to the route
// provider port.
package graphhopper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"safe-route-service/internal/adapters/apiclient"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

const (
	DefaultBaseURL = "https://graphhopper.com"
	DefaultProfile = "foot"
)

type routeResponse struct {
	Paths []struct {
		Distance      float64 `json:"distance"`
		Time          float64 `json:"time"` // milliseconds
		Points        any     `json:"points"`
		PointsEncoded bool    `json:"points_encoded"`
	} `json:"paths"`
}

// Provider implements RouteProvider.
type Provider struct {
	api     *apiclient.Client
	apiKey  string
	profile string
}

func NewProvider(apiKey, baseURL, profile string, session *http.Client) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("graphhopper api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &Provider{
		api:     apiclient.New("graphhopper", baseURL, session),
		apiKey:  apiKey,
		profile: profile,
	}, nil
}

var _ ports.RouteProvider = (*Provider)(nil)

// Route requests up to alternatives paths. GraphHopper reports time in
// milliseconds; it is converted to seconds here.
func (p *Provider) Route(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
	alternatives int,
) (_ []ports.RoutePath, err error) {
	defer obs.Time(ctx, "graphhopper.Route")(&err)

	q := url.Values{}
	q.Add("point", pointParam(origin))
	q.Add("point", pointParam(destination))
	q.Set("profile", p.profile)
	q.Set("points_encoded", "true")
	q.Set("instructions", "false")
	q.Set("locale", "en")
	q.Set("key", p.apiKey)
	if alternatives > 1 {
		q.Set("algorithm", "alternative_route")
		q.Set("alternative_route.max_paths", strconv.Itoa(alternatives))
	}

	var decoded routeResponse
	if err := p.api.GetJSON(ctx, "/api/1/route", q, &decoded); err != nil {
		if noRoute(err) {
			return []ports.RoutePath{}, nil
		}
		return nil, fmt.Errorf("graphhopper route %s -> %s: %w", origin, destination, err)
	}

	paths := make([]ports.RoutePath, 0, len(decoded.Paths))
	for i, path := range decoded.Paths {
		var encoded string
		switch pts := path.Points.(type) {
		case nil:
		case string:
			encoded = pts
		default:
			return nil, apperr.ProviderContractViolation(
				fmt.Sprintf("graphhopper route: path %d geometry is not an encoded polyline", i), nil,
			)
		}

		paths = append(paths, ports.RoutePath{
			DistanceMeters:  path.Distance,
			DurationSeconds: path.Time / 1000,
			EncodedGeometry: encoded,
		})
	}

	return paths, nil
}

// GraphHopper expects "lat,lng".
func pointParam(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// noRoute reports whether GraphHopper answered that the points are not
// connected, which is an empty result rather than a failure.
func noRoute(err error) bool {
	var se *apiclient.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(se.Body, "Connection between locations not found")
}
