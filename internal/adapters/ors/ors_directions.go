package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"safe-route-service/internal/adapters/apiclient"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// ORS error codes meaning no route exists between the points.
const (
	errRouteNotFound    = 2009
	errPointNotRoutable = 2010
)

type alternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	ShareFactor  float64 `json:"share_factor"`
	WeightFactor float64 `json:"weight_factor"`
}

type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
	Instructions      bool               `json:"instructions"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

type errorResponse struct {
	Error struct {
		Code int `json:"code"`
	} `json:"error"`
}

// Route requests walking directions with alternatives. The geometry is the
// default encoded polyline at precision 1e-5.
func (o *Provider) Route(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
	alternatives int,
) (_ []ports.RoutePath, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	body := directionsRequest{
		Coordinates: [][]float64{origin.LngLat(), destination.LngLat()},
	}
	if alternatives > 1 {
		body.AlternativeRoutes = &alternativeRoutes{
			TargetCount:  min(alternatives, maxAlternatives),
			ShareFactor:  0.6,
			WeightFactor: 1.4,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ors directions: encode request: %w", err)
	}

	endpoint := o.api.URL("/v2/directions/"+url.PathEscape(o.profile)+"/json", nil)
	req, err := o.api.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ors directions: %w", err)
	}

	var decoded directionsResponse
	if err := o.api.DoJSON(req, &decoded); err != nil {
		if noRoute(err) {
			return []ports.RoutePath{}, nil
		}
		return nil, fmt.Errorf("ors directions %s -> %s: %w", origin, destination, err)
	}

	paths := make([]ports.RoutePath, 0, len(decoded.Routes))
	for _, r := range decoded.Routes {
		paths = append(paths, ports.RoutePath{
			DistanceMeters:  r.Summary.Distance,
			DurationSeconds: r.Summary.Duration,
			EncodedGeometry: r.Geometry,
		})
	}
	return paths, nil
}

// noRoute reports whether err is ORS saying the points cannot be connected.
func noRoute(err error) bool {
	var se *apiclient.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		return false
	}
	var e errorResponse
	if json.Unmarshal([]byte(se.Body), &e) != nil {
		return false
	}
	return e.Error.Code == errRouteNotFound || e.Error.Code == errPointNotRoutable
}
