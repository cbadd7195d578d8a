// Package ors adapts OpenRouteService geocoding and directions to the
// provider ports.
package ors

import (
	"errors"
	"net/http"

	"safe-route-service/internal/adapters/apiclient"
	"safe-route-service/internal/ports"
)

const (
	DefaultBaseURL = "https://api.openrouteservice.org"
	DefaultProfile = "foot-walking"

	// ORS computes at most three alternatives per request.
	maxAlternatives = 3
)

// Provider implements GeocodingProvider and RouteProvider using
// OpenRouteService. It is safe for concurrent use.
type Provider struct {
	api     *apiclient.Client
	profile string
}

func NewProvider(apiKey, baseURL, profile string, session *http.Client) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if profile == "" {
		profile = DefaultProfile
	}

	api := apiclient.New("ors", baseURL, session)
	api.SetHeader("Authorization", apiKey)

	return &Provider{api: api, profile: profile}, nil
}

var (
	_ ports.GeocodingProvider = (*Provider)(nil)
	_ ports.RouteProvider     = (*Provider)(nil)
)
