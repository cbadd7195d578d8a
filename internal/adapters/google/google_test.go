package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/ports"
)

// recorder captures the last request's path and query.
type recorder struct {
	mu    sync.Mutex
	path  string
	query url.Values
}

func (r *recorder) serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.path = req.URL.Path
		r.query = req.URL.Query()
		r.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient("test-key", srv.URL, srv.Client())
	require.NoError(t, err)
	return c
}

func TestGeocodeFirstResult(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{
		"status": "OK",
		"results": [
			{"formatted_address": "Tokyo Station", "geometry": {"location": {"lat": 35.6812, "lng": 139.7671}}},
			{"formatted_address": "Elsewhere", "geometry": {"location": {"lat": 1, "lng": 2}}}
		]
	}`)

	resp, err := newTestClient(t, srv).Geocode(context.Background(), "Tokyo Station")
	require.NoError(t, err)
	require.Equal(t, ports.StatusOK, resp.Status)
	require.Len(t, resp.Results, 2)
	require.Equal(t, domain.Coordinate{Lat: 35.6812, Lng: 139.7671}, resp.Results[0].Location)

	require.Equal(t, "/geocode/json", rec.path)
	require.Equal(t, "Tokyo Station", rec.query.Get("address"))
	require.Equal(t, "test-key", rec.query.Get("key"))
}

func TestGeocodePassesStatusThrough(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{"status": "ZERO_RESULTS", "results": []}`)

	resp, err := newTestClient(t, srv).Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	require.Equal(t, "ZERO_RESULTS", resp.Status)
	require.Empty(t, resp.Results)
}

func TestGeocodeMissingLocationIsContractViolation(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{"status": "OK", "results": [{"formatted_address": "x", "geometry": {}}]}`)

	_, err := newTestClient(t, srv).Geocode(context.Background(), "x")
	require.True(t, apperr.Is(err, apperr.KindProviderContractViolation), "got %v", err)
}

func TestReverseGeocode(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{"status": "OK", "results": [{"formatted_address": "1 Chome Marunouchi, Tokyo"}]}`)

	label, err := newTestClient(t, srv).ReverseGeocode(context.Background(), domain.Coordinate{Lat: 35.68, Lng: 139.76})
	require.NoError(t, err)
	require.Equal(t, "1 Chome Marunouchi, Tokyo", label)
	require.Equal(t, "35.680000,139.760000", rec.query.Get("latlng"))
}

func TestReverseGeocodeDeniedIsProviderUnavailable(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`)

	_, err := newTestClient(t, srv).ReverseGeocode(context.Background(), domain.Coordinate{})
	require.True(t, apperr.Is(err, apperr.KindProviderUnavailable), "got %v", err)
}

func TestElevationBatchesPoints(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{"status": "OK", "results": [{"elevation": 12.5}, {"elevation": 40}]}`)

	points := []domain.Coordinate{{Lat: 35.1, Lng: 139.1}, {Lat: 35.2, Lng: 139.2}}
	resp, err := newTestClient(t, srv).Elevation(context.Background(), points)
	require.NoError(t, err)
	require.Equal(t, ports.StatusOK, resp.Status)
	require.Equal(t, []float64{12.5, 40}, resp.Elevations)

	require.Equal(t, "/elevation/json", rec.path)
	require.Equal(t, "35.100000,139.100000|35.200000,139.200000", rec.query.Get("locations"))
}

func TestElevationNonOKStatusHasNoValues(t *testing.T) {
	rec := &recorder{}
	srv := rec.serve(t, `{"status": "OVER_QUERY_LIMIT", "results": []}`)

	resp, err := newTestClient(t, srv).Elevation(context.Background(), []domain.Coordinate{{Lat: 1, Lng: 1}})
	require.NoError(t, err)
	require.Equal(t, "OVER_QUERY_LIMIT", resp.Status)
	require.Empty(t, resp.Elevations)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "", nil)
	require.Error(t, err)
}

func TestTransportErrorsDoNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := NewClient("SECRET-API-KEY", srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Geocode(ctx, "Tokyo Station")
	require.True(t, apperr.Is(err, apperr.KindProviderUnavailable), "got %v", err)
	require.NotContains(t, err.Error(), "SECRET-API-KEY")

	_, err = c.ReverseGeocode(ctx, domain.Coordinate{Lat: 35.6812, Lng: 139.7671})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "SECRET-API-KEY")

	_, err = c.Elevation(ctx, []domain.Coordinate{{Lat: 35.6812, Lng: 139.7671}})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "SECRET-API-KEY")
}
