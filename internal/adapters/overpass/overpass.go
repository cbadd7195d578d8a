// Package overpass measures sea proximity from OpenStreetMap coastline data
// served by an Overpass API instance.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"safe-route-service/internal/adapters/apiclient"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/geo"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

const (
	DefaultURL          = "https://overpass-api.de/api/interpreter"
	DefaultRadiusMeters = 3000.0
	DefaultTimeout      = 10 * time.Second
	DefaultCacheTTL     = 24 * time.Hour

	// Longest a call may sit behind the throttle before it gives up.
	maxQueueWait = 30 * time.Second
)

type interpreterResponse struct {
	Elements []struct {
		Geometry []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"geometry"`
	} `json:"elements"`
}

// Options tune a Client. Zero values take the defaults; RPS <= 0 disables
// throttling and CacheTTL < 0 disables the coastline cache.
type Options struct {
	RadiusMeters float64
	RPS          float64
	// Timeout bounds one upstream request, counted from when it leaves the
	// throttle queue.
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client implements SeaProximityProvider. Public Overpass instances are
// shared, so requests are throttled client-side, and coastline geometry is
// cached per grid cell so concurrent searches around the same place make
// one upstream request.
type Client struct {
	api          *apiclient.Client
	radiusMeters float64
	timeout      time.Duration
	limiter      *rate.Limiter
	throttled    bool

	cache   *coastCache
	flights singleflight.Group
}

// NewClient targets the interpreter endpoint at endpoint.
func NewClient(endpoint string, opts Options, session *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = DefaultRadiusMeters
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}

	return &Client{
		api:          apiclient.New("overpass", endpoint, session),
		radiusMeters: opts.RadiusMeters,
		timeout:      opts.Timeout,
		limiter:      rate.NewLimiter(limit, 1),
		throttled:    opts.RPS > 0,
		cache:        newCoastCache(opts.CacheTTL),
	}
}

var (
	_ ports.SeaProximityProvider = (*Client)(nil)
	_ ports.Throttled            = (*Client)(nil)
)

// ThrottledCalls reports whether calls queue behind the client-side limit.
// Such calls carry their own upstream deadline.
func (c *Client) ThrottledCalls() bool { return c.throttled }

// SeaDistance returns the sum, over all points, of the distance in
// kilometres to the nearest node of the coastline ways within the radius of
// the first point. With no coastline in range each point counts as the
// radius.
func (c *Client) SeaDistance(ctx context.Context, points []domain.Coordinate) (_ float64, err error) {
	defer obs.Time(ctx, "overpass.SeaDistance")(&err)

	if len(points) == 0 {
		return 0, nil
	}

	ways, err := c.coastline(ctx, cellOf(points[0]))
	if err != nil {
		return 0, err
	}
	coast := waysNear(ways, points[0], c.radiusMeters/1000)

	radiusKm := c.radiusMeters / 1000
	total := 0.0
	for _, p := range points {
		d, ok := geo.NearestKm(p, coast)
		if !ok {
			d = radiusKm
		}
		total += d
	}
	return total, nil
}

// coastline returns the ways around a cell, from cache or from one shared
// upstream request. The request outlives a caller that gives up, so its
// result still lands in the cache.
func (c *Client) coastline(ctx context.Context, k cell) ([][]domain.Coordinate, error) {
	if ways, ok := c.cache.get(k); ok {
		return ways, nil
	}

	ch := c.flights.DoChan(k.String(), func() (any, error) {
		ways, err := c.fetch(context.WithoutCancel(ctx), k)
		if err != nil {
			return nil, err
		}
		c.cache.put(k, ways)
		return ways, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperr.ProviderUnavailable("overpass coastline", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([][]domain.Coordinate), nil
	}
}

func (c *Client) fetch(ctx context.Context, k cell) ([][]domain.Coordinate, error) {
	waitCtx, cancelWait := context.WithTimeout(ctx, maxQueueWait)
	err := c.limiter.Wait(waitCtx)
	cancelWait()
	if err != nil {
		return nil, apperr.ProviderUnavailable("overpass throttle", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", coastlineQuery(k.center(), c.queryRadius(k)))

	req, err := c.api.NewRequest(reqCtx, http.MethodPost, c.api.URL("", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass coastline: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var decoded interpreterResponse
	if err := c.api.DoJSON(req, &decoded); err != nil {
		return nil, fmt.Errorf("overpass coastline near %s: %w", k.center(), err)
	}

	ways := make([][]domain.Coordinate, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		way := make([]domain.Coordinate, 0, len(el.Geometry))
		for _, g := range el.Geometry {
			way = append(way, domain.Coordinate{Lat: g.Lat, Lng: g.Lon})
		}
		if len(way) > 0 {
			ways = append(ways, way)
		}
	}
	return ways, nil
}

// queryRadius covers every point of the cell: any way within the radius of
// a point in k is within this radius of k's center.
func (c *Client) queryRadius(k cell) float64 {
	return c.radiusMeters + k.padMeters()
}

// waysNear keeps the ways that pass within radiusKm of p and flattens
// them. Kept ways contribute all their nodes, as Overpass returns whole ways.
func waysNear(ways [][]domain.Coordinate, p domain.Coordinate, radiusKm float64) []domain.Coordinate {
	var nodes []domain.Coordinate
	for _, way := range ways {
		if geo.PathDistanceKm(p, way) <= radiusKm {
			nodes = append(nodes, way...)
		}
	}
	return nodes
}

func coastlineQuery(center domain.Coordinate, radiusMeters float64) string {
	return fmt.Sprintf(
		"[out:json][timeout:25];\nway[\"natural\"=\"coastline\"](around:%s,%s,%s);\nout geom;",
		strconv.FormatFloat(radiusMeters, 'f', -1, 64),
		strconv.FormatFloat(center.Lat, 'f', -1, 64),
		strconv.FormatFloat(center.Lng, 'f', -1, 64),
	)
}
