package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	// Operation timings recorded by obs.Time.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "ops",
		Name:      "duration_seconds",
		Help:      "Duration of timed operations (provider calls, stores)",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"op", "outcome"})

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "engine",
		Name:      "searches_total",
		Help:      "Route searches by outcome",
	}, []string{"outcome"})

	TerrainDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "engine",
		Name:      "terrain_degraded_total",
		Help:      "Terrain lookups that fell back to a zero term",
	}, []string{"signal"})

	SharesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "share",
		Name:      "published_total",
		Help:      "Share snapshots published",
	})

	GeocodeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "cache",
		Name:      "geocode_lookups_total",
		Help:      "Geocode cache lookups by result",
	}, []string{"result"})
)

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
