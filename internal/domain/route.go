package domain

// Ordered sequence of coordinates in traversal order. A route geometry has at
// least two points and is never mutated after decoding.
type RouteGeometry []Coordinate

// MinGeometryPoints is the smallest geometry a candidate route may carry.
const MinGeometryPoints = 2

// One complete path returned by the routing provider.
type CandidateRoute struct {
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`
	Geometry        RouteGeometry `json:"geometry"`
	EncodedGeometry string        `json:"encoded_geometry"`
}

// Elevation reading for one sampled point of one route. Consumed by scoring
// and then discarded. Sea proximity is reported per batch, not per point, so
// it lives only in the route's aggregate.
type TerrainSample struct {
	Point           Coordinate
	ElevationMeters float64
}

// Per-route risk aggregates. Higher WeightedScore is treated as safer.
type RouteScore struct {
	ElevationAggregate   float64 `json:"elevation_aggregate"`
	SeaDistanceAggregate float64 `json:"sea_distance_aggregate"`
	WeightedScore        float64 `json:"weighted_score"`
	// Set when the lookup failed and the term fell back to zero.
	ElevationDegraded   bool `json:"elevation_degraded"`
	SeaDistanceDegraded bool `json:"sea_distance_degraded"`
}
