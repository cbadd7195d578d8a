package domain

import (
	"fmt"
	"time"
)

// Represents the outcome of one search. Routes keep the provider's relevance
// order and Scores are aligned with Routes by index.
type SearchResult struct {
	Origin           string           `json:"origin"`
	Destination      string           `json:"destination"`
	Routes           []CandidateRoute `json:"routes"`
	Scores           []RouteScore     `json:"scores"`
	RecommendedIndex int              `json:"recommended_index"`
}

// Validate checks the alignment and recommendation invariants.
func (r *SearchResult) Validate() error {
	if r == nil {
		return fmt.Errorf("search result is nil")
	}
	if len(r.Routes) != len(r.Scores) {
		return fmt.Errorf("routes (%d) and scores (%d) are not aligned", len(r.Routes), len(r.Scores))
	}
	if len(r.Routes) > 0 && (r.RecommendedIndex < 0 || r.RecommendedIndex >= len(r.Routes)) {
		return fmt.Errorf("recommended index %d out of range [0,%d)", r.RecommendedIndex, len(r.Routes))
	}
	for i, route := range r.Routes {
		if len(route.Geometry) < MinGeometryPoints {
			return fmt.Errorf("route %d geometry has %d points, want at least %d", i, len(route.Geometry), MinGeometryPoints)
		}
	}
	return nil
}

// Clone returns a deep copy that shares no slices with r.
func (r *SearchResult) Clone() *SearchResult {
	if r == nil {
		return nil
	}

	out := &SearchResult{
		Origin:           r.Origin,
		Destination:      r.Destination,
		RecommendedIndex: r.RecommendedIndex,
	}

	if r.Routes != nil {
		out.Routes = make([]CandidateRoute, len(r.Routes))
		for i, route := range r.Routes {
			out.Routes[i] = route
			if route.Geometry != nil {
				out.Routes[i].Geometry = append(RouteGeometry(nil), route.Geometry...)
			}
		}
	}
	if r.Scores != nil {
		out.Scores = append([]RouteScore(nil), r.Scores...)
	}

	return out
}

// Current payload layout version of stored snapshots.
const SnapshotVersion = 1

// An immutable, retrievable copy of a search result.
type ShareSnapshot struct {
	ID        string       `json:"id"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Result    SearchResult `json:"result"`
}
