package dto

import "safe-route-service/internal/domain"

type SearchRequest struct {
	Origin      string `json:"origin" validate:"required,max=512"`
	Destination string `json:"destination" validate:"required,max=512"`
	// Optional; searches with the same id supersede each other.
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

type CoordinateDTO struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type RouteDTO struct {
	DistanceMeters  float64         `json:"distance_meters" validate:"gte=0"`
	DurationSeconds float64         `json:"duration_seconds" validate:"gte=0"`
	Geometry        []CoordinateDTO `json:"geometry" validate:"required,min=2,dive"`
	EncodedGeometry string          `json:"encoded_geometry"`
}

type ScoreDTO struct {
	ElevationAggregate   float64 `json:"elevation_aggregate"`
	SeaDistanceAggregate float64 `json:"sea_distance_aggregate"`
	WeightedScore        float64 `json:"weighted_score"`
	ElevationDegraded    bool    `json:"elevation_degraded"`
	SeaDistanceDegraded  bool    `json:"sea_distance_degraded"`
}

type SearchResultDTO struct {
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	Routes           []RouteDTO `json:"routes" validate:"required,min=1,max=5,dive"`
	Scores           []ScoreDTO `json:"scores" validate:"required"`
	RecommendedIndex int        `json:"recommended_index" validate:"gte=0"`
}

type SearchResponse struct {
	SessionID string `json:"session_id,omitempty"`
	SearchResultDTO
}

func FromCoordinate(c domain.Coordinate) CoordinateDTO {
	return CoordinateDTO{Lat: c.Lat, Lng: c.Lng}
}

func (c CoordinateDTO) ToDomain() domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat, Lng: c.Lng}
}

func FromSearchResult(r *domain.SearchResult) SearchResultDTO {
	out := SearchResultDTO{
		Origin:           r.Origin,
		Destination:      r.Destination,
		Routes:           make([]RouteDTO, 0, len(r.Routes)),
		Scores:           make([]ScoreDTO, 0, len(r.Scores)),
		RecommendedIndex: r.RecommendedIndex,
	}
	for _, route := range r.Routes {
		geometry := make([]CoordinateDTO, 0, len(route.Geometry))
		for _, p := range route.Geometry {
			geometry = append(geometry, FromCoordinate(p))
		}
		out.Routes = append(out.Routes, RouteDTO{
			DistanceMeters:  route.DistanceMeters,
			DurationSeconds: route.DurationSeconds,
			Geometry:        geometry,
			EncodedGeometry: route.EncodedGeometry,
		})
	}
	for _, s := range r.Scores {
		out.Scores = append(out.Scores, ScoreDTO(s))
	}
	return out
}

// ToDomain converts a client-supplied result. Invariants are checked by the
// share service, not here.
func (d SearchResultDTO) ToDomain() *domain.SearchResult {
	out := &domain.SearchResult{
		Origin:           d.Origin,
		Destination:      d.Destination,
		Routes:           make([]domain.CandidateRoute, 0, len(d.Routes)),
		Scores:           make([]domain.RouteScore, 0, len(d.Scores)),
		RecommendedIndex: d.RecommendedIndex,
	}
	for _, route := range d.Routes {
		geometry := make(domain.RouteGeometry, 0, len(route.Geometry))
		for _, p := range route.Geometry {
			geometry = append(geometry, p.ToDomain())
		}
		out.Routes = append(out.Routes, domain.CandidateRoute{
			DistanceMeters:  route.DistanceMeters,
			DurationSeconds: route.DurationSeconds,
			Geometry:        geometry,
			EncodedGeometry: route.EncodedGeometry,
		})
	}
	for _, s := range d.Scores {
		out.Scores = append(out.Scores, domain.RouteScore(s))
	}
	return out
}
