package handlers

import (
	"net/http"
	"strconv"

	"safe-route-service/internal/api/dto"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/validator"
	"safe-route-service/internal/services"
)

type LocationHandler struct {
	Resolver *services.Resolver
	Terrain  *services.TerrainScorer
	Validate *validator.Validator
}

// ReverseGeocode labels the client's current location.
func (h *LocationHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng query parameters must be numbers")
		return
	}

	label, err := h.Resolver.Label(r.Context(), domain.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ReverseGeocodeResponse{Address: label})
}

// SeaDistance sums each location's distance to the nearest coastline.
func (h *LocationHandler) SeaDistance(w http.ResponseWriter, r *http.Request) {
	var req dto.SeaDistanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	points := make([]domain.Coordinate, 0, len(req.Locations))
	for _, l := range req.Locations {
		points = append(points, l.ToDomain())
	}

	total, err := h.Terrain.SeaDistance(r.Context(), points)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SeaDistanceResponse{TotalDistance: total})
}
