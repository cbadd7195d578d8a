package dto

type ReverseGeocodeResponse struct {
	Address string `json:"address"`
}

type SeaDistanceRequest struct {
	Locations []CoordinateDTO `json:"locations" validate:"required,min=1,max=100,dive"`
}

// TotalDistance is in kilometres.
type SeaDistanceResponse struct {
	TotalDistance float64 `json:"total_distance"`
}
