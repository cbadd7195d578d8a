package services

import (
	"math"

	"safe-route-service/internal/domain"
)

// Weights combine the two terrain aggregates into one score. Higher is
// treated as safer.
type Weights struct {
	Elevation float64
	Sea       float64
}

func DefaultWeights() Weights {
	return Weights{Elevation: 0.7, Sea: 0.3}
}

// Score returns Elevation*elevationAggregate + Sea*seaDistanceAggregate.
func (w Weights) Score(s domain.RouteScore) float64 {
	return w.Elevation*s.ElevationAggregate + w.Sea*s.SeaDistanceAggregate
}

// Selector ranks scored routes and picks the recommended one.
type Selector struct {
	weights Weights
}

func NewSelector(w Weights) Selector {
	return Selector{weights: w}
}

// Rank returns a copy of scores with WeightedScore filled in, and the index
// of the maximum. Ties keep the earliest index, so the provider's most
// relevant route wins. NaN never wins. Rank returns -1 for no scores.
func (s Selector) Rank(scores []domain.RouteScore) ([]domain.RouteScore, int) {
	ranked := make([]domain.RouteScore, len(scores))
	best := -1
	bestScore := math.Inf(-1)

	for i, sc := range scores {
		sc.WeightedScore = s.weights.Score(sc)
		ranked[i] = sc

		if math.IsNaN(sc.WeightedScore) {
			continue
		}
		if best == -1 || sc.WeightedScore > bestScore {
			best = i
			bestScore = sc.WeightedScore
		}
	}

	// All NaN: fall back to the provider's first route.
	if best == -1 && len(scores) > 0 {
		best = 0
	}
	return ranked, best
}
