package services

import (
	"math"
	"testing"

	"safe-route-service/internal/domain"
)

func TestRankDefaultWeights(t *testing.T) {
	scores := []domain.RouteScore{
		{ElevationAggregate: 30, SeaDistanceAggregate: 3},
		{ElevationAggregate: 90, SeaDistanceAggregate: 1.5},
		{ElevationAggregate: 60, SeaDistanceAggregate: 6},
	}

	ranked, best := NewSelector(DefaultWeights()).Rank(scores)
	if best != 1 {
		t.Fatalf("best = %d, want 1", best)
	}

	want := []float64{21.9, 63.45, 43.8}
	for i, sc := range ranked {
		if math.Abs(sc.WeightedScore-want[i]) > 1e-9 {
			t.Errorf("score %d = %v, want %v", i, sc.WeightedScore, want[i])
		}
	}
	if scores[0].WeightedScore != 0 {
		t.Errorf("Rank must not modify its input")
	}
}

func TestRankTiesKeepFirstIndex(t *testing.T) {
	scores := []domain.RouteScore{
		{ElevationAggregate: 10},
		{ElevationAggregate: 20},
		{ElevationAggregate: 20},
	}
	_, best := NewSelector(DefaultWeights()).Rank(scores)
	if best != 1 {
		t.Fatalf("best = %d, want 1", best)
	}

	allZero := make([]domain.RouteScore, 4)
	if _, best := NewSelector(DefaultWeights()).Rank(allZero); best != 0 {
		t.Fatalf("all-zero best = %d, want 0", best)
	}
}

func TestRankSkipsNaN(t *testing.T) {
	scores := []domain.RouteScore{
		{ElevationAggregate: math.NaN()},
		{ElevationAggregate: -5},
	}
	if _, best := NewSelector(DefaultWeights()).Rank(scores); best != 1 {
		t.Fatalf("best = %d, want 1", best)
	}

	allNaN := []domain.RouteScore{{ElevationAggregate: math.NaN()}, {SeaDistanceAggregate: math.NaN()}}
	if _, best := NewSelector(DefaultWeights()).Rank(allNaN); best != 0 {
		t.Fatalf("all-NaN best = %d, want 0", best)
	}
}

func TestRankEmpty(t *testing.T) {
	ranked, best := NewSelector(DefaultWeights()).Rank(nil)
	if best != -1 || len(ranked) != 0 {
		t.Fatalf("Rank(nil) = (%v, %d), want ([], -1)", ranked, best)
	}
}

func TestCustomWeights(t *testing.T) {
	scores := []domain.RouteScore{
		{ElevationAggregate: 100, SeaDistanceAggregate: 0},
		{ElevationAggregate: 0, SeaDistanceAggregate: 10},
	}
	_, best := NewSelector(Weights{Elevation: 0, Sea: 1}).Rank(scores)
	if best != 1 {
		t.Fatalf("best = %d, want 1", best)
	}
}
