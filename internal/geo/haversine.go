// Package geo holds distance helpers used by the sea proximity adapter.
package geo

import (
	"math"

	"safe-route-service/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// NearestKm returns the distance from p to the closest of candidates, and
// false when there are none.
func NearestKm(p domain.Coordinate, candidates []domain.Coordinate) (float64, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for _, c := range candidates {
		if d := HaversineKm(p, c); d < best {
			best = d
		}
	}
	return best, true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// PathDistanceKm approximates the distance from p to the closest point of the
// polyline path, projecting onto a plane tangent at p. Accurate to well under
// a percent within a few tens of kilometres. An empty path is +Inf away.
func PathDistanceKm(p domain.Coordinate, path []domain.Coordinate) float64 {
	switch len(path) {
	case 0:
		return math.Inf(1)
	case 1:
		return HaversineKm(p, path[0])
	}

	kx := earthRadiusKm * toRad(1) * math.Cos(toRad(p.Lat))
	ky := earthRadiusKm * toRad(1)
	project := func(c domain.Coordinate) (float64, float64) {
		return (c.Lng - p.Lng) * kx, (c.Lat - p.Lat) * ky
	}

	best := math.Inf(1)
	ax, ay := project(path[0])
	for _, c := range path[1:] {
		bx, by := project(c)
		if d := originToSegment(ax, ay, bx, by); d < best {
			best = d
		}
		ax, ay = bx, by
	}
	return best
}

func originToSegment(ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = math.Max(0, math.Min(1, -(ax*dx+ay*dy)/lenSq))
	}
	return math.Hypot(ax+t*dx, ay+t*dy)
}
