package overpass

import (
	"fmt"
	"math"
	"sync"
	"time"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/geo"
)

// Cells are 0.01 degree squares, addressed in units of 1e-5 degrees so the
// grid matches polyline precision and never depends on float rounding.
const (
	unitsPerDegree = 100000
	cellUnits      = 1000

	maxCachedCells = 4096
)

type cell struct {
	lat, lng int64
}

func cellOf(c domain.Coordinate) cell {
	return cell{
		lat: floorDiv(int64(math.Round(c.Lat*unitsPerDegree)), cellUnits),
		lng: floorDiv(int64(math.Round(c.Lng*unitsPerDegree)), cellUnits),
	}
}

func (k cell) String() string { return fmt.Sprintf("%d:%d", k.lat, k.lng) }

func (k cell) center() domain.Coordinate {
	return domain.Coordinate{
		Lat: (float64(k.lat) + 0.5) * cellUnits / unitsPerDegree,
		Lng: (float64(k.lng) + 0.5) * cellUnits / unitsPerDegree,
	}
}

// padMeters is the distance from the center to the farthest corner,
// rounded up to a whole metre.
func (k cell) padMeters() float64 {
	lat0 := float64(k.lat) * cellUnits / unitsPerDegree
	lat1 := float64(k.lat+1) * cellUnits / unitsPerDegree
	lng0 := float64(k.lng) * cellUnits / unitsPerDegree

	c := k.center()
	d := math.Max(
		geo.HaversineKm(c, domain.Coordinate{Lat: lat0, Lng: lng0}),
		geo.HaversineKm(c, domain.Coordinate{Lat: lat1, Lng: lng0}),
	)
	return math.Ceil(d*1000) + 1
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

type coastEntry struct {
	ways    [][]domain.Coordinate
	expires time.Time
}

// coastCache holds coastline ways per cell. Coastlines change rarely, so a
// long TTL is fine; the size cap only guards against unbounded growth.
type coastCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[cell]coastEntry
}

func newCoastCache(ttl time.Duration) *coastCache {
	return &coastCache{ttl: ttl, now: time.Now, entries: make(map[cell]coastEntry)}
}

func (c *coastCache) get(k cell) ([][]domain.Coordinate, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, k)
		return nil, false
	}
	return e.ways, true
}

func (c *coastCache) put(k cell, ways [][]domain.Coordinate) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= maxCachedCells {
		for key, e := range c.entries {
			if !now.Before(e.expires) {
				delete(c.entries, key)
			}
		}
	}
	// Still full: drop an arbitrary entry.
	if len(c.entries) >= maxCachedCells {
		for key := range c.entries {
			delete(c.entries, key)
			break
		}
	}
	c.entries[k] = coastEntry{ways: ways, expires: now.Add(c.ttl)}
}

func (c *coastCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
