// Package polyline implements Google's Encoded Polyline Algorithm Format at
// precision 1e-5 (five decimal digits).
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"fmt"
	"math"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
)

const (
	precision = 1e5

	minChunk = 63
	maxChunk = 63 + 0x3f
	// A 32-bit zigzag value needs at most seven 5-bit chunks.
	maxShift = 30
)

// Encode encodes a geometry into a polyline string. Coordinates are rounded
// to five decimal digits.
func Encode(geometry domain.RouteGeometry) string {
	if len(geometry) == 0 {
		return ""
	}

	// Six bytes per value is typical for nearby points.
	buf := make([]byte, 0, len(geometry)*12)

	prevLat, prevLng := 0, 0
	for _, p := range geometry {
		lat := int(math.Round(p.Lat * precision))
		lng := int(math.Round(p.Lng * precision))

		buf = appendValue(buf, lat-prevLat)
		buf = appendValue(buf, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

// Decode decodes a polyline string into a geometry. Invalid characters, a
// truncated final value, or a latitude without its longitude fail with a
// MalformedGeometry error; no partial point is ever returned.
func Decode(encoded string) (domain.RouteGeometry, error) {
	if encoded == "" {
		return domain.RouteGeometry{}, nil
	}

	points := make(domain.RouteGeometry, 0, len(encoded)/4)

	index := 0
	lat, lng := 0, 0
	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next

		if index >= len(encoded) {
			return nil, apperr.MalformedGeometry(
				fmt.Sprintf("polyline: missing longitude for point %d", len(points)),
			)
		}

		dLng, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dLat
		lng += dLng

		points = append(points, domain.Coordinate{
			Lat: float64(lat) / precision,
			Lng: float64(lng) / precision,
		})
	}

	return points, nil
}

// decodeValue reads one zigzag-encoded delta starting at index and returns it
// with the index of the next unread byte.
func decodeValue(encoded string, index int) (int, int, error) {
	result, shift := 0, 0
	for {
		if index >= len(encoded) {
			return 0, 0, apperr.MalformedGeometry("polyline: unexpected end of input")
		}

		c := encoded[index]
		if c < minChunk || c > maxChunk {
			return 0, 0, apperr.MalformedGeometry(
				fmt.Sprintf("polyline: invalid character %q at offset %d", c, index),
			)
		}
		index++

		b := int(c) - minChunk
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			break
		}

		shift += 5
		if shift > maxShift {
			return 0, 0, apperr.MalformedGeometry(
				fmt.Sprintf("polyline: value too long at offset %d", index),
			)
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

func appendValue(buf []byte, v int) []byte {
	s := v << 1
	if v < 0 {
		s = ^s
	}

	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+minChunk))
		s >>= 5
	}
	return append(buf, byte(s+minChunk))
}
