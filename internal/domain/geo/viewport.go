package geo

import (
	"github.com/golang/geo/s2"
)

// Point is a geographic coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewport is the geographic bounding box currently visible on the map,
// in degrees. West > East is legal and means the box crosses the
// antimeridian.
type Viewport struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether the coordinate falls inside the viewport.
// A nil viewport admits everything; malformed bounds degrade the same
// way rather than rejecting places.
func (v *Viewport) Contains(lat, lon float64) bool {
	if v == nil {
		return true
	}

	if lat < v.South || lat > v.North {
		return false
	}
	if v.West <= v.East {
		return v.West <= lon && lon <= v.East
	}
	// Antimeridian wraparound: the longitude interval is split in two.
	return lon >= v.West || lon <= v.East
}

// Center returns the midpoint of the viewport, accounting for
// antimeridian wraparound on the longitude axis.
func (v *Viewport) Center() Point {
	lat := (v.South + v.North) / 2

	if v.West <= v.East {
		return Point{Lat: lat, Lon: (v.West + v.East) / 2}
	}

	span := (v.East - v.West) + 360
	lon := v.West + span/2
	if lon > 180 {
		lon -= 360
	}
	return Point{Lat: lat, Lon: lon}
}

// Distance returns the angular distance between two points, suitable for
// ranking nearby places. It is monotonic in great-circle distance, which
// is all the sidebar ordering needs.
func Distance(a, b Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return float64(la.Distance(lb))
}
