// Package geo provides geodesic distance and bounding-box primitives shared by
// the spatial store and the search engine.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// MetersPerMile converts between the meter-native distance and miles.
const MetersPerMile = 1609.344

// Point is a geographic coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// NewPoint validates coordinate ranges and creates a Point.
func NewPoint(lat, lon float64) (Point, error) {
	if !ValidCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("coordinates out of range: lat=%g lon=%g", lat, lon)
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}

// ValidCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Distance is a geodesic distance, meter-native.
type Distance float64

// Meters returns the distance in meters.
func (d Distance) Meters() float64 { return float64(d) }

// Kilometers returns the distance in kilometers.
func (d Distance) Kilometers() float64 { return float64(d) / 1000 }

// Miles returns the distance in statute miles.
func (d Distance) Miles() float64 { return float64(d) / MetersPerMile }

// Between returns the great-circle (Haversine) distance between two points.
func Between(a, b Point) Distance {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return Distance(EarthRadiusMeters * c)
}

// Bounds is a rectangular map viewport defined by its southwest and northeast
// corners. When SouthWest.Longitude > NorthEast.Longitude the box wraps across
// the antimeridian.
type Bounds struct {
	SouthWest Point
	NorthEast Point
}

// NewBounds validates corner coordinates and latitude ordering.
// Longitude ordering is deliberately not enforced: west > east is the
// antimeridian-wrapping case.
func NewBounds(sw, ne Point) (Bounds, error) {
	if !ValidCoordinates(sw.Latitude, sw.Longitude) {
		return Bounds{}, fmt.Errorf("southwest corner out of range: lat=%g lon=%g", sw.Latitude, sw.Longitude)
	}
	if !ValidCoordinates(ne.Latitude, ne.Longitude) {
		return Bounds{}, fmt.Errorf("northeast corner out of range: lat=%g lon=%g", ne.Latitude, ne.Longitude)
	}
	if sw.Latitude > ne.Latitude {
		return Bounds{}, fmt.Errorf("south latitude %g above north latitude %g", sw.Latitude, ne.Latitude)
	}
	return Bounds{SouthWest: sw, NorthEast: ne}, nil
}

// WrapsAntimeridian reports whether the box crosses the ±180° meridian.
func (b Bounds) WrapsAntimeridian() bool {
	return b.SouthWest.Longitude > b.NorthEast.Longitude
}

// LonRange is a closed longitude interval.
type LonRange struct {
	West float64
	East float64
}

// LonRanges returns the longitude intervals covered by the box: one interval
// for a regular box, two for an antimeridian-wrapping one.
func (b Bounds) LonRanges() []LonRange {
	if !b.WrapsAntimeridian() {
		return []LonRange{{West: b.SouthWest.Longitude, East: b.NorthEast.Longitude}}
	}
	return []LonRange{
		{West: b.SouthWest.Longitude, East: 180},
		{West: -180, East: b.NorthEast.Longitude},
	}
}

// Contains reports whether a point lies within the box, inclusive of edges.
func (b Bounds) Contains(p Point) bool {
	if p.Latitude < b.SouthWest.Latitude || p.Latitude > b.NorthEast.Latitude {
		return false
	}
	for _, r := range b.LonRanges() {
		if p.Longitude >= r.West && p.Longitude <= r.East {
			return true
		}
	}
	return false
}
