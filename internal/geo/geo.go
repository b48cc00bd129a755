// Package geo holds coordinate types and great-circle distance helpers.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean Earth radius used for distance calculations
const EarthRadiusMeters = 6371000.0

// Coordinates represents a geographic coordinate in degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point converts the coordinate to an orb point (lng, lat order)
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// FromPoint converts an orb point back to coordinates
func FromPoint(p orb.Point) Coordinates {
	return Coordinates{Lat: p.Lat(), Lng: p.Lon()}
}

// Valid reports whether the coordinate lies within latitude/longitude bounds
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Distance returns the great-circle distance between two coordinates in meters
// using the spherical law of cosines.
func Distance(from, to Coordinates) float64 {
	if from == to {
		return 0
	}

	const degToRad = math.Pi / 180

	lat1 := from.Lat * degToRad
	lat2 := to.Lat * degToRad
	dLng := math.Abs(from.Lng-to.Lng) * degToRad

	cosAngle := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng)

	// Rounding can push nearly identical points slightly outside acos's domain
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return math.Acos(cosAngle) * EarthRadiusMeters
}

// TruncatedDistance returns Distance truncated toward zero, for use where an
// integer road distance in meters is expected.
func TruncatedDistance(from, to Coordinates) int {
	return int(Distance(from, to))
}
