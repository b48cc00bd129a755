package entity

// BusStat holds route statistics derived from the catalogue on demand.
type BusStat struct {
	GeoDistance  float64 // Sum of great-circle distances between consecutive stops
	StopCount    int     // Stops visited, counting the return leg of non-roundtrip buses
	UniqueStops  int     // Distinct stops on the route
	RoadDistance int     // Sum of road distances, with geographic fallback per segment
}

// Curvature is the ratio of road distance to geographic distance.
func (s BusStat) Curvature() float64 {
	if s.GeoDistance == 0 {
		return 0
	}

	return float64(s.RoadDistance) / s.GeoDistance
}
