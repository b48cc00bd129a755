package catalogue

import (
	"transit/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature kinds of the exported map
const (
	FeatureKindStop = "stop"
	FeatureKindBus  = "bus"
)

// GeoJSON exports the network map: a LineString per bus with stops, following
// its full traversal, then a Point per stop served by at least one bus. Both
// groups are sorted by name. The collection's bbox covers every exported
// stop and is omitted when there is none.
func (c *Catalogue) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var served orb.MultiPoint

	for _, bus := range c.BusesByName() {
		if len(bus.Stops) == 0 {
			continue
		}

		fc.Append(c.busFeature(bus))
	}

	for _, stop := range c.StopsByName() {
		if !c.HasBuses(stop.ID) {
			continue
		}

		point := stop.Coordinates.Point()
		served = append(served, point)

		feature := geojson.NewFeature(point)
		feature.Properties["kind"] = FeatureKindStop
		feature.Properties["name"] = stop.Name
		fc.Append(feature)
	}

	if len(served) > 0 {
		fc.BBox = geojson.NewBBox(served.Bound())
	}

	return fc
}

func (c *Catalogue) busFeature(bus entity.Bus) *geojson.Feature {
	traversal := bus.Traversal()

	line := make(orb.LineString, 0, len(traversal))
	for _, stopID := range traversal {
		line = append(line, c.stops[stopID].Coordinates.Point())
	}

	// A single-stop bus has no line to draw
	var geometry orb.Geometry = line
	if len(line) == 1 {
		geometry = line[0]
	}

	feature := geojson.NewFeature(geometry)
	feature.Properties["kind"] = FeatureKindBus
	feature.Properties["name"] = bus.Name
	feature.Properties["is_roundtrip"] = bus.IsRoundtrip
	feature.Properties["first_stop"] = c.stops[bus.Stops[0]].Name
	feature.Properties["last_stop"] = c.stops[bus.Stops[len(bus.Stops)-1]].Name

	return feature
}
