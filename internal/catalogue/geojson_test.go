package catalogue

import (
	"encoding/json"
	"testing"

	"transit/internal/geo"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue_GeoJSON(t *testing.T) {
	cat := New()
	cat.AddStop("Zeta", geo.Coordinates{Lat: 1, Lng: 2})
	cat.AddStop("Alpha", geo.Coordinates{Lat: 3, Lng: 4})
	cat.AddStop("Lonely", geo.Coordinates{Lat: 50, Lng: 50})
	_, err := cat.AddBus("b", []string{"Alpha", "Zeta"}, false)
	require.NoError(t, err)
	_, err = cat.AddBus("a", []string{"Zeta", "Alpha", "Zeta"}, true)
	require.NoError(t, err)
	_, err = cat.AddBus("empty", nil, true)
	require.NoError(t, err)

	fc := cat.GeoJSON()

	// Two buses, then two served stops
	require.Len(t, fc.Features, 4)

	assert.Equal(t, "a", fc.Features[0].Properties["name"])
	assert.Equal(t, FeatureKindBus, fc.Features[0].Properties["kind"])
	assert.Equal(t, true, fc.Features[0].Properties["is_roundtrip"])

	line, ok := fc.Features[1].Geometry.(orb.LineString)
	require.True(t, ok)
	// Out and back
	assert.Equal(t, orb.LineString{{4, 3}, {2, 1}, {4, 3}}, line)
	assert.Equal(t, "Alpha", fc.Features[1].Properties["first_stop"])
	assert.Equal(t, "Zeta", fc.Features[1].Properties["last_stop"])

	assert.Equal(t, "Alpha", fc.Features[2].Properties["name"])
	assert.Equal(t, orb.Point{4, 3}, fc.Features[2].Geometry)
	assert.Equal(t, "Zeta", fc.Features[3].Properties["name"])

	require.NotNil(t, fc.BBox)
	assert.Equal(t, orb.Bound{Min: orb.Point{2, 1}, Max: orb.Point{4, 3}}, fc.BBox.Bound())

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
	assert.NotContains(t, string(data), "Lonely")
}

func TestCatalogue_GeoJSON_SingleStopBus(t *testing.T) {
	cat := New()
	cat.AddStop("Solo", geo.Coordinates{Lat: 10, Lng: 20})
	_, err := cat.AddBus("loop", []string{"Solo"}, true)
	require.NoError(t, err)

	fc := cat.GeoJSON()

	require.Len(t, fc.Features, 2)
	assert.Equal(t, orb.Point{20, 10}, fc.Features[0].Geometry)
}

func TestCatalogue_GeoJSON_Empty(t *testing.T) {
	fc := New().GeoJSON()

	assert.Empty(t, fc.Features)
	assert.Nil(t, fc.BBox)
}
