package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePoint(t *testing.T) {
	point := Coordinates{Lat: 55.611087, Lng: 37.20829}

	assert.Equal(t, 0.0, Distance(point, point))
}

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		from     Coordinates
		to       Coordinates
		expected float64
		delta    float64
	}{
		{
			name:     "one degree of latitude",
			from:     Coordinates{Lat: 0, Lng: 0},
			to:       Coordinates{Lat: 1, Lng: 0},
			expected: 111194.9,
			delta:    1,
		},
		{
			name:     "Tolstopaltsevo to Marushkino",
			from:     Coordinates{Lat: 55.611087, Lng: 37.20829},
			to:       Coordinates{Lat: 55.595884, Lng: 37.209755},
			expected: 1693.0,
			delta:    1,
		},
		{
			name:     "antipodal points",
			from:     Coordinates{Lat: 0, Lng: 0},
			to:       Coordinates{Lat: 0, Lng: 180},
			expected: 20015086.8,
			delta:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.from, tt.to), tt.delta)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Coordinates{Lat: 25.0330, Lng: 121.5654}
	b := Coordinates{Lat: 25.0478, Lng: 121.5170}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestTruncatedDistance(t *testing.T) {
	from := Coordinates{Lat: 0, Lng: 0}
	to := Coordinates{Lat: 1, Lng: 0}

	// 111194.93 meters truncates, never rounds up
	assert.Equal(t, 111194, TruncatedDistance(from, to))
}

func TestCoordinates_PointRoundTrip(t *testing.T) {
	coord := Coordinates{Lat: 25.0330, Lng: 121.5654}

	point := coord.Point()
	assert.Equal(t, orb.Point{121.5654, 25.0330}, point)
	assert.Equal(t, coord, FromPoint(point))
}

func TestCoordinates_Valid(t *testing.T) {
	assert.True(t, Coordinates{Lat: 90, Lng: -180}.Valid())
	assert.False(t, Coordinates{Lat: 90.1, Lng: 0}.Valid())
	assert.False(t, Coordinates{Lat: 0, Lng: 181}.Valid())
}
