package geo

import (
	"math"
	"testing"

	"github.com/mapmarks/overlay/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestBounds_ContainsInclusive(t *testing.T) {
	b := NewBounds(core.LatLng{Lat: 0, Lng: 0}, core.LatLng{Lat: 10, Lng: 20})

	assert.True(t, b.Contains(core.LatLng{Lat: 5, Lng: 5}))
	assert.True(t, b.Contains(core.LatLng{Lat: 0, Lng: 0}), "south-west corner")
	assert.True(t, b.Contains(core.LatLng{Lat: 10, Lng: 20}), "north-east corner")
	assert.True(t, b.Contains(core.LatLng{Lat: 10, Lng: 7}), "north edge")
	assert.False(t, b.Contains(core.LatLng{Lat: 10.0001, Lng: 7}))
	assert.False(t, b.Contains(core.LatLng{Lat: 5, Lng: -0.0001}))
}

func TestBounds_CornerOrderDoesNotMatter(t *testing.T) {
	b := NewBounds(core.LatLng{Lat: 10, Lng: 20}, core.LatLng{Lat: -5, Lng: -30})

	assert.Equal(t, core.LatLng{Lat: -5, Lng: -30}, b.SouthWest())
	assert.Equal(t, core.LatLng{Lat: 10, Lng: 20}, b.NorthEast())
	assert.True(t, b.Contains(core.LatLng{Lat: 0, Lng: 0}))
}

func TestBounds_Empty(t *testing.T) {
	var b Bounds
	assert.True(t, b.Empty())
	assert.False(t, b.Contains(core.LatLng{}))
}

func TestWorldBounds(t *testing.T) {
	assert.True(t, WorldBounds.Contains(core.LatLng{Lat: 85, Lng: 180}))
	assert.False(t, WorldBounds.Contains(core.LatLng{Lat: 86, Lng: 0}))
}

func TestBounds_NonFiniteCornerIsEmpty(t *testing.T) {
	for name, corner := range map[string]core.LatLng{
		"nan lat": {Lat: math.NaN(), Lng: 10},
		"inf lng": {Lat: 10, Lng: math.Inf(1)},
	} {
		t.Run(name, func(t *testing.T) {
			b := NewBounds(core.LatLng{Lat: 0, Lng: 0}, corner)
			assert.True(t, b.Empty())
			assert.False(t, b.Contains(core.LatLng{Lat: 0, Lng: 0}))
			assert.Equal(t, core.LatLng{}, b.SouthWest())
		})
	}
}
