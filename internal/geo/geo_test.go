package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/mapmarks/overlay/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ll   core.LatLng
		want error
	}{
		{"origin", core.LatLng{Lat: 0, Lng: 0}, nil},
		{"corners inclusive", core.LatLng{Lat: 90, Lng: -180}, nil},
		{"lat too high", core.LatLng{Lat: 90.1, Lng: 0}, ErrOutOfRange},
		{"lng too low", core.LatLng{Lat: 0, Lng: -180.5}, ErrOutOfRange},
		{"nan", core.LatLng{Lat: math.NaN(), Lng: 0}, ErrInvalidCoordinates},
		{"inf", core.LatLng{Lat: 0, Lng: math.Inf(1)}, ErrInvalidCoordinates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.ll)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPoint3857_Origin(t *testing.T) {
	p, err := Point3857(core.LatLng{Lat: 0, Lng: 0})
	require.NoError(t, err)

	coords, ok := p.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0, coords.X, 1e-6)
	assert.InDelta(t, 0, coords.Y, 1e-6)
}

func TestPoint3857_AntiMeridian(t *testing.T) {
	p, err := Point3857(core.LatLng{Lat: 0, Lng: 180})
	require.NoError(t, err)

	coords, ok := p.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, originShift, coords.X, 1e-3)
}

func TestPoint3857_RejectsOutOfRange(t *testing.T) {
	_, err := Point3857(core.LatLng{Lat: 100, Lng: 0})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestProject_ZoomZeroCentre(t *testing.T) {
	p := Project(core.LatLng{Lat: 0, Lng: 0}, 0)
	assert.InDelta(t, TileSize/2, p.X, 1e-6)
	assert.InDelta(t, TileSize/2, p.Y, 1e-6)
}

func TestProject_ScalesWithZoom(t *testing.T) {
	p := Project(core.LatLng{Lat: 0, Lng: 90}, 2)
	// zoom 2 is 1024px wide; 90E sits three quarters across.
	assert.InDelta(t, 768, p.X, 1e-6)
	assert.InDelta(t, 512, p.Y, 1e-6)
}

func TestProjectUnproject_RoundTrip(t *testing.T) {
	cases := []core.LatLng{
		{Lat: 10, Lng: 20},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 51.5074, Lng: -0.1278},
	}
	for _, ll := range cases {
		got := Unproject(Project(ll, 7), 7)
		assert.InDelta(t, ll.Lat, got.Lat, 1e-6)
		assert.InDelta(t, ll.Lng, got.Lng, 1e-6)
	}
}
