package geo

import (
	"github.com/mapmarks/overlay/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Bounds is an axis-aligned lat/lng box. Containment is inclusive on every
// edge, matching the map widget's own bounds test.
type Bounds struct {
	southWest core.LatLng
	northEast core.LatLng
	env       geom.Envelope
}

// NewBounds builds the smallest box covering all corners. A NaN or infinite
// corner yields an empty box, which contains nothing.
func NewBounds(corners ...core.LatLng) Bounds {
	var b Bounds
	for i, c := range corners {
		env, err := b.env.ExtendToIncludeXY(geom.XY{X: c.Lng, Y: c.Lat})
		if err != nil {
			return Bounds{}
		}
		b.env = env
		if i == 0 {
			b.southWest, b.northEast = c, c
			continue
		}
		b.southWest.Lat = min(b.southWest.Lat, c.Lat)
		b.southWest.Lng = min(b.southWest.Lng, c.Lng)
		b.northEast.Lat = max(b.northEast.Lat, c.Lat)
		b.northEast.Lng = max(b.northEast.Lng, c.Lng)
	}
	return b
}

// Contains reports whether ll lies inside or on the edge of the box.
func (b Bounds) Contains(ll core.LatLng) bool {
	return b.env.Contains(geom.XY{X: ll.Lng, Y: ll.Lat})
}

// SouthWest returns the minimum corner.
func (b Bounds) SouthWest() core.LatLng { return b.southWest }

// NorthEast returns the maximum corner.
func (b Bounds) NorthEast() core.LatLng { return b.northEast }

// Empty reports whether the box was built without any corner.
func (b Bounds) Empty() bool { return b.env.IsEmpty() }
