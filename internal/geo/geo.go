package geo

import (
	"errors"
	"math"

	"github.com/mapmarks/overlay/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Stored marker geometry is kept in EPSG:3857 so that it lines up with the
// tile pyramid the map widget renders; requests always carry EPSG:4326.

var (
	// ErrInvalidCoordinates is returned when a coordinate is not a finite number.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrOutOfRange is returned when a coordinate lies outside [-90,90]x[-180,180].
	ErrOutOfRange = errors.New("coordinates out of range")
)

// TileSize is the pixel edge of one map tile at zoom 0.
const TileSize = 256

// maxMercatorLat is where EPSG:3857 stops being square.
const maxMercatorLat = 85.0511287798

// originShift is half the EPSG:3857 world width in metres.
var originShift = 2 * math.Pi * 6378137 / 2.0

// WorldBounds is the box the map is clamped to so only one world copy shows.
var WorldBounds = NewBounds(core.LatLng{Lat: -85, Lng: -180}, core.LatLng{Lat: 85, Lng: 180})

// Validate checks that a coordinate is finite and on the globe.
func Validate(ll core.LatLng) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return ErrInvalidCoordinates
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return ErrOutOfRange
	}
	return nil
}

// Point3857 converts a WGS84 coordinate into a web mercator point.
func Point3857(ll core.LatLng) (geom.Point, error) {
	if err := Validate(ll); err != nil {
		return geom.Point{}, err
	}
	x, y := toMercator(ll)
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
}

// Project converts a coordinate into absolute world pixels at the given zoom.
func Project(ll core.LatLng, zoom float64) core.Point {
	x, y := toMercator(ll)
	scale := TileSize * math.Pow(2, zoom)
	return core.Point{
		X: (x + originShift) / (2 * originShift) * scale,
		Y: (originShift - y) / (2 * originShift) * scale,
	}
}

// Unproject is the inverse of Project.
func Unproject(p core.Point, zoom float64) core.LatLng {
	scale := TileSize * math.Pow(2, zoom)
	x := p.X/scale*2*originShift - originShift
	y := originShift - p.Y/scale*2*originShift
	f := wgs84.EPSG().Transform(3857, 4326)
	lng, lat, _ := f(x, y, 0)
	return core.LatLng{Lat: lat, Lng: lng}
}

func toMercator(ll core.LatLng) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, ll.Lat))
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(ll.Lng, lat, 0)
	return x, y
}
