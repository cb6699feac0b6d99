// Package mapview abstracts the live map widget the overlay attaches to.
package mapview

import (
	"errors"
	"sync"

	"github.com/mapmarks/overlay/internal/geo"
	"github.com/mapmarks/overlay/pkg/core"
)

// Map event names the overlay subscribes to.
const (
	EventClick   = "click"
	EventMoveEnd = "moveend"
	EventZoomEnd = "zoomend"
)

var ErrHandleSet = errors.New("map handle already set")

// Map is the subset of the map widget the overlay drives.
type Map interface {
	Center() core.LatLng
	Zoom() float64
	SetView(center core.LatLng, zoom float64)
	Bounds() geo.Bounds
	ContainerPointToLatLng(p core.Point) core.LatLng
	// Container returns the map's page offset, used to translate client
	// coordinates into container coordinates.
	Container() core.Point
	On(event string, handler func())
	SetMaxBounds(b geo.Bounds)
	SetOptions(opts Options)
}

// Options are the world-extent settings enforced after acquisition.
type Options struct {
	MaxBoundsViscosity float64
	WorldCopyJump      bool
	NoWrap             bool
	MinZoom            float64
	MaxZoom            float64
}

// WorldOptions keep the view inside a single unwrapped world.
var WorldOptions = Options{
	MaxBoundsViscosity: 1,
	WorldCopyJump:      false,
	NoWrap:             true,
	MinZoom:            2,
	MaxZoom:            18,
}

// Slot holds the single live map handle. It is written once by the
// acquisition engine and read by every other component.
type Slot struct {
	mu sync.RWMutex
	m  Map
}

func (s *Slot) Set(m Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m != nil {
		return ErrHandleSet
	}
	s.m = m
	return nil
}

// Get returns the handle, or nil and false while acquisition is still pending.
func (s *Slot) Get() (Map, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m, s.m != nil
}
