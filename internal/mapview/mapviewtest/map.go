// Package mapviewtest provides a headless map for exercising overlay
// components without a browser.
package mapviewtest

import (
	"sync"

	"github.com/mapmarks/overlay/internal/geo"
	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/pkg/core"
)

// Map is a Web Mercator viewport of a fixed pixel size. Bounds and
// container conversions follow the same projection Leaflet uses.
type Map struct {
	mu       sync.Mutex
	width    float64
	height   float64
	center   core.LatLng
	zoom     float64
	offset   core.Point
	handlers map[string][]func()

	// bounds overrides the computed viewport bounds when set.
	bounds *geo.Bounds

	MaxBounds geo.Bounds
	Options   mapview.Options
	SetViews  []core.ViewportState
}

func New(width, height float64) *Map {
	return &Map{
		width:    width,
		height:   height,
		zoom:     3,
		handlers: make(map[string][]func()),
	}
}

func (m *Map) Center() core.LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center
}

func (m *Map) Zoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

// SetView moves the viewport and fires moveend and zoomend like the widget.
func (m *Map) SetView(center core.LatLng, zoom float64) {
	m.mu.Lock()
	zoomed := zoom != m.zoom
	m.center = center
	m.zoom = zoom
	m.SetViews = append(m.SetViews, core.ViewportState{Lat: center.Lat, Lng: center.Lng, Zoom: zoom})
	m.mu.Unlock()

	m.Fire(mapview.EventMoveEnd)
	if zoomed {
		m.Fire(mapview.EventZoomEnd)
	}
}

// SetBounds pins the viewport bounds regardless of centre and zoom.
func (m *Map) SetBounds(b geo.Bounds) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bounds = &b
}

func (m *Map) Bounds() geo.Bounds {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bounds != nil {
		return *m.bounds
	}
	sw := m.unproject(core.Point{X: 0, Y: m.height})
	ne := m.unproject(core.Point{X: m.width, Y: 0})
	return geo.NewBounds(sw, ne)
}

func (m *Map) ContainerPointToLatLng(p core.Point) core.LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unproject(p)
}

// SetContainer sets the page offset of the map element.
func (m *Map) SetContainer(offset core.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = offset
}

func (m *Map) Container() core.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset
}

func (m *Map) On(event string, handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], handler)
}

// Handlers returns how many handlers are registered for event.
func (m *Map) Handlers(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers[event])
}

// Fire invokes every handler registered for event.
func (m *Map) Fire(event string) {
	m.mu.Lock()
	hs := append([]func(){}, m.handlers[event]...)
	m.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (m *Map) SetMaxBounds(b geo.Bounds) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MaxBounds = b
}

func (m *Map) SetOptions(opts mapview.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Options = opts
}

func (m *Map) unproject(p core.Point) core.LatLng {
	c := geo.Project(m.center, m.zoom)
	return geo.Unproject(core.Point{
		X: c.X - m.width/2 + p.X,
		Y: c.Y - m.height/2 + p.Y,
	}, m.zoom)
}
