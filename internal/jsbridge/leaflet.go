//go:build js && wasm

package jsbridge

import (
	"syscall/js"

	"github.com/mapmarks/overlay/internal/geo"
	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/pkg/core"
)

// Map drives a Leaflet L.Map instance.
type Map struct {
	v        js.Value
	handlers listener
}

var _ mapview.Map = (*Map)(nil)

func NewMap(v js.Value) *Map { return &Map{v: v} }

// Value returns the underlying L.Map.
func (m *Map) Value() js.Value { return m.v }

func latLng(v js.Value) core.LatLng {
	return core.LatLng{Lat: v.Get("lat").Float(), Lng: v.Get("lng").Float()}
}

func leaflet() js.Value { return jsGlobal.Get("L") }

func (m *Map) Center() core.LatLng { return latLng(m.v.Call("getCenter")) }

func (m *Map) Zoom() float64 { return m.v.Call("getZoom").Float() }

func (m *Map) SetView(center core.LatLng, zoom float64) {
	m.v.Call("setView", []any{center.Lat, center.Lng}, zoom)
}

func (m *Map) Bounds() geo.Bounds {
	b := m.v.Call("getBounds")
	return geo.NewBounds(latLng(b.Call("getSouthWest")), latLng(b.Call("getNorthEast")))
}

func (m *Map) ContainerPointToLatLng(p core.Point) core.LatLng {
	return latLng(m.v.Call("containerPointToLatLng", leaflet().Call("point", p.X, p.Y)))
}

func (m *Map) Container() core.Point {
	rect := m.v.Call("getContainer").Call("getBoundingClientRect")
	return core.Point{X: rect.Get("left").Float(), Y: rect.Get("top").Float()}
}

// On subscribes handler to a map event. Handlers run on their own goroutine.
func (m *Map) On(event string, handler func()) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		go handler()
		return nil
	})
	m.handlers.funcs = append(m.handlers.funcs, f)
	m.v.Call("on", event, f)
}

func (m *Map) SetMaxBounds(b geo.Bounds) {
	sw, ne := b.SouthWest(), b.NorthEast()
	m.v.Call("setMaxBounds", []any{[]any{sw.Lat, sw.Lng}, []any{ne.Lat, ne.Lng}})
}

// SetOptions applies the world-extent options. noWrap is a tile layer
// option, so it is set on every layer that has one and the layer redrawn.
func (m *Map) SetOptions(opts mapview.Options) {
	o := m.v.Get("options")
	o.Set("maxBoundsViscosity", opts.MaxBoundsViscosity)
	o.Set("worldCopyJump", opts.WorldCopyJump)
	m.v.Call("setMinZoom", opts.MinZoom)
	m.v.Call("setMaxZoom", opts.MaxZoom)

	var each js.Func
	each = js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		layer := args[0]
		lo := layer.Get("options")
		if defined(lo) && layer.Get("redraw").Type() == js.TypeFunction && defined(layer.Get("_url")) {
			lo.Set("noWrap", opts.NoWrap)
			layer.Call("redraw")
		}
		return nil
	})
	m.v.Call("eachLayer", each)
	each.Release()
}

// Release drops every registered event callback.
func (m *Map) Release() { m.handlers.release() }
