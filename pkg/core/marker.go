// pkg/core/marker.go
package core

import "time"

// DefaultColor is the hex colour used when nothing else was chosen.
const DefaultColor = "#0066cc"

// LatLng is a WGS84 geocoordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is a pixel position relative to a container named by the caller.
type Point struct {
	X float64
	Y float64
}

// Annotation is a persisted point record ("marker") as the overlay sees it.
// Color is either a legacy named token or a hex literal.
type Annotation struct {
	ID          string  `json:"id,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Description string  `json:"name"`
	Color       string  `json:"color,omitempty"`
}

// Position returns the annotation's coordinate.
func (a Annotation) Position() LatLng {
	return LatLng{Lat: a.Lat, Lng: a.Lon}
}

// VisibleMarker is one entry of a visibility report.
type VisibleMarker struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color,omitempty"`
}

// ViewportState is the map view captured before a mutating request so it can
// be restored after the page reloads. Timestamp is epoch milliseconds.
type ViewportState struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Zoom      float64 `json:"zoom"`
	Timestamp int64   `json:"timestamp"`
}

// Age returns how long ago the state was captured relative to now.
func (v ViewportState) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-v.Timestamp) * time.Millisecond
}

// Center returns the captured map center.
func (v ViewportState) Center() LatLng {
	return LatLng{Lat: v.Lat, Lng: v.Lng}
}

// Place is a geocoder search hit.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}
