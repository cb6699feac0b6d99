// Package web renders the map page the overlay attaches to.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/pkg/core"
)

//go:embed templates/*.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/index.html"))

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// OverlayConfig is injected as window.overlayConfig before the overlay starts.
type OverlayConfig struct {
	MapDivID    string            `json:"mapDivId"`
	MapVarName  string            `json:"mapVarName"`
	GeocoderURL string            `json:"geocoderUrl,omitempty"`
	Markers     []core.Annotation `json:"markers"`
}

// MarkerView is one marker as drawn on the page.
type MarkerView struct {
	ID         string
	Lat        float64
	Lon        float64
	Text       string
	Hex        string
	ColorLabel string
	HasMemory  bool
}

// Page is the template input.
type Page struct {
	MapDivID     string
	MapVarName   template.JS
	CenterLat    float64
	CenterLon    float64
	Zoom         int
	StaticPrefix string
	Markers      []MarkerView
	Config       OverlayConfig
}

// PageOptions are the page-level settings.
type PageOptions struct {
	MapDivID     string
	MapVarName   string
	CenterLat    float64
	CenterLon    float64
	Zoom         int
	StaticPrefix string
	GeocoderURL  string
}

// NewPage builds the template input for the stored markers.
func NewPage(opts PageOptions, markers []core.StoredMarker) (Page, error) {
	if !identifier.MatchString(opts.MapVarName) {
		return Page{}, fmt.Errorf("invalid map variable name %q", opts.MapVarName)
	}

	p := Page{
		MapDivID:     opts.MapDivID,
		MapVarName:   template.JS(opts.MapVarName),
		CenterLat:    opts.CenterLat,
		CenterLon:    opts.CenterLon,
		Zoom:         opts.Zoom,
		StaticPrefix: strings.TrimRight(opts.StaticPrefix, "/"),
		Markers:      make([]MarkerView, 0, len(markers)),
		Config: OverlayConfig{
			MapDivID:    opts.MapDivID,
			MapVarName:  opts.MapVarName,
			GeocoderURL: opts.GeocoderURL,
			Markers:     make([]core.Annotation, 0, len(markers)),
		},
	}
	for _, m := range markers {
		p.Markers = append(p.Markers, MarkerView{
			ID:         m.ID,
			Lat:        m.Lat,
			Lon:        m.Lon,
			Text:       m.PopupText,
			Hex:        colorutil.DisplayHex(m.Color),
			ColorLabel: colorLabel(m.Color),
			HasMemory:  m.HasMemory,
		})
		p.Config.Markers = append(p.Config.Markers, core.Annotation{
			ID:          m.ID,
			Lat:         m.Lat,
			Lon:         m.Lon,
			Description: m.PopupText,
			Color:       m.Color,
		})
	}
	return p, nil
}

// Render writes the page.
func Render(w io.Writer, p Page) error {
	return page.Execute(w, p)
}

// colorLabel title-cases named colors and leaves hex literals alone.
func colorLabel(color string) string {
	if color == "" || strings.HasPrefix(color, "#") {
		return color
	}
	return strings.ToUpper(color[:1]) + strings.ToLower(color[1:])
}
