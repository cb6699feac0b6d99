package interaction

import (
	"context"

	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/pkg/core"
)

// Size is a viewport size in CSS pixels.
type Size struct {
	Width  float64
	Height float64
}

// Dialog is a rendered picker or editor.
type Dialog interface {
	// Update refreshes the live preview swatch and hex field.
	Update(hex string)
	Close()
}

// PickerProps describe the color picker opened before creating a marker.
// The callbacks are invoked by the host on user input.
type PickerProps struct {
	Title    string
	Selected string
	Palette  []string
	Wheel    colorutil.Wheel

	OnWheel   func(x, y float64)
	OnSwatch  func(hex string)
	OnConfirm func()
	OnCancel  func()
}

// EditorProps describe the dialog that edits an existing marker.
type EditorProps struct {
	MarkerID string
	Text     string
	Selected string
	Palette  []string
	Wheel    colorutil.Wheel

	OnWheel  func(x, y float64)
	OnSwatch func(hex string)
	OnSave   func(text string)
	OnCancel func()
}

// UI is implemented by the page host. Alert, Confirm and Prompt block until
// the user dismisses them.
type UI interface {
	ShowMenu(pos core.Point)
	HideMenu()
	ShowPicker(props PickerProps) Dialog
	ShowEditor(props EditorProps) Dialog
	Alert(msg string)
	Confirm(msg string) bool
	Prompt(msg, def string) (string, bool)
	Reload()
	ViewportSize() Size
	OpenLink(url string)
	ShowSearchResult(place core.Place, onAdd func())
	SearchMessage(msg string)
}

// Gateway persists marker mutations remotely.
type Gateway interface {
	Create(ctx context.Context, req core.CreateMarkerRequest) error
	Get(ctx context.Context, id string) (core.MarkerRecord, error)
	Update(ctx context.Context, req core.UpdateMarkerRequest) error
	Delete(ctx context.Context, id string) error
	AddMemory(ctx context.Context, id, text string) error
	GetMemory(ctx context.Context, id string) (string, error)
}

// Geocoder resolves free-text place queries.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]core.Place, error)
}
