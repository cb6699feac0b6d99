//go:build js && wasm

package jsbridge

import (
	"log/slog"
	"syscall/js"

	"github.com/mapmarks/overlay/internal/interaction"
	"github.com/mapmarks/overlay/internal/visibility"
)

// Globals are the window functions the marker popups call.
type Globals struct {
	funcs map[string]js.Func
}

// RegisterGlobals installs viewMemory, addMemoryPrompt, editMarkerPrompt,
// deleteMarker and getVisibleMarkers on window.
func RegisterGlobals(machine *interaction.Machine, tracker *visibility.Tracker, log *slog.Logger) *Globals {
	if log == nil {
		log = slog.Default()
	}
	g := &Globals{funcs: make(map[string]js.Func)}

	byID := func(name string, fn func(id string) error) {
		g.funcs[name] = js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 || args[0].Type() != js.TypeString {
				log.Warn("popup action without marker id", "action", name)
				return nil
			}
			id := args[0].String()
			go func() {
				if err := fn(id); err != nil {
					log.Debug("popup action failed", "action", name, "id", id, "error", err)
				}
			}()
			return nil
		})
	}
	byID("viewMemory", machine.ViewMemory)
	byID("addMemoryPrompt", machine.AddMemory)
	byID("editMarkerPrompt", machine.EditMarker)
	byID("deleteMarker", machine.DeleteMarker)

	g.funcs["getVisibleMarkers"] = js.FuncOf(func(this js.Value, args []js.Value) any {
		visible := tracker.Visible()
		out := make([]any, len(visible))
		for i, m := range visible {
			out[i] = map[string]any{"id": m.ID, "name": m.Name, "lat": m.Lat, "lon": m.Lon}
		}
		return out
	})

	for name, f := range g.funcs {
		jsGlobal.Set(name, f)
	}
	return g
}

// Release removes the window functions.
func (g *Globals) Release() {
	for name, f := range g.funcs {
		jsGlobal.Delete(name)
		f.Release()
	}
	g.funcs = nil
}
