//go:build js && wasm

package jsbridge

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"syscall/js"

	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/internal/interaction"
	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/overlay"
	"github.com/mapmarks/overlay/pkg/core"
)

const (
	menuStyle = "position: absolute; background: white; border: 1px solid #ccc; border-radius: 6px; " +
		"box-shadow: 0 4px 12px rgba(0,0,0,0.2); padding: 4px 0; z-index: 9999; display: none; " +
		"min-width: 160px; font-family: Arial, sans-serif;"
	menuItemStyle = "padding: 10px 16px; cursor: pointer; color: #333; font-size: 14px;"
	backdropStyle = "position: fixed; top: 0; left: 0; width: 100%; height: 100%; " +
		"background: rgba(0,0,0,0.5); z-index: 10000;"
	panelStyle = "position: absolute; top: 50%; left: 50%; transform: translate(-50%, -50%); " +
		"background: white; padding: 25px; border-radius: 15px; box-shadow: 0 8px 32px rgba(0,0,0,0.3); " +
		"min-width: 450px; font-family: Arial, sans-serif;"
	swatchStyle  = "width: 24px; height: 24px; border: 2px solid #ddd; border-radius: 4px; cursor: pointer;"
	colorBox     = "width: 30px; height: 30px; border: 2px solid #333; border-radius: 6px;"
	primaryBtn   = "padding: 12px 20px; background: #28a745; color: white; border: none; border-radius: 8px; cursor: pointer; font-weight: bold;"
	secondaryBtn = "padding: 12px 20px; border: 1px solid #ddd; border-radius: 8px; background: #f8f9fa; cursor: pointer;"
	searchStyle  = "position: fixed; bottom: 10px; left: 10px; background: rgba(255,255,255,0.95); " +
		"border: 2px solid #333; border-radius: 8px; padding: 10px; box-shadow: 0 4px 8px rgba(0,0,0,0.2); " +
		"font-family: Arial, sans-serif; min-width: 300px; z-index: 1000;"

	searchContainerID = "locationSearchContainer"
)

// UI renders the overlay dialogs into the page.
type UI struct {
	slot *mapview.Slot
	log  *slog.Logger

	mu        sync.Mutex
	menu      js.Value
	ln        listener
	searchMsg js.Value
	searchPin js.Value
	pinLn     listener
}

var (
	_ interaction.UI = (*UI)(nil)
	_ overlay.Host   = (*UI)(nil)
)

func NewUI(slot *mapview.Slot, log *slog.Logger) *UI {
	if log == nil {
		log = slog.Default()
	}
	return &UI{slot: slot, log: log, searchPin: js.Null()}
}

// ContextMenu builds the menu once and routes secondary clicks on the map
// container to machine.
func (u *UI) ContextMenu(m mapview.Map, machine *interaction.Machine) {
	lm, ok := m.(*Map)
	if !ok {
		u.log.Error("context menu needs a Leaflet map")
		return
	}
	container := lm.Value().Call("getContainer")
	if !defined(container) {
		u.log.Error("map container not found")
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if !defined(u.menu) {
		u.menu = element("div", menuStyle)
		add := textElement("div", menuItemStyle+" border-bottom: 1px solid #f0f0f0;", "\U0001F4CD Add Marker Here")
		cancel := textElement("div", menuItemStyle, "❌ Cancel")
		u.ln.on(add, "click", func(js.Value) {
			if err := machine.AddMarkerHere(); err != nil {
				u.log.Error("add marker from menu", "error", err)
			}
		})
		u.ln.on(cancel, "click", func(js.Value) { machine.CancelMenu() })
		u.menu.Call("appendChild", add)
		u.menu.Call("appendChild", cancel)
		jsDocument.Get("body").Call("appendChild", u.menu)
	}

	u.ln.sync(container, "contextmenu", func(ev js.Value) {
		ev.Call("preventDefault")
		ev.Call("stopPropagation")
		p := core.Point{X: ev.Get("clientX").Float(), Y: ev.Get("clientY").Float()}
		go machine.OpenMenu(p)
	})
	menu := u.menu
	u.ln.sync(jsDocument, "click", func(ev js.Value) {
		inside := menu.Call("contains", ev.Get("target")).Bool()
		go machine.DocumentClick(inside)
	})
	u.log.Info("context menu event listeners added")
}

func (u *UI) ShowMenu(pos core.Point) {
	u.mu.Lock()
	menu := u.menu
	u.mu.Unlock()
	if !defined(menu) {
		return
	}
	style := menu.Get("style")
	style.Set("left", px(pos.X))
	style.Set("top", px(pos.Y))
	style.Set("display", "block")
}

func (u *UI) HideMenu() {
	u.mu.Lock()
	menu := u.menu
	u.mu.Unlock()
	if defined(menu) {
		menu.Get("style").Set("display", "none")
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// dialog is a modal picker or editor.
type dialog struct {
	root  js.Value
	box   js.Value
	input js.Value
	ln    listener
	late  lateBinder
	once  sync.Once
}

func (d *dialog) Update(hex string) {
	d.box.Get("style").Set("background", hex)
	d.input.Set("value", hex)
}

func (d *dialog) Close() {
	d.once.Do(func() {
		remove(d.root)
		d.late.close(d.ln.release)
	})
}

// modal creates the backdrop and panel. A click on the backdrop cancels.
func (d *dialog) modal(title string, onCancel func()) js.Value {
	d.root = element("div", backdropStyle)
	panel := element("div", panelStyle)
	panel.Call("appendChild", textElement("h3", "margin: 0 0 20px 0; color: #333; text-align: center;", title))
	d.root.Call("appendChild", panel)

	d.ln.sync(d.root, "click", func(ev js.Value) {
		if ev.Get("target").Equal(d.root) {
			go onCancel()
		}
	})
	return panel
}

// wheel draws the colour wheel and reports clicks in canvas coordinates.
func (d *dialog) wheel(w colorutil.Wheel, onWheel func(x, y float64)) js.Value {
	size := int(w.CenterX * 2)
	canvas := element("canvas", "cursor: crosshair; border: 2px solid #ddd; border-radius: 50%; margin-bottom: 15px;")
	canvas.Set("width", size)
	canvas.Set("height", size)

	ctx := canvas.Call("getContext", "2d")
	w.Cells(func(x, y float64, css string) {
		ctx.Set("fillStyle", css)
		ctx.Call("fillRect", x, y, 1, 1)
	})

	d.late.after(Defer, func() {
		d.ln.on(canvas, "click", func(ev js.Value) {
			rect := canvas.Call("getBoundingClientRect")
			onWheel(ev.Get("clientX").Float()-rect.Get("left").Float(), ev.Get("clientY").Float()-rect.Get("top").Float())
		})
	})
	wrap := element("div", "text-align: center; margin-bottom: 15px;")
	wrap.Call("appendChild", canvas)
	return wrap
}

// selected renders the live preview swatch and read-only hex field.
func (d *dialog) selected(label, hex string) js.Value {
	row := element("div", "text-align: center; margin-bottom: 20px;")
	inner := element("div", "display: inline-flex; align-items: center; gap: 10px;")
	d.box = element("div", colorBox)
	d.box.Get("style").Set("background", hex)
	d.input = element("input", "padding: 6px; border: 1px solid #ddd; border-radius: 4px; font-family: monospace; width: 70px; font-size: 12px;")
	d.input.Set("type", "text")
	d.input.Set("readOnly", true)
	d.input.Set("value", hex)

	inner.Call("appendChild", textElement("span", "color: #666;", label))
	inner.Call("appendChild", d.box)
	inner.Call("appendChild", d.input)
	row.Call("appendChild", inner)
	return row
}

func (d *dialog) palette(label string, colors []string, onSwatch func(hex string)) js.Value {
	wrap := element("div", "margin-bottom: 20px;")
	wrap.Call("appendChild", textElement("div", "text-align: center; margin-bottom: 8px; color: #666; font-size: 12px;", label))
	grid := element("div", "display: grid; grid-template-columns: repeat(8, 1fr); gap: 4px;")
	for _, hex := range colors {
		hex := hex
		sw := element("div", swatchStyle)
		sw.Get("style").Set("background", hex)
		d.ln.on(sw, "click", func(js.Value) { onSwatch(hex) })
		grid.Call("appendChild", sw)
	}
	wrap.Call("appendChild", grid)
	return wrap
}

func (d *dialog) buttons(primary string, onPrimary func(), onCancel func()) js.Value {
	row := element("div", "text-align: center; display: flex; gap: 10px; justify-content: center;")
	ok := textElement("button", primaryBtn, primary)
	cancel := textElement("button", secondaryBtn, "Cancel")
	d.ln.on(ok, "click", func(js.Value) { onPrimary() })
	d.ln.on(cancel, "click", func(js.Value) { onCancel() })
	row.Call("appendChild", ok)
	row.Call("appendChild", cancel)
	return row
}

func (u *UI) ShowPicker(p interaction.PickerProps) interaction.Dialog {
	d := &dialog{}
	panel := d.modal(p.Title, p.OnCancel)
	panel.Call("appendChild", d.wheel(p.Wheel, p.OnWheel))
	panel.Call("appendChild", d.selected("Selected:", p.Selected))
	panel.Call("appendChild", d.palette("Color Palette:", p.Palette, p.OnSwatch))
	panel.Call("appendChild", d.buttons("Use This Color", p.OnConfirm, p.OnCancel))
	jsDocument.Get("body").Call("appendChild", d.root)
	return d
}

func (u *UI) ShowEditor(p interaction.EditorProps) interaction.Dialog {
	d := &dialog{}
	panel := d.modal("Edit Marker", p.OnCancel)

	label := "display: block; margin-bottom: 5px; color: #555; font-weight: bold;"
	panel.Call("appendChild", textElement("label", label, "Description:"))
	text := element("input", "width: 100%; padding: 10px; margin-bottom: 20px; border: 1px solid #ddd; border-radius: 6px; box-sizing: border-box; font-size: 14px;")
	text.Set("type", "text")
	text.Set("value", p.Text)
	panel.Call("appendChild", text)

	panel.Call("appendChild", textElement("label", label, "Color:"))
	current := element("div", "margin-bottom: 15px; display: flex; align-items: center; gap: 10px;")
	currentBox := element("div", colorBox)
	currentBox.Get("style").Set("background", p.Selected)
	current.Call("appendChild", textElement("span", "color: #666;", "Current:"))
	current.Call("appendChild", currentBox)
	current.Call("appendChild", textElement("span", "color: #666;", p.Selected))
	panel.Call("appendChild", current)

	panel.Call("appendChild", d.wheel(p.Wheel, p.OnWheel))
	panel.Call("appendChild", d.selected("New:", p.Selected))
	panel.Call("appendChild", d.palette("Quick Select:", p.Palette, p.OnSwatch))
	panel.Call("appendChild", d.buttons("Save", func() { p.OnSave(text.Get("value").String()) }, p.OnCancel))
	jsDocument.Get("body").Call("appendChild", d.root)

	Defer(func() {
		text.Call("focus")
		text.Call("select")
	})
	return d
}

func (u *UI) Alert(msg string) { jsGlobal.Call("alert", msg) }

func (u *UI) Confirm(msg string) bool { return jsGlobal.Call("confirm", msg).Bool() }

func (u *UI) Prompt(msg, def string) (string, bool) {
	v := jsGlobal.Call("prompt", msg, def)
	if !defined(v) {
		return "", false
	}
	return v.String(), true
}

func (u *UI) Reload() { jsGlobal.Get("location").Call("reload") }

func (u *UI) ViewportSize() interaction.Size {
	return interaction.Size{
		Width:  jsGlobal.Get("innerWidth").Float(),
		Height: jsGlobal.Get("innerHeight").Float(),
	}
}

func (u *UI) OpenLink(url string) { jsGlobal.Call("open", url, "_blank") }

// SearchBox adds the fixed search panel. A second call is a no-op.
func (u *UI) SearchBox(machine *interaction.Machine) {
	if defined(jsDocument.Call("getElementById", searchContainerID)) {
		return
	}
	root := element("div", searchStyle)
	root.Set("id", searchContainerID)
	root.Call("appendChild", textElement("h4", "margin: 0 0 8px 0; color: #333; font-size: 14px;", "\U0001F50D Search Location"))

	row := element("div", "display: flex; gap: 5px; margin-bottom: 8px;")
	input := element("input", "flex: 1; padding: 6px; border: 1px solid #ccc; border-radius: 4px; font-size: 12px;")
	input.Set("type", "text")
	input.Set("placeholder", "Enter city, address, or place...")
	btn := textElement("button", "padding: 6px 10px; background: #007bff; color: white; border: none; border-radius: 4px; cursor: pointer; font-size: 12px;", "Search")
	row.Call("appendChild", input)
	row.Call("appendChild", btn)
	root.Call("appendChild", row)

	msg := element("div", "font-size: 11px; color: #666; min-height: 16px;")
	root.Call("appendChild", msg)

	search := func() {
		query := input.Get("value").String()
		if strings.TrimSpace(query) == "" {
			u.SearchMessage("Please enter a location")
			return
		}
		_ = machine.Search(query)
	}
	u.mu.Lock()
	u.searchMsg = msg
	u.ln.on(btn, "click", func(js.Value) { search() })
	u.ln.sync(input, "keypress", func(ev js.Value) {
		if ev.Get("key").String() == "Enter" {
			go search()
		}
	})
	u.mu.Unlock()

	jsDocument.Get("body").Call("appendChild", root)
}

func (u *UI) SearchMessage(msg string) {
	u.mu.Lock()
	target := u.searchMsg
	u.mu.Unlock()
	if defined(target) {
		target.Set("textContent", msg)
	}
}

// ShowSearchResult replaces the result pin and opens its popup.
func (u *UI) ShowSearchResult(place core.Place, onAdd func()) {
	mp, ok := u.slot.Get()
	if !ok {
		return
	}
	lm, ok := mp.(*Map)
	if !ok {
		return
	}

	u.clearSearchPin(lm)

	content := element("div", "")
	content.Call("appendChild", textElement("h4", "", "Search Result"))
	content.Call("appendChild", textElement("strong", "", place.DisplayName))
	content.Call("appendChild", element("br", ""))
	add := textElement("button", "background: #28a745; color: white; border: none; padding: 5px 10px; border-radius: 3px; cursor: pointer; margin-top: 5px;", "Add as Marker")
	content.Call("appendChild", add)

	pin := leaflet().Call("marker", []any{place.Lat, place.Lon}).Call("addTo", lm.Value())
	pin.Call("bindPopup", content).Call("openPopup")

	u.mu.Lock()
	u.searchPin = pin
	u.pinLn.on(add, "click", func(js.Value) {
		u.clearSearchPin(lm)
		onAdd()
	})
	u.mu.Unlock()

	name := place.DisplayName
	if r := []rune(name); len(r) > 50 {
		name = string(r[:50]) + "..."
	}
	u.SearchMessage("Found: " + name)
}

func (u *UI) clearSearchPin(lm *Map) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if defined(u.searchPin) {
		lm.Value().Call("removeLayer", u.searchPin)
		u.searchPin = js.Null()
	}
	u.pinLn.release()
}
