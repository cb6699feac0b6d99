// Package interaction drives the marker lifecycle: context menu, color
// selection, description entry and the remote mutation that follows.
package interaction

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/metrics"
	"github.com/mapmarks/overlay/internal/session"
	"github.com/mapmarks/overlay/pkg/core"
)

type State int

const (
	Idle State = iota
	MenuOpen
	ColorPicking
	EditPicking
	Mutating
)

func (s State) String() string {
	switch s {
	case MenuOpen:
		return "menu-open"
	case ColorPicking:
		return "color-picking"
	case EditPicking:
		return "edit-picking"
	case Mutating:
		return "mutating"
	default:
		return "idle"
	}
}

const (
	MenuWidth  = 160
	MenuHeight = 80
	menuMargin = 10

	DefaultDescription = "New Marker"
)

var ErrNoPendingLocation = errors.New("no location selected")

// Machine holds the interaction state. Its mutex is never held across a
// gateway call or a blocking dialog.
type Machine struct {
	ui       UI
	gw       Gateway
	geocoder Geocoder
	cache    *session.Cache
	slot     *mapview.Slot
	log      *slog.Logger
	metrics  *metrics.Recorder

	// ctx is used by callbacks the host invokes on user input.
	ctx context.Context

	mu      sync.Mutex
	state   State
	pending *core.LatLng
	picker  *pickerSession
	editor  *editorSession
}

type Options struct {
	UI       UI
	Gateway  Gateway
	Geocoder Geocoder
	Cache    *session.Cache
	Slot     *mapview.Slot
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

func New(ctx context.Context, opts Options) *Machine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		ui:       opts.UI,
		gw:       opts.Gateway,
		geocoder: opts.Geocoder,
		cache:    opts.Cache,
		slot:     opts.Slot,
		log:      log,
		metrics:  opts.Metrics,
		ctx:      ctx,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PendingLocation returns the coordinates of the last right-click.
func (m *Machine) PendingLocation() (core.LatLng, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return core.LatLng{}, false
	}
	return *m.pending, true
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// OpenMenu handles a secondary click at client coordinates.
func (m *Machine) OpenMenu(client core.Point) {
	mp, ok := m.slot.Get()
	if !ok {
		return
	}
	offset := mp.Container()
	ll := mp.ContainerPointToLatLng(core.Point{X: client.X - offset.X, Y: client.Y - offset.Y})

	m.mu.Lock()
	m.pending = &ll
	m.state = MenuOpen
	m.mu.Unlock()

	m.log.Debug("right click", "lat", ll.Lat, "lng", ll.Lng)
	m.ui.ShowMenu(MenuPosition(client, m.ui.ViewportSize()))
}

// MenuPosition keeps the menu at least 10px inside the viewport.
func MenuPosition(client core.Point, vp Size) core.Point {
	return core.Point{
		X: math.Max(menuMargin, math.Min(client.X, vp.Width-MenuWidth-menuMargin)),
		Y: math.Max(menuMargin, math.Min(client.Y, vp.Height-MenuHeight-menuMargin)),
	}
}

// MapClick closes the menu.
func (m *Machine) MapClick() { m.closeMenu() }

// DocumentClick closes the menu unless the click landed inside it.
func (m *Machine) DocumentClick(insideMenu bool) {
	if insideMenu {
		return
	}
	m.closeMenu()
}

func (m *Machine) CancelMenu() { m.closeMenu() }

func (m *Machine) closeMenu() {
	m.mu.Lock()
	open := m.state == MenuOpen
	if open {
		m.state = Idle
	}
	m.mu.Unlock()
	if open {
		m.ui.HideMenu()
	}
}

// AddMarkerHere opens the color picker for the pending location.
func (m *Machine) AddMarkerHere() error {
	m.ui.HideMenu()

	m.mu.Lock()
	pending := m.pending
	m.mu.Unlock()

	if pending == nil {
		m.log.Error("no right click coordinates available")
		m.setState(Idle)
		m.ui.Alert("Error: No location selected")
		return ErrNoPendingLocation
	}
	m.openPicker(*pending, DefaultDescription)
	return nil
}
