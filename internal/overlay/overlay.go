// Package overlay wires the overlay features to the map once it is found.
package overlay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mapmarks/overlay/internal/acquire"
	"github.com/mapmarks/overlay/internal/api"
	"github.com/mapmarks/overlay/internal/geo"
	"github.com/mapmarks/overlay/internal/geocode"
	"github.com/mapmarks/overlay/internal/interaction"
	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/session"
	"github.com/mapmarks/overlay/internal/visibility"
)

// Host installs the page-level pieces that live outside the map widget.
type Host interface {
	// ContextMenu suppresses the native menu on the map container and
	// forwards secondary clicks and document clicks to machine.
	ContextMenu(m mapview.Map, machine *interaction.Machine)
	// SearchBox adds the place search field. Calling it twice is a no-op.
	SearchBox(machine *interaction.Machine)
}

// Clients builds the annotation gateway for origin and the place search
// client. Neither sets a client timeout: a slow request the server still
// commits must not be reported to the user as a failure.
func Clients(origin, geocoderURL string) (*api.Client, *geocode.Client) {
	return api.New(origin, 0), geocode.New(geocoderURL, 0)
}

type Options struct {
	Host    Host
	Machine *interaction.Machine
	Tracker *visibility.Tracker
	Cache   *session.Cache
	Logger  *slog.Logger
	// Defer schedules fn after the current event turn. Defaults to a goroutine.
	Defer func(fn func())
}

type App struct {
	host    Host
	machine *interaction.Machine
	tracker *visibility.Tracker
	cache   *session.Cache
	log     *slog.Logger
	deferFn func(func())
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	deferFn := opts.Defer
	if deferFn == nil {
		deferFn = func(fn func()) { go fn() }
	}
	return &App{
		host:    opts.Host,
		machine: opts.Machine,
		tracker: opts.Tracker,
		cache:   opts.Cache,
		log:     log,
		deferFn: deferFn,
	}
}

// Run drives acquisition to a terminal result. Failing to find a map leaves
// the overlay inert and is not an error.
func (a *App) Run(ctx context.Context, engine *acquire.Engine) error {
	engine.OnFound = func(m mapview.Map) { a.Init(ctx, m) }

	_, err := engine.Run(ctx)
	if errors.Is(err, acquire.ErrExhausted) {
		a.log.Error("overlay disabled: no map instance found", "attempts", engine.Attempts())
		return nil
	}
	return err
}

// Init enables every feature on m, then restores the saved viewport on the
// next turn.
func (a *App) Init(ctx context.Context, m mapview.Map) {
	if m == nil {
		a.log.Error("cannot initialize features: no map found")
		return
	}
	a.log.Info("initializing map features")

	a.host.ContextMenu(m, a.machine)
	m.On(mapview.EventClick, a.machine.MapClick)

	EnforceWorldBounds(m)
	a.tracker.Start(ctx)
	a.host.SearchBox(a.machine)

	a.deferFn(func() { a.cache.Restore(m) })
	a.log.Info("map features initialized")
}

// EnforceWorldBounds pins the view to one unwrapped copy of the world.
func EnforceWorldBounds(m mapview.Map) {
	m.SetMaxBounds(geo.WorldBounds)
	m.SetOptions(mapview.WorldOptions)
}
