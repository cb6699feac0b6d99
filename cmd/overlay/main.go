//go:build js && wasm

// Command overlay is the WebAssembly module loaded by the map page. It finds
// the Leaflet map and adds the context menu, colour dialogs, place search and
// visible-marker reporting.
package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mapmarks/overlay/internal/acquire"
	"github.com/mapmarks/overlay/internal/cache"
	"github.com/mapmarks/overlay/internal/interaction"
	"github.com/mapmarks/overlay/internal/jsbridge"
	"github.com/mapmarks/overlay/internal/logging"
	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/metrics"
	"github.com/mapmarks/overlay/internal/overlay"
	"github.com/mapmarks/overlay/internal/session"
	"github.com/mapmarks/overlay/internal/visibility"
	"github.com/mapmarks/overlay/internal/web"
)

// startDelay gives the page script time to construct the map.
const startDelay = time.Second

func main() {
	slogManager := logging.NewSlogManager()
	slogManager.Setup(nil, "info")
	log := slogManager.Logger()

	var cfg web.OverlayConfig
	if raw, ok := jsbridge.Config(); ok {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			log.Warn("invalid overlay config, using defaults", "error", err)
		}
	} else {
		log.Warn("window.overlayConfig not set, using defaults")
	}

	rec, err := metrics.New()
	if err != nil {
		log.Warn("metrics disabled", "error", err)
	}

	ctx := context.Background()
	slot := &mapview.Slot{}
	client, geocoder := overlay.Clients(jsbridge.Origin(), cfg.GeocoderURL)
	viewCache := session.New(jsbridge.SessionStorage{}, log)
	ui := jsbridge.NewUI(slot, log)

	machine := interaction.New(ctx, interaction.Options{
		UI:       ui,
		Gateway:  client,
		Geocoder: geocoder,
		Cache:    viewCache,
		Slot:     slot,
		Logger:   log,
		Metrics:  rec,
	})
	tracker := visibility.New(slot, cache.NewAnnotations(cfg.Markers), client, log, rec)
	jsbridge.RegisterGlobals(machine, tracker, log)

	engine := acquire.New(jsbridge.Environment{}, slot, acquire.Config{
		MapDivID:   cfg.MapDivID,
		MapVarName: cfg.MapVarName,
		StartDelay: startDelay,
	}, log, rec)

	app := overlay.New(overlay.Options{
		Host:    ui,
		Machine: machine,
		Tracker: tracker,
		Cache:   viewCache,
		Logger:  log,
		Defer:   jsbridge.Defer,
	})
	if err := app.Run(ctx, engine); err != nil {
		log.Error("overlay stopped", "error", err)
	}

	// keep the callbacks registered for the lifetime of the page
	select {}
}
