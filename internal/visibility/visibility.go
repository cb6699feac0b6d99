// Package visibility reports which annotations fall inside the current map
// viewport, on a fixed interval and after every pan or zoom.
package visibility

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/metrics"
	"github.com/mapmarks/overlay/pkg/core"
)

const DefaultInterval = time.Second

// Reporter sends a visibility report. Failures are logged by the tracker
// and never retried.
type Reporter interface {
	ReportVisible(ctx context.Context, markers []core.VisibleMarker) error
}

// Source lists the annotations known to the page.
type Source interface {
	All() []core.Annotation
}

type Tracker struct {
	slot     *mapview.Slot
	src      Source
	rep      Reporter
	log      *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	registered bool
}

func New(slot *mapview.Slot, src Source, rep Reporter, log *slog.Logger, rec *metrics.Recorder) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		slot:     slot,
		src:      src,
		rep:      rep,
		log:      log,
		metrics:  rec,
		interval: DefaultInterval,
	}
}

// WithInterval overrides the reporting period.
func (t *Tracker) WithInterval(d time.Duration) *Tracker {
	t.interval = d
	return t
}

// Start reports once immediately and then every interval until ctx ends or
// Stop is called. A second Start replaces the running timer.
func (t *Tracker) Start(ctx context.Context) {
	mp, ok := t.slot.Get()
	if !ok {
		return
	}

	t.Stop()

	t.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.ctx, t.cancel, t.done = runCtx, cancel, done
	register := !t.registered
	t.registered = true
	t.mu.Unlock()

	if register {
		mp.On(mapview.EventMoveEnd, t.onViewChange)
		mp.On(mapview.EventZoomEnd, t.onViewChange)
	}

	t.report(runCtx)
	go t.loop(runCtx, done)
}

// Stop cancels the running timer, if any, and waits for it to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.ctx, t.cancel, t.done = nil, nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Running reports whether a timer is active.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Visible returns the annotations inside the current viewport, boundary
// included, without contacting the server.
func (t *Tracker) Visible() []core.VisibleMarker {
	mp, ok := t.slot.Get()
	if !ok || t.src == nil {
		return nil
	}
	bounds := mp.Bounds()
	visible := []core.VisibleMarker{}
	for _, a := range t.src.All() {
		if bounds.Contains(a.Position()) {
			visible = append(visible, core.VisibleMarker{
				ID:    a.ID,
				Name:  a.Description,
				Lat:   a.Lat,
				Lon:   a.Lon,
				Color: a.Color,
			})
		}
	}
	return visible
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.report(ctx)
		}
	}
}

func (t *Tracker) onViewChange() {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()
	if ctx == nil {
		return
	}
	t.report(ctx)
}

// report sends the current subset without waiting for the response.
func (t *Tracker) report(ctx context.Context) {
	visible := t.Visible()
	if visible == nil {
		return
	}
	t.metrics.VisibilityReport(ctx, len(visible))
	go func() {
		if err := t.rep.ReportVisible(ctx, visible); err != nil {
			t.log.Debug("visible markers update failed", "error", err)
		}
	}()
}
