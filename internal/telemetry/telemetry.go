// Package telemetry moves visibility reports off the request path. Reports
// are queued in memory and drained by a background loop into the slower
// recorders: the SQL history table and InfluxDB.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/pkg/core"
)

const (
	DefaultInterval = time.Second
	// DefaultLimit bounds the queue; the oldest reports are dropped first.
	DefaultLimit = 256
)

// Writer queues reports and hands them to every recorder in arrival order.
// It is itself a storage.VisibilityRecorder that never blocks.
type Writer struct {
	recorders []storage.VisibilityRecorder
	log       *slog.Logger
	interval  time.Duration
	limit     int

	mu      sync.Mutex
	pending [][]core.VisibleMarker
	dropped int

	wake chan struct{}
}

var _ storage.VisibilityRecorder = (*Writer)(nil)

func New(log *slog.Logger, recorders ...storage.VisibilityRecorder) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{
		recorders: recorders,
		log:       log,
		interval:  DefaultInterval,
		limit:     DefaultLimit,
		wake:      make(chan struct{}, 1),
	}
}

// WithLimit changes the queue bound. Values below one are ignored.
func (w *Writer) WithLimit(n int) *Writer {
	if n > 0 {
		w.limit = n
	}
	return w
}

// WithInterval changes how often the queue is drained without a wake-up.
func (w *Writer) WithInterval(d time.Duration) *Writer {
	if d > 0 {
		w.interval = d
	}
	return w
}

// Recorders returns the number of downstream recorders.
func (w *Writer) Recorders() int { return len(w.recorders) }

// RecordVisibility queues a copy of markers.
func (w *Writer) RecordVisibility(_ context.Context, markers []core.VisibleMarker) error {
	w.Push(markers)
	return nil
}

// Push queues a copy of markers and wakes the drain loop.
func (w *Writer) Push(markers []core.VisibleMarker) {
	report := make([]core.VisibleMarker, len(markers))
	copy(report, markers)

	w.mu.Lock()
	w.pending = append(w.pending, report)
	if over := len(w.pending) - w.limit; over > 0 {
		w.pending = w.pending[over:]
		w.dropped += over
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued reports.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Dropped returns how many reports were discarded because the queue was full.
func (w *Writer) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *Writer) getAndEmpty() [][]core.VisibleMarker {
	w.mu.Lock()
	defer w.mu.Unlock()
	items := w.pending
	w.pending = nil
	return items
}

// Flush hands every queued report to every recorder. A failing recorder
// does not stop the others; all errors are returned joined.
func (w *Writer) Flush(ctx context.Context) error {
	reports := w.getAndEmpty()
	if len(reports) == 0 {
		return nil
	}

	var errs []error
	for _, r := range w.recorders {
		for _, markers := range reports {
			if err := r.RecordVisibility(ctx, markers); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	if len(errs) > 0 {
		w.log.Warn("Failed to record visibility", "reports", len(reports), "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

// Run drains the queue whenever a report arrives and every interval, until
// ctx is cancelled. Reports still queued at that point are flushed before
// Run returns.
func (w *Writer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Flush(context.WithoutCancel(ctx))
			return
		case <-w.wake:
		case <-ticker.C:
		}
		_ = w.Flush(ctx)
	}
}
