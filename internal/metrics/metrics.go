// Package metrics holds the OpenTelemetry counters shared by the overlay,
// the server and the LED bridge. Uses the global meter, so everything is a
// no-op until an SDK provider is installed.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/mapmarks/overlay/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Recorder is safe to use as a nil pointer.
type Recorder struct {
	mutations         metric.Int64Counter
	visibilityReports metric.Int64Counter
	acquireAttempts   metric.Int64Counter
	bridgePackets     metric.Int64Counter
}

func New() (*Recorder, error) {
	m := meter()
	r := &Recorder{}
	var err error

	r.mutations, err = m.Int64Counter("markers.mutations",
		metric.WithDescription("Marker create, update, delete and memory requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create mutations counter: %w", err)
	}

	r.visibilityReports, err = m.Int64Counter("visibility.reports",
		metric.WithDescription("Visible-marker reports sent or received"),
	)
	if err != nil {
		return nil, fmt.Errorf("create visibility counter: %w", err)
	}

	r.acquireAttempts, err = m.Int64Counter("acquire.attempts",
		metric.WithDescription("Map handle detection attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("create acquire counter: %w", err)
	}

	r.bridgePackets, err = m.Int64Counter("bridge.packets",
		metric.WithDescription("Packets written to the LED device"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bridge counter: %w", err)
	}

	return r, nil
}

// Mutation counts one marker mutation by operation and outcome.
func (r *Recorder) Mutation(ctx context.Context, op, outcome string) {
	if r == nil {
		return
	}
	r.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func (r *Recorder) VisibilityReport(ctx context.Context, visible int) {
	if r == nil {
		return
	}
	r.visibilityReports.Add(ctx, 1, metric.WithAttributes(attribute.Int("visible", visible)))
}

func (r *Recorder) AcquireAttempt(ctx context.Context, strategy string) {
	if r == nil {
		return
	}
	r.acquireAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
}

// BridgePacket counts one packet by kind ("trigger" or "regular").
func (r *Recorder) BridgePacket(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.bridgePackets.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
