// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/mapmarks/overlay/pkg/core"
)

// ErrNotFound is returned when a marker or memory does not exist.
var ErrNotFound = errors.New("not found")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Markers. AddMarker assigns and returns the new id.
	AddMarker(ctx context.Context, rec core.MarkerRecord) (string, error)
	GetMarker(ctx context.Context, id string) (core.MarkerRecord, error)
	// UpdateMarker replaces the description; an empty color keeps the old one.
	UpdateMarker(ctx context.Context, id, popupText, color string) error
	// DeleteMarker removes the marker and its memory.
	DeleteMarker(ctx context.Context, id string) error
	ListMarkers(ctx context.Context) ([]core.StoredMarker, error)

	// Memories, at most one per marker.
	SetMemory(ctx context.Context, markerID, text string) error
	GetMemory(ctx context.Context, markerID string) (string, error)
}

// VisibilityRecorder is an optional interface for backends that keep a
// history of visibility reports.
type VisibilityRecorder interface {
	RecordVisibility(ctx context.Context, markers []core.VisibleMarker) error
}
