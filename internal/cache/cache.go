package cache

import (
	"sync"

	"github.com/mapmarks/overlay/pkg/core"
)

// VisibleSet keeps the most recent visibility report received by the server.
type VisibleSet struct {
	mu      sync.RWMutex
	markers []core.VisibleMarker
}

func NewVisibleSet() *VisibleSet {
	return &VisibleSet{markers: []core.VisibleMarker{}}
}

// Replace stores a new report, dropping the previous one.
func (s *VisibleSet) Replace(markers []core.VisibleMarker) {
	cp := make([]core.VisibleMarker, len(markers))
	copy(cp, markers)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = cp
}

// Snapshot returns a copy of the current report.
func (s *VisibleSet) Snapshot() []core.VisibleMarker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]core.VisibleMarker, len(s.markers))
	copy(cp, s.markers)
	return cp
}

// OneShot holds at most one value that is cleared when taken.
type OneShot[T any] struct {
	mu    sync.Mutex
	value *T
}

// Arm stores v, replacing any value not yet taken.
func (o *OneShot[T]) Arm(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = &v
}

// Take returns the armed value and clears it.
func (o *OneShot[T]) Take() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.value == nil {
		var zero T
		return zero, false
	}
	v := *o.value
	o.value = nil
	return v, true
}
