// Package session keeps the map viewport across the reload that follows a
// successful mutation.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/pkg/core"
)

const (
	Key    = "mapState"
	MaxAge = 30 * time.Second
)

// Storage is a string key/value store scoped to the browser tab.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Cache saves and restores a single ViewportState. Storage failures are
// logged and never returned to the caller.
type Cache struct {
	store Storage
	log   *slog.Logger
	now   func() time.Time
}

func New(store Storage, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{store: store, log: log, now: time.Now}
}

// WithClock replaces the time source.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Save records the current centre and zoom of m.
func (c *Cache) Save(m mapview.Map) {
	if m == nil {
		return
	}
	center := m.Center()
	state := core.ViewportState{
		Lat:       center.Lat,
		Lng:       center.Lng,
		Zoom:      m.Zoom(),
		Timestamp: c.now().UnixMilli(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		c.log.Warn("could not encode map state", "error", err)
		return
	}
	if err := c.store.Set(Key, string(data)); err != nil {
		c.log.Warn("could not save map state", "error", err)
		return
	}
	c.log.Debug("map state saved", "lat", state.Lat, "lng", state.Lng, "zoom", state.Zoom)
}

// Restore applies a fresh saved state to m. The entry is removed whether it
// was applied or found stale. It reports whether the view was changed.
func (c *Cache) Restore(m mapview.Map) bool {
	if m == nil {
		return false
	}
	raw, ok, err := c.store.Get(Key)
	if err != nil {
		c.log.Warn("could not read map state", "error", err)
		return false
	}
	if !ok {
		return false
	}

	var state core.ViewportState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		c.log.Warn("could not decode map state", "error", err)
		c.Discard()
		return false
	}

	applied := false
	if state.Age(c.now()) < MaxAge {
		c.log.Info("restoring map state", "lat", state.Lat, "lng", state.Lng, "zoom", state.Zoom)
		m.SetView(state.Center(), state.Zoom)
		applied = true
	} else {
		c.log.Info("map state too old, not restoring")
	}
	c.Discard()
	return applied
}

// Discard removes any saved state.
func (c *Cache) Discard() {
	if err := c.store.Remove(Key); err != nil {
		c.log.Warn("could not clear map state", "error", err)
	}
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
