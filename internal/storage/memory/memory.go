// internal/storage/memory/memory.go
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/mapmarks/overlay/internal/config"
	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/pkg/core"
)

// document is the on-disk layout. paths is carried through untouched.
type document struct {
	Markers  json.RawMessage   `json:"markers"`
	Paths    json.RawMessage   `json:"paths"`
	Memories map[string]string `json:"memories"`
}

// Backend keeps markers in memory and rewrites a JSON file after every
// change. With an empty path nothing is persisted.
type Backend struct {
	cfg config.MemoryConfig

	order    []string // marker ids in insertion order
	markers  map[string]core.MarkerRecord
	memories map[string]string
	paths    json.RawMessage

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		markers:  make(map[string]core.MarkerRecord),
		memories: make(map[string]string),
	}
}

// Init loads the storage file if it exists.
func (b *Backend) Init() error {
	if b.cfg.Path == "" {
		return nil
	}
	data, err := os.ReadFile(b.cfg.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading storage file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("error parsing storage file %s: %w", b.cfg.Path, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(doc.Markers) > 0 {
		if err := json.Unmarshal(doc.Markers, &b.markers); err != nil {
			return fmt.Errorf("error parsing markers: %w", err)
		}
		order, err := objectKeys(doc.Markers)
		if err != nil {
			return fmt.Errorf("error parsing markers: %w", err)
		}
		b.order = order
	}
	if b.markers == nil {
		b.markers = make(map[string]core.MarkerRecord)
	}
	if doc.Memories != nil {
		b.memories = doc.Memories
	}
	b.paths = doc.Paths
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// AddMarker stores rec under a fresh id.
func (b *Backend) AddMarker(_ context.Context, rec core.MarkerRecord) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.markers[id] = rec
	b.order = append(b.order, id)
	return id, b.save()
}

// GetMarker returns the marker stored under id.
func (b *Backend) GetMarker(_ context.Context, id string) (core.MarkerRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.markers[id]
	if !ok {
		return core.MarkerRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

// UpdateMarker changes the description and, when given, the color.
func (b *Backend) UpdateMarker(_ context.Context, id, popupText, color string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.markers[id]
	if !ok {
		return storage.ErrNotFound
	}
	rec.PopupText = popupText
	if color != "" {
		rec.Color = color
	}
	b.markers[id] = rec
	return b.save()
}

// DeleteMarker removes the marker and its memory.
func (b *Backend) DeleteMarker(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.markers[id]; !ok {
		return storage.ErrNotFound
	}
	delete(b.markers, id)
	delete(b.memories, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return b.save()
}

// ListMarkers returns all markers in insertion order.
func (b *Backend) ListMarkers(_ context.Context) ([]core.StoredMarker, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.StoredMarker, 0, len(b.order))
	for _, id := range b.order {
		_, hasMemory := b.memories[id]
		out = append(out, core.StoredMarker{ID: id, MarkerRecord: b.markers[id], HasMemory: hasMemory})
	}
	return out, nil
}

// SetMemory attaches text to an existing marker, replacing any previous memory.
func (b *Backend) SetMemory(_ context.Context, markerID, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.markers[markerID]; !ok {
		return storage.ErrNotFound
	}
	b.memories[markerID] = text
	return b.save()
}

// GetMemory returns the memory attached to a marker.
func (b *Backend) GetMemory(_ context.Context, markerID string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	text, ok := b.memories[markerID]
	if !ok || text == "" {
		return "", storage.ErrNotFound
	}
	return text, nil
}

// save writes the document. Callers hold the write lock.
func (b *Backend) save() error {
	if b.cfg.Path == "" {
		return nil
	}

	var markers bytes.Buffer
	markers.WriteByte('{')
	for i, id := range b.order {
		if i > 0 {
			markers.WriteByte(',')
		}
		key, _ := json.Marshal(id)
		val, err := json.Marshal(b.markers[id])
		if err != nil {
			return err
		}
		markers.Write(key)
		markers.WriteByte(':')
		markers.Write(val)
	}
	markers.WriteByte('}')

	paths := b.paths
	if len(paths) == 0 {
		paths = json.RawMessage(`{}`)
	}
	data, err := json.MarshalIndent(document{
		Markers:  markers.Bytes(),
		Paths:    paths,
		Memories: b.memories,
	}, "", "    ")
	if err != nil {
		return err
	}

	tmp := b.cfg.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("error writing storage file: %w", err)
	}
	return os.Rename(tmp, b.cfg.Path)
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
