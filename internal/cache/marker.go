package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mapmarks/overlay/pkg/core"
)

// Annotations holds the markers rendered with the page, keyed by id. It is
// filled once at page load and never mutated locally; changes arrive by
// reloading the page.
type Annotations struct {
	mu    sync.RWMutex
	byID  map[string]core.Annotation
	order []string
}

// NewAnnotations creates a cache holding list in the given order. Later
// duplicates of an id replace earlier ones in place.
func NewAnnotations(list []core.Annotation) *Annotations {
	c := &Annotations{byID: make(map[string]core.Annotation, len(list))}
	for _, a := range list {
		if _, ok := c.byID[a.ID]; !ok {
			c.order = append(c.order, a.ID)
		}
		c.byID[a.ID] = a
	}
	return c
}

// ParseAnnotations decodes the JSON array injected into the page.
func ParseAnnotations(data []byte) (*Annotations, error) {
	if len(data) == 0 {
		return NewAnnotations(nil), nil
	}
	var list []core.Annotation
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode markers: %w", err)
	}
	return NewAnnotations(list), nil
}

// Get retrieves an annotation by id
func (c *Annotations) Get(id string) (core.Annotation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.byID[id]
	return a, ok
}

// All returns every annotation in load order.
func (c *Annotations) All() []core.Annotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Annotation, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Annotations) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
