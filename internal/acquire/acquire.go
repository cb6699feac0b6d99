// Package acquire locates the live map instance on a page whose map may be
// constructed late, under an unknown name, or not at all.
package acquire

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/metrics"
)

const (
	DefaultMaxAttempts = 50
	DefaultInterval    = 200 * time.Millisecond

	// ContainerClass marks elements the widget has rendered into.
	ContainerClass = "leaflet-container"

	scanPrefix = "map_"
)

var ErrExhausted = errors.New("no map instance found")

type Status int

const (
	Pending Status = iota
	Found
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return "pending"
	}
}

// Strategy names the probe that produced the handle.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyElement
	StrategyGlobal
	StrategyScan
	StrategyContainer
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyElement:
		return "element"
	case StrategyGlobal:
		return "global"
	case StrategyScan:
		return "scan"
	case StrategyContainer:
		return "container"
	case StrategyFallback:
		return "fallback"
	default:
		return "none"
	}
}

type Result struct {
	Status   Status
	Map      mapview.Map
	Strategy Strategy
}

type Config struct {
	MapDivID   string
	MapVarName string

	MaxAttempts int
	Interval    time.Duration
	// StartDelay is waited once before the first attempt.
	StartDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// Engine runs the detection protocol. Once a terminal result is reached
// every further Attempt returns it unchanged.
type Engine struct {
	env     Environment
	slot    *mapview.Slot
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Recorder

	// OnFound runs synchronously after the handle is stored.
	OnFound func(mapview.Map)

	mu       sync.Mutex
	attempts int
	result   Result
}

func New(env Environment, slot *mapview.Slot, cfg Config, log *slog.Logger, rec *metrics.Recorder) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		env:     env,
		slot:    slot,
		cfg:     cfg.withDefaults(),
		log:     log,
		metrics: rec,
	}
}

// Attempts returns the number of probe rounds run so far.
func (e *Engine) Attempts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts
}

func (e *Engine) Result() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Attempt runs one probe round.
func (e *Engine) Attempt() Result {
	e.mu.Lock()
	if e.result.Status != Pending {
		r := e.result
		e.mu.Unlock()
		return r
	}

	e.attempts++
	e.log.Debug("map detection attempt", "attempt", e.attempts)

	m, strategy := e.probe()
	if m == nil && e.attempts >= e.cfg.MaxAttempts {
		e.log.Error("could not find map, trying fallback detection", "attempts", e.attempts)
		m, strategy = e.fallback()
		if m == nil {
			e.log.Error("no map instance found")
			e.result = Result{Status: Exhausted}
		}
	}
	if m != nil {
		if err := e.slot.Set(m); err != nil {
			e.log.Warn("map handle slot already filled", "error", err)
		}
		e.result = Result{Status: Found, Map: m, Strategy: strategy}
		e.log.Info("found map", "strategy", strategy.String(), "attempt", e.attempts)
	}
	r := e.result
	e.mu.Unlock()

	e.metrics.AcquireAttempt(context.Background(), strategy.String())
	if r.Status == Found && e.OnFound != nil {
		e.OnFound(r.Map)
	}
	return r
}

// Run attempts detection every Interval until a terminal result or ctx ends.
func (e *Engine) Run(ctx context.Context) (mapview.Map, error) {
	if e.cfg.StartDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.cfg.StartDelay):
		}
	}

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		r := e.Attempt()
		switch r.Status {
		case Found:
			return r.Map, nil
		case Exhausted:
			return nil, ErrExhausted
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// probe evaluates the strategies in priority order; the first match wins.
func (e *Engine) probe() (mapview.Map, Strategy) {
	if node := e.env.ElementByID(e.cfg.MapDivID); node != nil {
		if obj := node.MapInstance(); obj != nil {
			return obj.Map(), StrategyElement
		}
	}

	if e.cfg.MapVarName != "" {
		if obj := e.env.Global(e.cfg.MapVarName); obj != nil {
			return obj.Map(), StrategyGlobal
		}
	}

	for _, name := range e.env.GlobalNames() {
		if !strings.HasPrefix(name, scanPrefix) {
			continue
		}
		obj := e.env.Global(name)
		if obj != nil && obj.Callable("on") && obj.Callable("getCenter") {
			return obj.Map(), StrategyScan
		}
	}

	if nodes := e.env.ElementsByClass(ContainerClass); len(nodes) > 0 {
		if obj := nodes[0].MapInstance(); obj != nil {
			return obj.Map(), StrategyContainer
		}
	}

	return nil, StrategyNone
}

func (e *Engine) fallback() (mapview.Map, Strategy) {
	for _, name := range e.env.GlobalNames() {
		obj := e.env.Global(name)
		if obj != nil && obj.HasOwn("_container") && obj.HasOwn("_zoom") {
			return obj.Map(), StrategyFallback
		}
	}
	return nil, StrategyNone
}
