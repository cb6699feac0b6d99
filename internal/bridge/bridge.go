// Package bridge drives the 16-LED serial device from the annotation server:
// it polls the visible set and the one-shot memory trigger and writes one
// fixed-size frame per tick.
package bridge

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"os"
	"time"

	"github.com/mapmarks/overlay/internal/metrics"
	"github.com/mapmarks/overlay/pkg/core"
)

const (
	DefaultInterval     = 300 * time.Millisecond
	DefaultRestartDelay = 2 * time.Second
)

// Source is the server side of the bridge.
type Source interface {
	VisibleMarkers(ctx context.Context) (core.VisibleMarkersResponse, error)
	MemoryTrigger(ctx context.Context) (core.MemoryTriggerResponse, error)
}

// Opener opens the output device.
type Opener func() (io.WriteCloser, error)

// OpenDevice opens a character device such as /dev/ttyACM0 for writing.
// Line settings are left to the OS defaults.
func OpenDevice(path string) Opener {
	return func() (io.WriteCloser, error) {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return f, nil
	}
}

// Bridge polls a Source and writes frames to a device.
type Bridge struct {
	src          Source
	open         Opener
	log          *slog.Logger
	rec          *metrics.Recorder
	interval     time.Duration
	restartDelay time.Duration

	dev io.WriteCloser
}

// New creates a bridge with the default timings.
func New(src Source, open Opener, log *slog.Logger, rec *metrics.Recorder) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		src:          src,
		open:         open,
		log:          log,
		rec:          rec,
		interval:     DefaultInterval,
		restartDelay: DefaultRestartDelay,
	}
}

// WithTimings overrides the poll interval and the delay before a failed
// device is reopened. Zero values keep the current setting.
func (b *Bridge) WithTimings(interval, restartDelay time.Duration) *Bridge {
	if interval > 0 {
		b.interval = interval
	}
	if restartDelay > 0 {
		b.restartDelay = restartDelay
	}
	return b
}

// Run writes a frame every interval until ctx is cancelled. A device that
// cannot be opened or written is closed and reopened after restartDelay.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.closeDevice()

	for {
		if err := b.ensureDevice(); err != nil {
			b.log.Error("LED device unavailable", "error", err, "retryIn", b.restartDelay)
			if !sleep(ctx, b.restartDelay) {
				return ctx.Err()
			}
			continue
		}

		if !sleep(ctx, b.interval) {
			return ctx.Err()
		}
		if err := b.Tick(ctx); err != nil {
			b.log.Error("LED write failed", "error", err)
			b.closeDevice()
			if !sleep(ctx, b.restartDelay) {
				return ctx.Err()
			}
		}
	}
}

// Tick sends one frame. A pending memory trigger wins over the visible set.
func (b *Bridge) Tick(ctx context.Context) error {
	if err := b.ensureDevice(); err != nil {
		return err
	}

	if frame, ok := b.trigger(ctx); ok {
		if err := b.write(frame); err != nil {
			return err
		}
		b.rec.BridgePacket(ctx, "trigger")
		b.log.Info("Memory trigger sent",
			"header", fmt.Sprintf("%x", frame[:4]),
			"marker", frame[4],
			"rgb", []int{int(frame[5]), int(frame[6]), int(frame[7])})
		return nil
	}

	var markers []core.VisibleMarker
	resp, err := b.src.VisibleMarkers(ctx)
	if err != nil {
		b.log.Warn("Failed to fetch visible markers", "error", err)
	} else {
		markers = resp.VisibleMarkers
	}

	frame := VisiblePacket(markers)
	if err := b.write(frame); err != nil {
		return err
	}
	b.rec.BridgePacket(ctx, "regular")
	mask := binary.BigEndian.Uint16(frame)
	b.log.Debug("Regular frame sent",
		"active", bits.OnesCount16(mask),
		"position", fmt.Sprintf("0b%016b", mask))
	return nil
}

func (b *Bridge) trigger(ctx context.Context) ([]byte, bool) {
	resp, err := b.src.MemoryTrigger(ctx)
	if err != nil {
		b.log.Warn("Memory trigger request failed", "error", err)
		return nil, false
	}
	if !resp.HasTrigger {
		return nil, false
	}
	frame, err := TriggerBytes(resp.TriggerData)
	if err != nil {
		b.log.Error("Discarding memory trigger", "error", err)
		return nil, false
	}
	return frame, true
}

func (b *Bridge) ensureDevice() error {
	if b.dev != nil {
		return nil
	}
	dev, err := b.open()
	if err != nil {
		return err
	}
	b.dev = dev
	b.log.Info("LED device opened")
	return nil
}

func (b *Bridge) write(frame []byte) error {
	if _, err := b.dev.Write(frame); err != nil {
		return err
	}
	return nil
}

func (b *Bridge) closeDevice() {
	if b.dev == nil {
		return
	}
	if err := b.dev.Close(); err != nil {
		b.log.Warn("Failed to close LED device", "error", err)
	}
	b.dev = nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
