package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mapmarks/overlay/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu         sync.Mutex
	visible    []core.VisibleMarker
	visibleErr error
	triggers   []core.MemoryTriggerResponse
}

func (f *fakeSource) VisibleMarkers(context.Context) (core.VisibleMarkersResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visibleErr != nil {
		return core.VisibleMarkersResponse{}, f.visibleErr
	}
	return core.VisibleMarkersResponse{Status: core.StatusSuccess, VisibleMarkers: f.visible}, nil
}

func (f *fakeSource) MemoryTrigger(context.Context) (core.MemoryTriggerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.triggers) == 0 {
		return core.MemoryTriggerResponse{Status: core.StatusSuccess}, nil
	}
	t := f.triggers[0]
	f.triggers = f.triggers[1:]
	return t, nil
}

type device struct {
	mu       sync.Mutex
	frames   [][]byte
	failNext bool
	closed   bool
}

func (d *device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext {
		d.failNext = false
		return 0, errors.New("device unplugged")
	}
	d.frames = append(d.frames, bytes.Clone(p))
	return len(p), nil
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *device) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

func openerFor(devs ...*device) (Opener, *int) {
	opened := 0
	return func() (io.WriteCloser, error) {
		if opened >= len(devs) {
			return nil, errors.New("no device")
		}
		d := devs[opened]
		opened++
		return d, nil
	}, &opened
}

func TestTick_TriggerHasPriority(t *testing.T) {
	src := &fakeSource{
		visible: []core.VisibleMarker{{Name: "A (1)", Color: "#ffffff"}},
		triggers: []core.MemoryTriggerResponse{{
			HasTrigger:  true,
			TriggerData: TriggerInts(MemoryTrigger(2, 1, 2, 3)),
		}},
	}
	dev := &device{}
	open, _ := openerFor(dev)
	b := New(src, open, nil, nil)

	require.NoError(t, b.Tick(context.Background()))
	require.NoError(t, b.Tick(context.Background()))

	require.Len(t, dev.frames, 2)
	assert.Equal(t, MemoryTrigger(2, 1, 2, 3), dev.frames[0])
	assert.Equal(t, []byte{0x80, 0x00}, dev.frames[1][:2])
}

func TestTick_InvalidTriggerFallsBackToRegular(t *testing.T) {
	src := &fakeSource{triggers: []core.MemoryTriggerResponse{{HasTrigger: true, TriggerData: []int{1, 2}}}}
	dev := &device{}
	open, _ := openerFor(dev)

	require.NoError(t, New(src, open, nil, nil).Tick(context.Background()))
	require.Len(t, dev.frames, 1)
	assert.Equal(t, make([]byte, PacketSize), dev.frames[0])
}

func TestTick_FetchErrorSendsEmptyFrame(t *testing.T) {
	src := &fakeSource{visibleErr: errors.New("server down")}
	dev := &device{}
	open, _ := openerFor(dev)

	require.NoError(t, New(src, open, nil, nil).Tick(context.Background()))
	require.Len(t, dev.frames, 1)
	assert.Equal(t, make([]byte, PacketSize), dev.frames[0])
}

func TestTick_OpenFailure(t *testing.T) {
	open, _ := openerFor()
	err := New(&fakeSource{}, open, nil, nil).Tick(context.Background())
	assert.Error(t, err)
}

func TestRun_ReopensAfterWriteError(t *testing.T) {
	first := &device{failNext: true}
	second := &device{}
	open, opened := openerFor(first, second)

	b := New(&fakeSource{}, open, nil, nil).WithTimings(5*time.Millisecond, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool { return second.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, 2, *opened)
	first.mu.Lock()
	assert.True(t, first.closed)
	first.mu.Unlock()
	second.mu.Lock()
	assert.True(t, second.closed, "device closed on shutdown")
	second.mu.Unlock()
}
