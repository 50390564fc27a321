package civ

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	freqs  []rig.Freq
	modes  []rig.Mode
	events []rig.Event
}

func (l *eventLog) callbacks() rig.Callbacks {
	return rig.Callbacks{
		Freq: func(vfo rig.VFO, f rig.Freq) {
			l.mu.Lock()
			l.freqs = append(l.freqs, f)
			l.mu.Unlock()
		},
		Mode: func(vfo rig.VFO, mode rig.Mode, width int) {
			l.mu.Lock()
			l.modes = append(l.modes, mode)
			l.mu.Unlock()
		},
		Event: func(ev rig.Event) {
			l.mu.Lock()
			l.events = append(l.events, ev)
			l.mu.Unlock()
		},
	}
}

func (l *eventLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func TestEventFrequency(t *testing.T) {
	events := &eventLog{}
	h, _, m, _ := openSim(t, ic7300, rig.WithCallbacks(events.callbacks()))

	m.Inject([]byte{0xfe, 0xfe, 0x00, 0x94, 0x00, 0x00, 0x00, 0x20, 0x14, 0x00, 0xfd})
	n, err := h.DecodeEvent(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []rig.Freq{14_200_000}, events.freqs)
	assert.Equal(t, rig.Freq(14_200_000), h.Cached().Freq)
}

func TestEventMode(t *testing.T) {
	events := &eventLog{}
	h, _, m, _ := openSim(t, ic7300, rig.WithCallbacks(events.callbacks()))

	m.Inject([]byte{0xfe, 0xfe, 0x00, 0x94, 0x01, WireUSB, FilterNarrow, 0xfd})
	n, err := h.DecodeEvent(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []rig.Mode{rig.ModeUSB}, events.modes)
	snap := h.Cached()
	assert.Equal(t, rig.ModeUSB, snap.Mode)
	assert.Equal(t, 1800, snap.Width)
}

func TestEventUnknownCommand(t *testing.T) {
	events := &eventLog{}
	h, _, m, logs := openSim(t, ic7300, rig.WithCallbacks(events.callbacks()))

	m.Inject([]byte{0xfe, 0xfe, 0x00, 0x94, 0x1c, 0x00, 0x01, 0xfd})
	n, err := h.DecodeEvent(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, events.count())
	assert.Equal(t, 1, strings.Count(logs.String(), "\n"))
	assert.Contains(t, logs.String(), "unsupported transceive command")
}

func TestEventCollisionDropped(t *testing.T) {
	events := &eventLog{}
	h, _, m, logs := openSim(t, ic7300, rig.WithCallbacks(events.callbacks()))

	m.Inject([]byte{0xfe, 0xfe, 0x00, 0x94, 0x00, 0x00, Collision})
	n, err := h.DecodeEvent(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, logs.String(), "collision")
}

func TestEventForeignSourceStillDecoded(t *testing.T) {
	events := &eventLog{}
	h, _, m, logs := openSim(t, ic7300, rig.WithCallbacks(events.callbacks()))

	m.Inject([]byte{0xfe, 0xfe, 0x00, 0x5e, 0x00, 0x00, 0x40, 0x07, 0x07, 0x00, 0xfd})
	n, err := h.DecodeEvent(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, logs.String(), "unexpected address")
}

func TestEventIdlePoll(t *testing.T) {
	h, _, _, _ := openSim(t, ic7300)

	start := time.Now()
	n, err := h.DecodeEvent(20 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestListenDeliversEvents(t *testing.T) {
	events := &eventLog{}
	h, _, m, _ := openSim(t, ic7300, rig.WithCallbacks(events.callbacks()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Listen(ctx, 10*time.Millisecond) }()

	m.Inject([]byte{0xfe, 0xfe, 0x00, 0x94, 0x00, 0x00, 0x00, 0x20, 0x14, 0x00, 0xfd})
	require.Eventually(t, func() bool { return events.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Listen did not stop")
	}
}
