package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dougsko/rigd/pkg/protocol"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/storage"
)

const subscriberBuffer = 64

// monitor follows the radio: through transceive frames when the model
// sends them and the config asks for it, by polling otherwise.
func (e *Engine) monitor(ctx context.Context) {
	defer e.wg.Done()

	poll := time.Duration(e.config.Radio.PollInterval) * time.Millisecond
	if poll <= 0 {
		poll = time.Second
	}

	if e.config.Radio.Transceive {
		if e.handle.Caps().Has(rig.CapTransceive) {
			e.radioLog.Info("engine", "listening for transceive frames")
			err := e.handle.Listen(ctx, poll)
			if err != nil && !errors.Is(err, context.Canceled) && e.isRunning() {
				e.radioLog.Error("engine", "transceive listener stopped", map[string]interface{}{"error": err.Error()})
				e.setConnected(false)
			}
			return
		}
		e.radioLog.Warnf("engine", "no transceive support, polling every %s", poll)
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.poll()
		}
	}
}

func (e *Engine) poll() {
	caps := e.handle.Caps()
	if caps.Has(rig.CapGetFreq) {
		f, err := e.handle.GetFreq(rig.VFOCurrent)
		if err != nil {
			e.pollFailed(err)
			return
		}
		e.noteFreq(int64(f), storage.SourcePoll)
	}
	if caps.Has(rig.CapGetMode) {
		mode, width, err := e.handle.GetMode(rig.VFOCurrent)
		if err != nil {
			e.pollFailed(err)
			return
		}
		e.noteMode(modeName(mode), width, storage.SourcePoll)
	}
	e.setConnected(true)
}

func (e *Engine) pollFailed(err error) {
	e.radioLog.Debug("engine", "poll failed", map[string]interface{}{"error": err.Error()})
	if errors.Is(err, rig.ErrTimeout) || errors.Is(err, rig.ErrIO) {
		e.setConnected(false)
	}
}

func (e *Engine) setConnected(on bool) {
	e.mutex.Lock()
	changed := e.connected != on
	e.connected = on
	e.mutex.Unlock()
	if changed {
		e.radioLog.Info("engine", "radio connection changed", map[string]interface{}{"connected": on})
	}
}

// onRigEvent runs on the listener goroutine for every transceive event.
func (e *Engine) onRigEvent(ev rig.Event) {
	e.mutex.Lock()
	switch ev.Kind {
	case rig.EventFreq:
		e.frequency = int64(ev.Freq)
	case rig.EventMode:
		e.mode, e.width = modeName(ev.Mode), ev.Width
	}
	e.connected = true
	e.mutex.Unlock()

	e.record(storage.FromRigEvent("", ev, storage.SourceTransceive))
}

// noteFreq updates the cached frequency. Polled values are journaled only
// when they differ from what is cached.
func (e *Engine) noteFreq(hz int64, source string) {
	e.mutex.Lock()
	unchanged := hz == e.frequency
	e.frequency = hz
	e.mutex.Unlock()
	if unchanged && source == storage.SourcePoll {
		return
	}
	e.record(storage.RigEvent{Kind: "freq", Source: source, VFO: rig.VFOCurrent.String(), Frequency: hz})
}

func (e *Engine) noteMode(mode string, width int, source string) {
	e.mutex.Lock()
	unchanged := mode == e.mode && width == e.width
	e.mode, e.width = mode, width
	e.mutex.Unlock()
	if unchanged && source == storage.SourcePoll {
		return
	}
	e.record(storage.RigEvent{Kind: "mode", Source: source, VFO: rig.VFOCurrent.String(), Mode: mode, Width: width})
}

// record journals ev and hands it to every subscriber. A subscriber that
// is not keeping up misses events rather than stalling the radio.
func (e *Engine) record(ev storage.RigEvent) {
	if e.handle != nil {
		ev.SessionID = e.handle.ID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	if e.store != nil {
		id, err := e.store.StoreEvent(ev)
		if err != nil {
			e.logger.Warn("engine", "failed to store event", map[string]interface{}{"error": err.Error()})
		} else {
			ev.ID = id
		}
	}

	e.subMutex.Lock()
	defer e.subMutex.Unlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of radio events and a function that ends
// the subscription. The channel is closed when the engine stops.
func (e *Engine) Subscribe() (<-chan storage.RigEvent, func()) {
	e.subMutex.Lock()
	defer e.subMutex.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan storage.RigEvent, subscriberBuffer)
	e.subscribers[id] = ch

	cancel := func() {
		e.subMutex.Lock()
		defer e.subMutex.Unlock()
		if c, ok := e.subscribers[id]; ok {
			close(c)
			delete(e.subscribers, id)
		}
	}
	return ch, cancel
}

// Status returns the cached daemon and radio state
func (e *Engine) Status() protocol.Status {
	// the handle lock is taken before the engine lock, never inside it
	var vfo string
	if e.handle != nil {
		vfo = e.handle.Cached().VFO.String()
	}

	e.mutex.RLock()
	defer e.mutex.RUnlock()

	status := protocol.Status{
		Model:     e.config.Radio.Model,
		Device:    e.config.Radio.Device,
		Connected: e.connected,
		Frequency: e.frequency,
		Mode:      e.mode,
		Width:     e.width,
		PTT:       e.pttOn,
		Uptime:    time.Since(e.startTime).Truncate(time.Second).String(),
		StartTime: e.startTime,
		Version:   Version,
	}
	if e.handle != nil {
		status.ModelName = e.handle.Caps().ModelName
		status.Session = e.handle.ID()
		status.VFO = vfo
	}
	return status
}
