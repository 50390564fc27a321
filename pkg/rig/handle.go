package rig

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/google/uuid"
)

// PTTLine keys the transmitter without going through the CAT protocol.
type PTTLine interface {
	SetPTT(on bool) error
	PTT() (bool, error)
	Close() error
}

// Callbacks receive unsolicited state changes. They run on the goroutine
// that called DecodeEvent or Listen, after the handle lock is released.
type Callbacks struct {
	Freq  func(vfo VFO, f Freq)
	Mode  func(vfo VFO, mode Mode, width int)
	Event func(ev Event)
}

// Option configures a Handle.
type Option func(*Handle)

// WithTimeout overrides the model's reply timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handle) { h.state.Timeout = d }
}

// WithRetry overrides the model's retry count.
func WithRetry(n int) Option {
	return func(h *Handle) { h.state.Retry = n }
}

// WithWriteDelay overrides the inter-byte write delay.
func WithWriteDelay(d time.Duration) Option {
	return func(h *Handle) { h.state.WriteDelay = d }
}

// WithPostWriteDelay overrides the delay after each frame.
func WithPostWriteDelay(d time.Duration) Option {
	return func(h *Handle) { h.state.PostWriteDelay = d }
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Handle) { h.state.Logger = l }
}

// WithTracer records every frame.
func WithTracer(t FrameTracer) Option {
	return func(h *Handle) { h.state.Tracer = t }
}

// WithPTTLine routes PTT through line instead of the CAT protocol.
func WithPTTLine(line PTTLine) Option {
	return func(h *Handle) { h.ptt = line }
}

// WithCallbacks installs event callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(h *Handle) { h.callbacks = cb }
}

// Handle is one open radio. All operations are serialized by an internal
// lock, which doubles as the transaction-in-progress flag.
type Handle struct {
	id        string
	caps      *Caps
	state     *State
	backend   Backend
	ptt       PTTLine
	callbacks Callbacks

	mu      sync.Mutex
	opened  bool
	closed  bool
	closing atomic.Bool
	conn    atomic.Pointer[attached]
}

// attached is the transport attached by Open, readable by Close without the lock.
type attached struct {
	t transport.Transport
}

// New creates a handle for model, loading its family on first use.
func New(reg *Registry, model Model, opts ...Option) (*Handle, error) {
	if reg == nil {
		reg = Default
	}
	if err := reg.EnsureLoaded(model); err != nil {
		return nil, err
	}
	caps, ok := reg.Lookup(model)
	if !ok {
		return nil, fmt.Errorf("%w: model %d", ErrBackendUnavailable, model)
	}
	if caps.New == nil {
		return nil, fmt.Errorf("%w: model %d has no backend", ErrBackendUnavailable, model)
	}

	h := &Handle{
		id:   uuid.New().String(),
		caps: caps,
		state: &State{
			Caps:           caps,
			Timeout:        caps.Timeout,
			Retry:          caps.Retry,
			WriteDelay:     caps.WriteDelay,
			PostWriteDelay: caps.PostWriteDelay,
			CurrVFO:        VFOCurrent,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.state.Timeout <= 0 {
		h.state.Timeout = time.Second
	}
	if h.state.Retry < 0 {
		return nil, fmt.Errorf("%w: negative retry count", ErrInvalidArgument)
	}

	backend, err := caps.New(h.state)
	if err != nil {
		return nil, err
	}
	h.backend = backend
	return h, nil
}

// ID returns the handle's unique session id.
func (h *Handle) ID() string {
	return h.id
}

// Caps returns the model's capability table.
func (h *Handle) Caps() *Caps {
	return h.caps
}

// Open attaches t and opens the backend. Models with PortNone accept a nil
// transport.
func (h *Handle) Open(t transport.Transport) error {
	if t == nil && h.caps.PortType != PortNone {
		return fmt.Errorf("%w: model %d needs a transport", ErrInvalidArgument, h.caps.Model)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.closing.Load() {
		return transport.ErrClosed
	}
	if h.opened {
		return fmt.Errorf("%w: handle already open", ErrInvalidArgument)
	}

	h.state.Transport = t
	if t != nil {
		h.conn.Store(&attached{t: t})
	}
	if err := h.backend.Open(); err != nil {
		return err
	}
	h.opened = true

	if h.caps.Has(CapGetVFO) {
		if vfo, err := h.backend.GetVFO(); err == nil {
			h.state.CurrVFO = vfo
		}
	}

	h.state.Log().Info("rig", "opened", map[string]interface{}{
		"model": h.caps.ModelName,
		"id":    h.id,
	})
	return nil
}

// Close closes the transport first, so that an in-flight read fails with
// an I/O error, then waits for the in-flight call and closes the backend.
func (h *Handle) Close() error {
	h.closing.Store(true)

	var errs []error
	first := h.conn.Load()
	if first != nil {
		if err := first.t.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	// Open may have attached a transport after the first load.
	if c := h.conn.Load(); c != nil && c != first {
		if err := c.t.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if h.opened {
		if err := h.backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if h.ptt != nil {
		if err := h.ptt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// lock takes the handle lock; the caller must unlock when it returns nil.
func (h *Handle) lock() error {
	if h.closing.Load() {
		return transport.ErrClosed
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return transport.ErrClosed
	}
	if !h.opened {
		h.mu.Unlock()
		return fmt.Errorf("%w: handle not open", ErrIO)
	}
	return nil
}

func (h *Handle) require(op Cap) error {
	if !h.caps.Has(op) {
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, op.Names(), h.caps.ModelName)
	}
	return nil
}

// onVFO runs fn with vfo selected, restoring the previous VFO afterwards.
// The handle lock must be held.
func (h *Handle) onVFO(vfo VFO, fn func() error) error {
	curr := h.state.CurrVFO
	if vfo == VFOCurrent || vfo == curr {
		return fn()
	}
	if !h.caps.Has(CapSetVFO) {
		return fmt.Errorf("%w: cannot select %s on %s", ErrUnsupported, vfo, h.caps.ModelName)
	}
	if h.caps.VFOs&vfo == 0 {
		return fmt.Errorf("%w: %s not available on %s", ErrInvalidArgument, vfo, h.caps.ModelName)
	}

	if err := h.backend.SetVFO(vfo); err != nil {
		return err
	}
	h.state.CurrVFO = vfo

	err := fn()

	if curr != VFOCurrent {
		if rerr := h.backend.SetVFO(curr); rerr != nil {
			if err == nil {
				err = rerr
			}
		} else {
			h.state.CurrVFO = curr
		}
	}
	return err
}

// do validates the capability, takes the lock and runs fn on vfo.
func (h *Handle) do(op Cap, vfo VFO, fn func() error) error {
	if err := h.require(op); err != nil {
		return err
	}
	if err := h.lock(); err != nil {
		return err
	}
	defer h.mu.Unlock()
	return h.onVFO(vfo, fn)
}

// SetFreq tunes vfo to f.
func (h *Handle) SetFreq(vfo VFO, f Freq) error {
	if f <= 0 || !h.caps.InRxRange(f) {
		return fmt.Errorf("%w: frequency %d out of range", ErrInvalidArgument, f)
	}
	return h.do(CapSetFreq, vfo, func() error {
		if err := h.backend.SetFreq(f); err != nil {
			return err
		}
		h.state.CurrFreq = f
		return nil
	})
}

// GetFreq reads the frequency of vfo.
func (h *Handle) GetFreq(vfo VFO) (Freq, error) {
	var f Freq
	err := h.do(CapGetFreq, vfo, func() error {
		var err error
		if f, err = h.backend.GetFreq(); err != nil {
			return err
		}
		h.state.CurrFreq = f
		return nil
	})
	return f, err
}

// SetMode sets the mode and passband of vfo. Width may be PassbandNormal
// or PassbandNoChange.
func (h *Handle) SetMode(vfo VFO, mode Mode, width int) error {
	if !mode.Single() {
		return fmt.Errorf("%w: mode %s", ErrInvalidArgument, mode)
	}
	if width < PassbandNoChange {
		return fmt.Errorf("%w: passband %d", ErrInvalidArgument, width)
	}
	if h.caps.Modes&mode == 0 {
		return fmt.Errorf("%w: mode %s on %s", ErrUnsupported, mode, h.caps.ModelName)
	}
	return h.do(CapSetMode, vfo, func() error {
		if err := h.backend.SetMode(mode, width); err != nil {
			return err
		}
		h.state.CurrMode = mode
		if width != PassbandNoChange {
			h.state.CurrWidth = width
			if width == PassbandNormal {
				h.state.CurrWidth = h.caps.PassbandNormal(mode)
			}
		}
		return nil
	})
}

// GetMode reads the mode and passband of vfo.
func (h *Handle) GetMode(vfo VFO) (Mode, int, error) {
	var (
		mode  Mode
		width int
	)
	err := h.do(CapGetMode, vfo, func() error {
		var err error
		if mode, width, err = h.backend.GetMode(); err != nil {
			return err
		}
		h.state.CurrMode, h.state.CurrWidth = mode, width
		return nil
	})
	return mode, width, err
}

// SetVFO selects vfo.
func (h *Handle) SetVFO(vfo VFO) error {
	if vfo == VFOCurrent {
		return nil
	}
	if h.caps.VFOs&vfo == 0 {
		return fmt.Errorf("%w: %s not available on %s", ErrInvalidArgument, vfo, h.caps.ModelName)
	}
	return h.do(CapSetVFO, VFOCurrent, func() error {
		if err := h.backend.SetVFO(vfo); err != nil {
			return err
		}
		h.state.CurrVFO = vfo
		return nil
	})
}

// GetVFO returns the selected VFO. Models that cannot report it return the
// last VFO selected through this handle.
func (h *Handle) GetVFO() (VFO, error) {
	if !h.caps.Has(CapGetVFO) {
		if err := h.lock(); err != nil {
			return VFONone, err
		}
		defer h.mu.Unlock()
		return h.state.CurrVFO, nil
	}

	var vfo VFO
	err := h.do(CapGetVFO, VFOCurrent, func() error {
		var err error
		if vfo, err = h.backend.GetVFO(); err != nil {
			return err
		}
		h.state.CurrVFO = vfo
		return nil
	})
	return vfo, err
}

// SetPTT keys or unkeys the transmitter.
func (h *Handle) SetPTT(vfo VFO, on bool) error {
	if h.ptt != nil {
		if err := h.lock(); err != nil {
			return err
		}
		defer h.mu.Unlock()
		if err := h.ptt.SetPTT(on); err != nil {
			return err
		}
		h.state.PTT = on
		return nil
	}
	return h.do(CapSetPTT, vfo, func() error {
		if err := h.backend.SetPTT(on); err != nil {
			return err
		}
		h.state.PTT = on
		return nil
	})
}

// GetPTT reports whether the transmitter is keyed.
func (h *Handle) GetPTT(vfo VFO) (bool, error) {
	if h.ptt != nil {
		if err := h.lock(); err != nil {
			return false, err
		}
		defer h.mu.Unlock()
		return h.ptt.PTT()
	}

	var on bool
	err := h.do(CapGetPTT, vfo, func() error {
		var err error
		if on, err = h.backend.GetPTT(); err != nil {
			return err
		}
		h.state.PTT = on
		return nil
	})
	return on, err
}

// GetDCD reports whether the squelch is open.
func (h *Handle) GetDCD(vfo VFO) (bool, error) {
	var open bool
	err := h.do(CapGetDCD, vfo, func() error {
		var err error
		open, err = h.backend.GetDCD()
		return err
	})
	return open, err
}

func (h *Handle) checkLevel(level Level, allowed Level) error {
	if level == LevelNone || level&(level-1) != 0 {
		return fmt.Errorf("%w: level %s", ErrInvalidArgument, level)
	}
	if allowed&level == 0 {
		return fmt.Errorf("%w: level %s on %s", ErrUnsupported, level, h.caps.ModelName)
	}
	return nil
}

// SetLevel sets one level. Float levels take a value in [0,1].
func (h *Handle) SetLevel(vfo VFO, level Level, val Value) error {
	if err := h.checkLevel(level, h.caps.SetLevels); err != nil {
		return err
	}
	if level.IsFloat() && (math.IsNaN(val.F) || val.F < 0 || val.F > 1) {
		return fmt.Errorf("%w: %s value %g outside [0,1]", ErrInvalidArgument, level, val.F)
	}
	if err := h.lock(); err != nil {
		return err
	}
	defer h.mu.Unlock()
	return h.onVFO(vfo, func() error { return h.backend.SetLevel(level, val) })
}

// GetLevel reads one level or meter.
func (h *Handle) GetLevel(vfo VFO, level Level) (Value, error) {
	if err := h.checkLevel(level, h.caps.GetLevels); err != nil {
		return Value{}, err
	}
	if err := h.lock(); err != nil {
		return Value{}, err
	}
	defer h.mu.Unlock()

	var val Value
	err := h.onVFO(vfo, func() error {
		var err error
		val, err = h.backend.GetLevel(level)
		return err
	})
	return val, err
}

func (h *Handle) checkFunc(fn Func, allowed Func) error {
	if fn == FuncNone || fn&(fn-1) != 0 {
		return fmt.Errorf("%w: func %s", ErrInvalidArgument, fn)
	}
	if allowed&fn == 0 {
		return fmt.Errorf("%w: func %s on %s", ErrUnsupported, fn, h.caps.ModelName)
	}
	return nil
}

// SetFunc switches one function on or off.
func (h *Handle) SetFunc(vfo VFO, fn Func, on bool) error {
	if err := h.checkFunc(fn, h.caps.SetFuncs); err != nil {
		return err
	}
	if err := h.lock(); err != nil {
		return err
	}
	defer h.mu.Unlock()
	return h.onVFO(vfo, func() error { return h.backend.SetFunc(fn, on) })
}

// GetFunc reads one function.
func (h *Handle) GetFunc(vfo VFO, fn Func) (bool, error) {
	if err := h.checkFunc(fn, h.caps.GetFuncs); err != nil {
		return false, err
	}
	if err := h.lock(); err != nil {
		return false, err
	}
	defer h.mu.Unlock()

	var on bool
	err := h.onVFO(vfo, func() error {
		var err error
		on, err = h.backend.GetFunc(fn)
		return err
	})
	return on, err
}

// SetRIT sets the receive incremental tuning offset in Hz.
func (h *Handle) SetRIT(vfo VFO, offset int) error {
	if offset < -9999 || offset > 9999 {
		return fmt.Errorf("%w: RIT offset %d", ErrInvalidArgument, offset)
	}
	return h.do(CapSetRIT, vfo, func() error { return h.backend.SetRIT(offset) })
}

// GetRIT reads the RIT offset.
func (h *Handle) GetRIT(vfo VFO) (int, error) {
	var offset int
	err := h.do(CapGetRIT, vfo, func() error {
		var err error
		offset, err = h.backend.GetRIT()
		return err
	})
	return offset, err
}

// SetTS sets the tuning step in Hz.
func (h *Handle) SetTS(vfo VFO, step int) error {
	if step <= 0 || !h.caps.HasTuningStep(step) {
		return fmt.Errorf("%w: tuning step %d", ErrInvalidArgument, step)
	}
	return h.do(CapSetTS, vfo, func() error { return h.backend.SetTS(step) })
}

// GetTS reads the tuning step.
func (h *Handle) GetTS(vfo VFO) (int, error) {
	var step int
	err := h.do(CapGetTS, vfo, func() error {
		var err error
		step, err = h.backend.GetTS()
		return err
	})
	return step, err
}

// SetSplitVFO turns split operation on or off with txVFO transmitting.
func (h *Handle) SetSplitVFO(vfo VFO, split bool, txVFO VFO) error {
	if split && txVFO != VFOCurrent && h.caps.VFOs&txVFO == 0 {
		return fmt.Errorf("%w: TX %s", ErrInvalidArgument, txVFO)
	}
	return h.do(CapSetSplitVFO, vfo, func() error { return h.backend.SetSplitVFO(split, txVFO) })
}

// GetSplitVFO reports split state and the transmit VFO.
func (h *Handle) GetSplitVFO(vfo VFO) (bool, VFO, error) {
	var (
		split bool
		tx    VFO
	)
	err := h.do(CapGetSplitVFO, vfo, func() error {
		var err error
		split, tx, err = h.backend.GetSplitVFO()
		return err
	})
	return split, tx, err
}

// SetSplitFreq sets the transmit frequency used in split.
func (h *Handle) SetSplitFreq(vfo VFO, f Freq) error {
	if f <= 0 {
		return fmt.Errorf("%w: frequency %d", ErrInvalidArgument, f)
	}
	return h.do(CapSetSplitFreq, vfo, func() error { return h.backend.SetSplitFreq(f) })
}

// GetSplitFreq reads the split transmit frequency.
func (h *Handle) GetSplitFreq(vfo VFO) (Freq, error) {
	var f Freq
	err := h.do(CapGetSplitFreq, vfo, func() error {
		var err error
		f, err = h.backend.GetSplitFreq()
		return err
	})
	return f, err
}

// SetSplitMode sets the transmit mode used in split.
func (h *Handle) SetSplitMode(vfo VFO, mode Mode, width int) error {
	if !mode.Single() || width < PassbandNoChange {
		return fmt.Errorf("%w: mode %s width %d", ErrInvalidArgument, mode, width)
	}
	return h.do(CapSetSplitMode, vfo, func() error { return h.backend.SetSplitMode(mode, width) })
}

// GetSplitMode reads the split transmit mode.
func (h *Handle) GetSplitMode(vfo VFO) (Mode, int, error) {
	var (
		mode  Mode
		width int
	)
	err := h.do(CapGetSplitMode, vfo, func() error {
		var err error
		mode, width, err = h.backend.GetSplitMode()
		return err
	})
	return mode, width, err
}

// SetRptrShift sets the repeater shift direction.
func (h *Handle) SetRptrShift(vfo VFO, shift RptrShift) error {
	if shift < RptrShiftNone || shift > RptrShiftPlus {
		return fmt.Errorf("%w: repeater shift %d", ErrInvalidArgument, shift)
	}
	return h.do(CapSetRptrShift, vfo, func() error { return h.backend.SetRptrShift(shift) })
}

// GetRptrShift reads the repeater shift direction.
func (h *Handle) GetRptrShift(vfo VFO) (RptrShift, error) {
	var shift RptrShift
	err := h.do(CapGetRptrShift, vfo, func() error {
		var err error
		shift, err = h.backend.GetRptrShift()
		return err
	})
	return shift, err
}

// SetRptrOffs sets the repeater offset in Hz.
func (h *Handle) SetRptrOffs(vfo VFO, offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: repeater offset %d", ErrInvalidArgument, offset)
	}
	return h.do(CapSetRptrOffs, vfo, func() error { return h.backend.SetRptrOffs(offset) })
}

// GetRptrOffs reads the repeater offset.
func (h *Handle) GetRptrOffs(vfo VFO) (int, error) {
	var offset int
	err := h.do(CapGetRptrOffs, vfo, func() error {
		var err error
		offset, err = h.backend.GetRptrOffs()
		return err
	})
	return offset, err
}

// SetPowerStat switches the radio on, off or to standby.
func (h *Handle) SetPowerStat(status PowerStatus) error {
	if status < PowerOff || status > PowerStandby {
		return fmt.Errorf("%w: power status %d", ErrInvalidArgument, status)
	}
	return h.do(CapSetPowerStat, VFOCurrent, func() error { return h.backend.SetPowerStat(status) })
}

// GetPowerStat reads the power state.
func (h *Handle) GetPowerStat() (PowerStatus, error) {
	var status PowerStatus
	err := h.do(CapGetPowerStat, VFOCurrent, func() error {
		var err error
		status, err = h.backend.GetPowerStat()
		return err
	})
	return status, err
}

// SetMem selects memory channel ch.
func (h *Handle) SetMem(vfo VFO, ch int) error {
	if ch < 0 || ch > 9999 {
		return fmt.Errorf("%w: memory channel %d", ErrInvalidArgument, ch)
	}
	return h.do(CapSetMem, vfo, func() error { return h.backend.SetMem(ch) })
}

// VFOOp performs one register operation.
func (h *Handle) VFOOp(vfo VFO, op VFOOp) error {
	if op == OpNone || op&(op-1) != 0 {
		return fmt.Errorf("%w: vfo op %s", ErrInvalidArgument, op)
	}
	if h.caps.VFOOps&op == 0 {
		return fmt.Errorf("%w: vfo op %s on %s", ErrUnsupported, op, h.caps.ModelName)
	}
	return h.do(CapVFOOp, vfo, func() error { return h.backend.VFOOp(op) })
}

// GetInfo returns a free-form identification string from the radio.
func (h *Handle) GetInfo() (string, error) {
	var info string
	err := h.do(CapGetInfo, VFOCurrent, func() error {
		var err error
		info, err = h.backend.GetInfo()
		return err
	})
	return info, err
}

// SetConf sets a backend configuration token.
func (h *Handle) SetConf(token, val string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return transport.ErrClosed
	}
	return h.backend.SetConf(token, val)
}

// GetConf reads a backend configuration token.
func (h *Handle) GetConf(token string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", transport.ErrClosed
	}
	return h.backend.GetConf(token)
}

// Snapshot is the cached state of a handle.
type Snapshot struct {
	Model Model
	VFO   VFO
	Freq  Freq
	Mode  Mode
	Width int
	PTT   bool
}

// Cached returns the last known state without talking to the radio.
func (h *Handle) Cached() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Model: h.caps.Model,
		VFO:   h.state.CurrVFO,
		Freq:  h.state.CurrFreq,
		Mode:  h.state.CurrMode,
		Width: h.state.CurrWidth,
		PTT:   h.state.PTT,
	}
}

// DecodeEvent waits up to poll for one unsolicited frame. The radio is
// read under the handle lock; callbacks run after it is released, so an
// event never interleaves with a command/reply exchange.
func (h *Handle) DecodeEvent(poll time.Duration) (int, error) {
	if err := h.lock(); err != nil {
		return 0, err
	}
	events, err := h.backend.DecodeEvent(poll)
	for _, ev := range events {
		switch ev.Kind {
		case EventFreq:
			h.state.CurrFreq = ev.Freq
		case EventMode:
			h.state.CurrMode, h.state.CurrWidth = ev.Mode, ev.Width
		}
	}
	h.mu.Unlock()

	for _, ev := range events {
		h.deliver(ev)
	}
	return len(events), err
}

func (h *Handle) deliver(ev Event) {
	switch ev.Kind {
	case EventFreq:
		if h.callbacks.Freq != nil {
			h.callbacks.Freq(ev.VFO, ev.Freq)
		}
	case EventMode:
		if h.callbacks.Mode != nil {
			h.callbacks.Mode(ev.VFO, ev.Mode, ev.Width)
		}
	}
	if h.callbacks.Event != nil {
		h.callbacks.Event(ev)
	}
}

// Listen decodes unsolicited frames until ctx is done or the transport
// fails. Timeouts and malformed frames are logged and skipped.
func (h *Handle) Listen(ctx context.Context, poll time.Duration) error {
	if err := h.require(CapTransceive); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := h.DecodeEvent(poll)
		switch {
		case err == nil:
		case errors.Is(err, ErrIO):
			return err
		default:
			h.state.Log().Debug("rig", "event decode failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
