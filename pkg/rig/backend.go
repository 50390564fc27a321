package rig

import (
	"time"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/transport"
)

// Backend is implemented by each model family. Calls are serialized by
// the owning Handle; VFO selection has already been done by the front end.
type Backend interface {
	Open() error
	Close() error

	SetFreq(f Freq) error
	GetFreq() (Freq, error)
	SetMode(mode Mode, width int) error
	GetMode() (Mode, int, error)
	SetVFO(vfo VFO) error
	GetVFO() (VFO, error)

	SetPTT(on bool) error
	GetPTT() (bool, error)
	GetDCD() (bool, error)

	SetLevel(level Level, val Value) error
	GetLevel(level Level) (Value, error)
	SetFunc(fn Func, on bool) error
	GetFunc(fn Func) (bool, error)

	SetRIT(offset int) error
	GetRIT() (int, error)
	SetTS(step int) error
	GetTS() (int, error)

	SetSplitVFO(split bool, txVFO VFO) error
	GetSplitVFO() (bool, VFO, error)
	SetSplitFreq(f Freq) error
	GetSplitFreq() (Freq, error)
	SetSplitMode(mode Mode, width int) error
	GetSplitMode() (Mode, int, error)

	SetRptrShift(shift RptrShift) error
	GetRptrShift() (RptrShift, error)
	SetRptrOffs(offset int) error
	GetRptrOffs() (int, error)

	SetPowerStat(status PowerStatus) error
	GetPowerStat() (PowerStatus, error)
	SetMem(ch int) error
	VFOOp(op VFOOp) error
	GetInfo() (string, error)

	SetConf(token, val string) error
	GetConf(token string) (string, error)

	// DecodeEvent waits up to poll for an unsolicited frame and decodes it.
	// No frame yields no events and no error.
	DecodeEvent(poll time.Duration) ([]Event, error)
}

// Direction tags a traced frame.
type Direction uint8

const (
	DirTx Direction = iota + 1
	DirEcho
	DirRx
	DirEvent
)

func (d Direction) String() string {
	switch d {
	case DirTx:
		return "tx"
	case DirEcho:
		return "echo"
	case DirRx:
		return "rx"
	case DirEvent:
		return "event"
	}
	return "unknown"
}

// FrameTracer receives a copy of every frame a backend sends or receives.
type FrameTracer interface {
	TraceFrame(dir Direction, frame []byte, err error)
}

// State is the per-handle session state shared with the backend.
type State struct {
	Caps      *Caps
	Transport transport.Transport
	Logger    *logging.Logger
	Tracer    FrameTracer

	Timeout        time.Duration
	Retry          int
	WriteDelay     time.Duration
	PostWriteDelay time.Duration

	// Cached radio state, updated after successful operations and events.
	CurrVFO   VFO
	CurrFreq  Freq
	CurrMode  Mode
	CurrWidth int
	PTT       bool
}

// Log returns the session logger, falling back to the global one.
func (s *State) Log() *logging.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.GetGlobalLogger()
}

// Unimplemented answers every Backend call with ErrUnsupported. Backends
// embed it and override what they implement.
type Unimplemented struct{}

func (Unimplemented) Open() error { return nil }
func (Unimplemented) Close() error { return nil }
func (Unimplemented) SetFreq(Freq) error { return ErrUnsupported }
func (Unimplemented) GetFreq() (Freq, error) { return 0, ErrUnsupported }
func (Unimplemented) SetMode(Mode, int) error { return ErrUnsupported }
func (Unimplemented) GetMode() (Mode, int, error) { return ModeNone, 0, ErrUnsupported }
func (Unimplemented) SetVFO(VFO) error { return ErrUnsupported }
func (Unimplemented) GetVFO() (VFO, error) { return VFONone, ErrUnsupported }
func (Unimplemented) SetPTT(bool) error { return ErrUnsupported }
func (Unimplemented) GetPTT() (bool, error) { return false, ErrUnsupported }
func (Unimplemented) GetDCD() (bool, error) { return false, ErrUnsupported }
func (Unimplemented) SetLevel(Level, Value) error { return ErrUnsupported }
func (Unimplemented) GetLevel(Level) (Value, error) { return Value{}, ErrUnsupported }
func (Unimplemented) SetFunc(Func, bool) error { return ErrUnsupported }
func (Unimplemented) GetFunc(Func) (bool, error) { return false, ErrUnsupported }
func (Unimplemented) SetRIT(int) error { return ErrUnsupported }
func (Unimplemented) GetRIT() (int, error) { return 0, ErrUnsupported }
func (Unimplemented) SetTS(int) error { return ErrUnsupported }
func (Unimplemented) GetTS() (int, error) { return 0, ErrUnsupported }
func (Unimplemented) SetSplitVFO(bool, VFO) error { return ErrUnsupported }
func (Unimplemented) GetSplitVFO() (bool, VFO, error) { return false, VFONone, ErrUnsupported }
func (Unimplemented) SetSplitFreq(Freq) error { return ErrUnsupported }
func (Unimplemented) GetSplitFreq() (Freq, error) { return 0, ErrUnsupported }
func (Unimplemented) SetSplitMode(Mode, int) error { return ErrUnsupported }
func (Unimplemented) GetSplitMode() (Mode, int, error) { return ModeNone, 0, ErrUnsupported }
func (Unimplemented) SetRptrShift(RptrShift) error { return ErrUnsupported }
func (Unimplemented) GetRptrShift() (RptrShift, error) { return RptrShiftNone, ErrUnsupported }
func (Unimplemented) SetRptrOffs(int) error { return ErrUnsupported }
func (Unimplemented) GetRptrOffs() (int, error) { return 0, ErrUnsupported }
func (Unimplemented) SetPowerStat(PowerStatus) error { return ErrUnsupported }
func (Unimplemented) GetPowerStat() (PowerStatus, error) { return PowerOff, ErrUnsupported }
func (Unimplemented) SetMem(int) error { return ErrUnsupported }
func (Unimplemented) VFOOp(VFOOp) error { return ErrUnsupported }
func (Unimplemented) GetInfo() (string, error) { return "", ErrUnsupported }
func (Unimplemented) SetConf(string, string) error { return ErrUnsupported }
func (Unimplemented) GetConf(string) (string, error) { return "", ErrUnsupported }
func (Unimplemented) DecodeEvent(time.Duration) ([]Event, error) { return nil, nil }
