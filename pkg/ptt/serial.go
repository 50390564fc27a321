package ptt

import (
	"io"
	"sync"

	"github.com/dougsko/rigd/pkg/transport"
)

// Signal selects a serial control line.
type Signal int

const (
	SignalDTR Signal = iota
	SignalRTS
)

func (s Signal) String() string {
	if s == SignalRTS {
		return "RTS"
	}
	return "DTR"
}

// SerialLine keys PTT with DTR or RTS.
type SerialLine struct {
	mc        transport.ModemControl
	signal    Signal
	activeLow bool
	owned     io.Closer

	mu sync.Mutex
	on bool
}

// NewSerialLine drives signal on mc and releases PTT at once. owned, when
// not nil, is closed by Close.
func NewSerialLine(mc transport.ModemControl, signal Signal, activeLow bool, owned io.Closer) (*SerialLine, error) {
	l := &SerialLine{mc: mc, signal: signal, activeLow: activeLow, owned: owned}
	if err := l.SetPTT(false); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *SerialLine) SetPTT(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	level := on != l.activeLow
	var err error
	if l.signal == SignalRTS {
		err = l.mc.SetRTS(level)
	} else {
		err = l.mc.SetDTR(level)
	}
	if err != nil {
		return err
	}
	l.on = on
	return nil
}

// PTT returns the last state set; control lines cannot be read back.
func (l *SerialLine) PTT() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on, nil
}

// Close releases PTT and closes an owned port.
func (l *SerialLine) Close() error {
	err := l.SetPTT(false)
	if l.owned != nil {
		if cerr := l.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
