package transport

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// SerialConfig describes a serial CAT port.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	// Initial control line state; nil leaves the driver default.
	DTR *bool
	RTS *bool
}

// Serial is a Transport over a local serial port.
type Serial struct {
	port   serial.Port
	name   string
	closed atomic.Bool
}

func parseParity(p string) (serial.Parity, error) {
	switch strings.ToLower(p) {
	case "", "none":
		return serial.NoParity, nil
	case "odd":
		return serial.OddParity, nil
	case "even":
		return serial.EvenParity, nil
	case "mark":
		return serial.MarkParity, nil
	case "space":
		return serial.SpaceParity, nil
	}
	return serial.NoParity, fmt.Errorf("unknown parity %q", p)
}

// OpenSerial opens and configures a serial port.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	parity, err := parseParity(cfg.Parity)
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   parity,
		StopBits: serial.OneStopBit,
	}
	if mode.BaudRate == 0 {
		mode.BaudRate = 9600
	}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}
	if cfg.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	if cfg.DTR != nil || cfg.RTS != nil {
		bits := &serial.ModemOutputBits{DTR: true, RTS: true}
		if cfg.DTR != nil {
			bits.DTR = *cfg.DTR
		}
		if cfg.RTS != nil {
			bits.RTS = *cfg.RTS
		}
		mode.InitialStatusBits = bits
	}

	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, ioError("open "+cfg.Device, err)
	}
	return &Serial{port: port, name: cfg.Device}, nil
}

// Name returns the device path.
func (s *Serial) Name() string {
	return s.name
}

func (s *Serial) mapError(op string, err error) error {
	var portErr *serial.PortError
	if s.closed.Load() || (errors.As(err, &portErr) && portErr.Code() == serial.PortClosed) {
		return ErrClosed
	}
	return ioError(op, err)
}

// Write sends p in full.
func (s *Serial) Write(p []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return s.mapError("write", err)
		}
		p = p[n:]
	}
	return nil
}

// ReadExact reads n bytes before the timeout elapses.
func (s *Serial) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	deadline := time.Now().Add(timeout)

	for got < n {
		if s.closed.Load() {
			return buf[:got], ErrClosed
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf[:got], ErrTimeout
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return buf[:got], s.mapError("set read timeout", err)
		}
		m, err := s.port.Read(buf[got:])
		if err != nil {
			return buf[:got], s.mapError("read", err)
		}
		// zero bytes without an error means the read timed out
		got += m
	}
	return buf, nil
}

// Flush discards pending input.
func (s *Serial) Flush() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.port.ResetInputBuffer(); err != nil {
		return s.mapError("flush", err)
	}
	return nil
}

// SetDTR drives the DTR line.
func (s *Serial) SetDTR(on bool) error {
	if err := s.port.SetDTR(on); err != nil {
		return s.mapError("set DTR", err)
	}
	return nil
}

// SetRTS drives the RTS line.
func (s *Serial) SetRTS(on bool) error {
	if err := s.port.SetRTS(on); err != nil {
		return s.mapError("set RTS", err)
	}
	return nil
}

// Close closes the port; pending reads return ErrClosed.
func (s *Serial) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.port.Close(); err != nil {
		return ioError("close", err)
	}
	return nil
}

// Ports lists the serial ports present on this machine.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, ioError("list ports", err)
	}
	return ports, nil
}
