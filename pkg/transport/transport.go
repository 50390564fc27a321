// Package transport provides the byte streams a rig backend talks over.
package transport

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrTimeout is returned when a read deadline passes before enough bytes arrive.
	ErrTimeout = errors.New("timeout")
	// ErrIO covers every other transport failure.
	ErrIO = errors.New("i/o error")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = fmt.Errorf("%w: transport closed", ErrIO)
)

// Transport is a full-duplex byte stream with bounded reads.
type Transport interface {
	// Write sends p in full.
	Write(p []byte) error
	// ReadExact reads exactly n bytes or fails. On ErrTimeout the bytes
	// received before the deadline are returned alongside the error.
	ReadExact(n int, timeout time.Duration) ([]byte, error)
	// Flush discards any buffered input.
	Flush() error
	// Close releases the stream and unblocks pending reads with ErrClosed.
	Close() error
}

// ModemControl is implemented by transports that expose RS-232 control lines.
type ModemControl interface {
	SetDTR(on bool) error
	SetRTS(on bool) error
}

// Open opens device as a TCP connection when it has a tcp:// prefix and as
// a serial port otherwise.
func Open(device string, cfg SerialConfig, timeout time.Duration) (Transport, error) {
	if strings.HasPrefix(device, "tcp://") {
		return DialTCP(strings.TrimPrefix(device, "tcp://"), timeout)
	}
	cfg.Device = device
	return OpenSerial(cfg)
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrIO, op, err)
}
