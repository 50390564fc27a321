package transport

import (
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"
)

// TCP is a Transport over a network CI-V bridge or terminal server.
type TCP struct {
	conn   net.Conn
	closed atomic.Bool
}

// DialTCP connects to addr (host:port).
func DialTCP(addr string, timeout time.Duration) (*TCP, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, ioError("dial "+addr, err)
	}
	return &TCP{conn: conn}, nil
}

// NewTCP wraps an established connection.
func NewTCP(conn net.Conn) *TCP {
	return &TCP{conn: conn}
}

func (t *TCP) mapError(op string, err error) error {
	if t.closed.Load() || errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrTimeout
	}
	return ioError(op, err)
}

// Write sends p in full.
func (t *TCP) Write(p []byte) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if _, err := t.conn.Write(p); err != nil {
		return t.mapError("write", err)
	}
	return nil
}

// ReadExact reads n bytes before the timeout elapses.
func (t *TCP) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, t.mapError("set deadline", err)
	}
	got := 0
	for got < n {
		m, err := t.conn.Read(buf[got:])
		got += m
		if err != nil {
			return buf[:got], t.mapError("read", err)
		}
	}
	return buf, nil
}

// Flush drains whatever input is already queued.
func (t *TCP) Flush() error {
	if t.closed.Load() {
		return ErrClosed
	}
	buf := make([]byte, 256)
	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
			return t.mapError("set deadline", err)
		}
		n, err := t.conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil
			}
			return t.mapError("flush", err)
		}
		if n == 0 {
			return nil
		}
	}
}

// Close closes the connection; pending reads return ErrClosed.
func (t *TCP) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}
