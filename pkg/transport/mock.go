package transport

import (
	"sync"
	"time"
)

type mockReply struct {
	data    []byte
	timeout bool
}

// Mock is an in-memory Transport for tests and simulators. Bytes written
// are collected into requests, either one per Write call or, with a
// terminator set, one per terminated frame. Each completed request is
// answered from the reply queue, or by the responder when the queue is empty.
type Mock struct {
	mu         sync.Mutex
	rx         []byte
	pending    []byte
	writes     [][]byte
	replies    []mockReply
	responder  func(req []byte) []byte
	echo       bool
	terminator int
	flushes    int
	dtr, rts   bool
	closed     bool
	notify     chan struct{}
	done       chan struct{}
}

// NewMock returns an open mock transport with no echo.
func NewMock() *Mock {
	return &Mock{
		terminator: -1,
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// SetEcho makes every written byte appear on the read side, as on a
// shared CI-V bus.
func (m *Mock) SetEcho(on bool) *Mock {
	m.mu.Lock()
	m.echo = on
	m.mu.Unlock()
	return m
}

// SetTerminator groups written bytes into requests ending in b.
func (m *Mock) SetTerminator(b byte) *Mock {
	m.mu.Lock()
	m.terminator = int(b)
	m.mu.Unlock()
	return m
}

// SetResponder answers requests that find the reply queue empty.
func (m *Mock) SetResponder(fn func(req []byte) []byte) *Mock {
	m.mu.Lock()
	m.responder = fn
	m.mu.Unlock()
	return m
}

// QueueReply answers the next unanswered request with b.
func (m *Mock) QueueReply(b []byte) {
	m.mu.Lock()
	m.replies = append(m.replies, mockReply{data: append([]byte(nil), b...)})
	m.mu.Unlock()
}

// QueueTimeout leaves the next unanswered request without a reply.
func (m *Mock) QueueTimeout() {
	m.mu.Lock()
	m.replies = append(m.replies, mockReply{timeout: true})
	m.mu.Unlock()
}

// Inject makes b readable immediately, as an unsolicited frame would be.
func (m *Mock) Inject(b []byte) {
	m.mu.Lock()
	m.rx = append(m.rx, b...)
	m.mu.Unlock()
	m.signal()
}

// Writes returns the completed requests seen so far.
func (m *Mock) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Flushes returns how many times Flush was called.
func (m *Mock) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Pending returns the number of unread bytes.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rx)
}

// DTR reports the last DTR state set.
func (m *Mock) DTR() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dtr
}

// RTS reports the last RTS state set.
func (m *Mock) RTS() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rts
}

func (m *Mock) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Write records p and queues any echo and reply.
func (m *Mock) Write(p []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.echo {
		m.rx = append(m.rx, p...)
	}
	m.pending = append(m.pending, p...)
	if m.terminator < 0 || (len(m.pending) > 0 && int(m.pending[len(m.pending)-1]) == m.terminator) {
		req := m.pending
		m.pending = nil
		m.writes = append(m.writes, req)
		m.answer(req)
	}
	m.mu.Unlock()
	m.signal()
	return nil
}

// answer is called with mu held.
func (m *Mock) answer(req []byte) {
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		if !r.timeout {
			m.rx = append(m.rx, r.data...)
		}
		return
	}
	if m.responder != nil {
		m.rx = append(m.rx, m.responder(req)...)
	}
}

// ReadExact blocks until n bytes are readable, the timeout passes or the
// mock is closed.
func (m *Mock) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}
		if len(m.rx) >= n {
			out := append([]byte(nil), m.rx[:n]...)
			m.rx = m.rx[n:]
			m.mu.Unlock()
			return out, nil
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
		case <-m.done:
		case <-timer.C:
			m.mu.Lock()
			out := m.rx
			m.rx = nil
			m.mu.Unlock()
			return out, ErrTimeout
		}
	}
}

// Flush discards unread bytes.
func (m *Mock) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.rx = nil
	m.flushes++
	return nil
}

// SetDTR records the DTR state.
func (m *Mock) SetDTR(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dtr = on
	return nil
}

// SetRTS records the RTS state.
func (m *Mock) SetRTS(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rts = on
	return nil
}

// Close unblocks pending reads with ErrClosed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}
