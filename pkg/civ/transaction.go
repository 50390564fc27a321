package civ

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/dougsko/rigd/pkg/verbose"
)

// Reply is the radio's answer to one command.
type Reply struct {
	Src  byte
	Dest byte
	Cmd  byte
	Data []byte
}

// IsAck reports whether the reply is a bare acknowledgement.
func (r *Reply) IsAck() bool {
	return r.Cmd == ACK && len(r.Data) == 0
}

// IsNak reports whether the radio rejected the command.
func (r *Reply) IsNak() bool {
	return r.Cmd == NAK
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the reply timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithRetry sets how many times a timed-out command is resent.
func WithRetry(n int) Option {
	return func(e *Engine) { e.retry = n }
}

// WithWriteDelay paces each written byte.
func WithWriteDelay(d time.Duration) Option {
	return func(e *Engine) { e.writeDelay = d }
}

// WithPostWriteDelay waits after each complete frame.
func WithPostWriteDelay(d time.Duration) Option {
	return func(e *Engine) { e.postWriteDelay = d }
}

// WithoutEcho is for links that do not loop written bytes back.
func WithoutEcho() Option {
	return func(e *Engine) { e.noEcho = true }
}

// WithController sets the controller address placed in the source field.
func WithController(addr byte) Option {
	return func(e *Engine) { e.ctrl = addr }
}

// WithTracer copies every frame to t.
func WithTracer(t rig.FrameTracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine runs CI-V command/reply exchanges over a shared bus, where every
// byte written is echoed back before the radio answers. It is not safe
// for concurrent use; the owning handle serializes calls.
type Engine struct {
	t              transport.Transport
	timeout        time.Duration
	retry          int
	writeDelay     time.Duration
	postWriteDelay time.Duration
	ctrl           byte
	noEcho         bool
	tracer         rig.FrameTracer
	log            *logging.Logger
	attempts       int
}

// NewEngine creates an engine on t.
func NewEngine(t transport.Transport, opts ...Option) *Engine {
	e := &Engine{
		t:       t,
		timeout: time.Second,
		ctrl:    CtrlAddr,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logging.GetGlobalLogger()
	}
	return e
}

// Attempts returns how many times the last Transact call sent its frame.
func (e *Engine) Attempts() int {
	return e.attempts
}

func (e *Engine) trace(dir rig.Direction, frame []byte, err error) {
	if e.tracer != nil {
		e.tracer.TraceFrame(dir, frame, err)
	}
}

// Transact sends one command to dest and returns the reply. Only timeouts
// are retried. A NAK is returned at once together with rig.ErrRejected.
func (e *Engine) Transact(dest, cmd byte, sub int, payload []byte) (*Reply, error) {
	frame, err := encodeFrom(dest, e.ctrl, cmd, sub, payload)
	if err != nil {
		return nil, err
	}

	e.attempts = 0
	for {
		e.attempts++
		reply, err := e.exchange(frame)
		if err == nil {
			if reply.IsNak() {
				return reply, rig.ErrRejected
			}
			return reply, nil
		}
		if !errors.Is(err, transport.ErrTimeout) || e.attempts > e.retry {
			return nil, err
		}
		e.log.Debug("civ", "timeout, retrying", map[string]interface{}{
			"cmd":     fmt.Sprintf("%#02x", cmd),
			"attempt": e.attempts,
		})
	}
}

func (e *Engine) exchange(frame []byte) (*Reply, error) {
	if err := e.t.Flush(); err != nil {
		return nil, err
	}

	if err := e.write(frame); err != nil {
		e.trace(rig.DirTx, frame, err)
		return nil, err
	}
	e.trace(rig.DirTx, frame, nil)

	if !e.noEcho {
		echo, err := e.t.ReadExact(len(frame), e.timeout)
		e.trace(rig.DirEcho, echo, err)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(echo, frame) {
			e.log.Warn("civ", "echo differs from frame sent", map[string]interface{}{
				"sent": verbose.Hex(frame),
				"echo": verbose.Hex(echo),
			})
		}
	}

	raw, err := ReadFrame(e.t, e.timeout)
	e.trace(rig.DirRx, raw, err)
	if err != nil {
		return nil, err
	}

	f, err := ParseFrame(raw)
	if err != nil {
		return nil, err
	}
	if f.Dest != e.ctrl && f.Dest != BcastAddr {
		e.log.Warn("civ", "reply addressed to another controller", map[string]interface{}{
			"dest": fmt.Sprintf("%#02x", f.Dest),
		})
	}
	return &Reply{Src: f.Src, Dest: f.Dest, Cmd: f.Cmd, Data: f.Data}, nil
}

func (e *Engine) write(frame []byte) error {
	if e.writeDelay <= 0 {
		if err := e.t.Write(frame); err != nil {
			return err
		}
	} else {
		for i := range frame {
			if err := e.t.Write(frame[i : i+1]); err != nil {
				return err
			}
			time.Sleep(e.writeDelay)
		}
	}
	if e.postWriteDelay > 0 {
		time.Sleep(e.postWriteDelay)
	}
	return nil
}

// Ack runs a set command and requires an ACK reply.
func (e *Engine) Ack(dest, cmd byte, sub int, payload []byte) error {
	reply, err := e.Transact(dest, cmd, sub, payload)
	if err != nil {
		return err
	}
	if !reply.IsAck() {
		return fmt.Errorf("%w: expected ACK to %#02x, got %#02x % X", rig.ErrMalformed, cmd, reply.Cmd, reply.Data)
	}
	return nil
}
