package civ

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
)

// Frame is a decoded CI-V frame.
type Frame struct {
	Dest byte
	Src  byte
	Cmd  byte
	// Data holds every byte between the command and the terminator,
	// subcommand included.
	Data []byte
}

// EncodeFrame builds FF FE FE dest E0 cmd [sub] payload FD. sub is NoSub
// when the command takes no subcommand.
func EncodeFrame(dest, cmd byte, sub int, payload []byte) ([]byte, error) {
	return encodeFrom(dest, CtrlAddr, cmd, sub, payload)
}

func encodeFrom(dest, src, cmd byte, sub int, payload []byte) ([]byte, error) {
	if sub < NoSub || sub > 0xff {
		return nil, fmt.Errorf("%w: subcommand %d", rig.ErrInvalidArgument, sub)
	}
	if bytes.IndexByte(payload, Terminator) >= 0 {
		return nil, fmt.Errorf("%w: payload contains the terminator", rig.ErrInvalidArgument)
	}

	n := len(payload) + 7
	if sub != NoSub {
		n++
	}
	if n > MaxFrameLen {
		return nil, fmt.Errorf("%w: frame of %d bytes", rig.ErrInvalidArgument, n)
	}

	frame := make([]byte, 0, n)
	frame = append(frame, Pad, Preamble, Preamble, dest, src, cmd)
	if sub != NoSub {
		frame = append(frame, byte(sub))
	}
	frame = append(frame, payload...)
	frame = append(frame, Terminator)
	return frame, nil
}

// FrameReader is the read half of a transport.
type FrameReader interface {
	ReadExact(n int, timeout time.Duration) ([]byte, error)
}

// ReadFrame reads one frame: AckFrameLen bytes, then one byte at a time
// until the terminator. A single deadline bounds the whole read, and no
// byte after the terminator is consumed.
func ReadFrame(r FrameReader, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)

	buf, err := r.ReadExact(AckFrameLen, timeout)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) && len(buf) > 0 && buf[len(buf)-1] == Terminator {
			return buf, fmt.Errorf("%w: short frame % X", rig.ErrMalformed, buf)
		}
		return nil, err
	}

	for buf[len(buf)-1] != Terminator {
		if len(buf) >= MaxFrameLen {
			return nil, fmt.Errorf("%w: no terminator in %d bytes", rig.ErrMalformed, len(buf))
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, transport.ErrTimeout
		}
		b, err := r.ReadExact(1, remaining)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b[0])
	}
	return buf, nil
}

// ParseFrame splits a raw frame. The frame must start with two preambles
// and end with the terminator; pad and collision bytes are not stripped.
func ParseFrame(raw []byte) (Frame, error) {
	if len(raw) < 6 {
		return Frame{}, fmt.Errorf("%w: frame of %d bytes", rig.ErrMalformed, len(raw))
	}
	if raw[0] != Preamble || raw[1] != Preamble {
		return Frame{}, fmt.Errorf("%w: bad preamble % X", rig.ErrMalformed, raw[:2])
	}
	if raw[len(raw)-1] != Terminator {
		return Frame{}, fmt.Errorf("%w: missing terminator", rig.ErrMalformed)
	}
	return Frame{
		Dest: raw[2],
		Src:  raw[3],
		Cmd:  raw[4],
		Data: append([]byte(nil), raw[5:len(raw)-1]...),
	}, nil
}
