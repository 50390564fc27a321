package civ

import (
	"errors"
	"fmt"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/dougsko/rigd/pkg/verbose"
)

// readEventFrame reads an unsolicited frame that began with first. Unlike
// replies, such a frame may end in a collision marker.
func readEventFrame(r FrameReader, first byte, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	buf := []byte{first}
	for buf[len(buf)-1] != Terminator && buf[len(buf)-1] != Collision {
		if len(buf) >= MaxFrameLen {
			return buf, fmt.Errorf("%w: no terminator in %d bytes", rig.ErrMalformed, len(buf))
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf, transport.ErrTimeout
		}
		b, err := r.ReadExact(1, remaining)
		if err != nil {
			return buf, err
		}
		buf = append(buf, b[0])
	}
	return buf, nil
}

// DecodeEvent waits up to poll for transceive traffic and decodes one frame.
func (b *Backend) DecodeEvent(poll time.Duration) ([]rig.Event, error) {
	t := b.st.Transport
	first, err := t.ReadExact(1, poll)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) && len(first) == 0 {
			return nil, nil
		}
		return nil, err
	}

	raw, err := readEventFrame(t, first[0], b.st.Timeout)
	if b.st.Tracer != nil {
		b.st.Tracer.TraceFrame(rig.DirEvent, raw, err)
	}
	if err != nil {
		return nil, err
	}

	log := b.st.Log()
	if raw[len(raw)-1] == Collision {
		log.Warn("civ", "bus collision, frame dropped", map[string]interface{}{"frame": verbose.Hex(raw)})
		return nil, nil
	}

	f, err := ParseFrame(raw)
	if err != nil {
		return nil, err
	}
	if f.Src != b.addr && f.Src != BcastAddr {
		log.Warn("civ", "transceive frame from unexpected address", map[string]interface{}{
			"src":  fmt.Sprintf("0x%02x", f.Src),
			"addr": fmt.Sprintf("0x%02x", b.addr),
		})
	}

	switch f.Cmd {
	case CmdSndFreq:
		freq, err := decodeFreq(f.Data)
		if err != nil {
			return nil, err
		}
		return []rig.Event{{Kind: rig.EventFreq, VFO: rig.VFOCurrent, Freq: freq}}, nil
	case CmdSndMode:
		mode, width, err := decodeMode(b.caps, f.Data, log)
		if err != nil {
			return nil, err
		}
		return []rig.Event{{Kind: rig.EventMode, VFO: rig.VFOCurrent, Mode: mode, Width: width}}, nil
	}

	log.Info("civ", "unsupported transceive command", map[string]interface{}{
		"cmd":   fmt.Sprintf("0x%02x", f.Cmd),
		"frame": verbose.Hex(raw),
	})
	return nil, nil
}
