package civ

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/stretchr/testify/require"
)

// simRadio answers CI-V requests the way a transceiver on the bus would.
type simRadio struct {
	mu     sync.Mutex
	addr   byte
	freq   []byte
	mode   []byte
	ptt    byte
	split  byte
	ts     byte
	power  byte
	offs   []byte
	levels map[[2]byte][]byte
	funcs  map[byte]byte
	reject map[byte]bool
	cmds   [][]byte
}

func newSimRadio(addr byte) *simRadio {
	return &simRadio{
		addr:   addr,
		freq:   []byte{0x00, 0x00, 0x00, 0x07, 0x00},
		mode:   []byte{WireLSB, FilterNormal},
		power:  SubPwrOn,
		offs:   []byte{0x00, 0x00, 0x06},
		levels: make(map[[2]byte][]byte),
		funcs:  make(map[byte]byte),
		reject: make(map[byte]bool),
	}
}

// commands returns cmd and, when present, the first data byte of every
// request the radio accepted.
func (r *simRadio) commands() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.cmds...)
}

func (r *simRadio) respond(req []byte) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := parseRequest(req)
	if err != nil || f.Dest != r.addr {
		return nil
	}
	r.cmds = append(r.cmds, append([]byte{f.Cmd}, f.Data...))

	ack := ackFrame(r.addr)
	reply := func(data ...byte) []byte { return replyFrame(r.addr, f.Cmd, data...) }
	if r.reject[f.Cmd] {
		return nakFrame(r.addr)
	}

	d := f.Data
	switch f.Cmd {
	case CmdSetFreq:
		r.freq = append([]byte(nil), d...)
		return ack
	case CmdRdFreq:
		return reply(r.freq...)
	case CmdSetMode:
		r.mode = append([]byte(nil), d...)
		return ack
	case CmdRdMode:
		return reply(r.mode...)
	case CmdSetVFO, CmdSetMem, CmdWrMem, CmdMem2VFO, CmdClrMem:
		return ack
	case CmdCtlPTT:
		if len(d) == 2 {
			r.ptt = d[1]
			return ack
		}
		return reply(SubPTT, r.ptt)
	case CmdCtlSplt:
		if len(d) == 1 {
			r.split = d[0]
			return ack
		}
		return reply(r.split)
	case CmdSetTS:
		if len(d) == 1 {
			r.ts = d[0]
			return ack
		}
		return reply(r.ts)
	case CmdSetPwr:
		if len(d) == 1 {
			r.power = d[0]
			return ack
		}
		return reply(r.power)
	case CmdSetOffs:
		r.offs = append([]byte(nil), d...)
		return ack
	case CmdRdOffs:
		return reply(r.offs...)
	case CmdCtlLvl, CmdCtlMem, CmdRdSqsm:
		key := [2]byte{f.Cmd, d[0]}
		if len(d) > 1 {
			r.levels[key] = append([]byte(nil), d[1:]...)
			return ack
		}
		v, ok := r.levels[key]
		if !ok {
			v = []byte{0x00, 0x00}
		}
		return reply(append([]byte{d[0]}, v...)...)
	case CmdCtlFunc:
		if len(d) == 2 {
			r.funcs[d[0]] = d[1]
			return ack
		}
		return reply(d[0], r.funcs[d[0]])
	case CmdCtlAtt:
		if len(d) == 1 {
			r.levels[[2]byte{CmdCtlAtt, 0}] = []byte{d[0]}
			return ack
		}
		v := r.levels[[2]byte{CmdCtlAtt, 0}]
		if v == nil {
			v = []byte{0x00}
		}
		return reply(v...)
	case CmdRdTrxID:
		return reply(SubRdTrxID, r.addr)
	}
	return nakFrame(r.addr)
}

func newSimBus(r *simRadio) *transport.Mock {
	return transport.NewMock().SetEcho(true).SetResponder(r.respond)
}

// openSim opens a handle for model on a simulated bus.
func openSim(t *testing.T, model rig.Model, opts ...rig.Option) (*rig.Handle, *simRadio, *transport.Mock, *bytes.Buffer) {
	t.Helper()
	caps := loadCaps(t, model)
	md := caps.Priv.(*ModelData)

	radio := newSimRadio(md.Addr)
	m := newSimBus(radio)

	var buf bytes.Buffer
	opts = append([]rig.Option{
		rig.WithTimeout(50 * time.Millisecond),
		rig.WithRetry(0),
		rig.WithLogger(logging.New(&buf, logging.LevelDebug, false)),
	}, opts...)

	h, err := rig.New(rig.NewRegistry(), model, opts...)
	require.NoError(t, err)
	require.NoError(t, h.Open(m))
	t.Cleanup(func() { h.Close() })
	buf.Reset()
	return h, radio, m, &buf
}
