package civ

import (
	"testing"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeFindsRadios(t *testing.T) {
	m := transport.NewMock().SetEcho(true)
	m.SetResponder(func(req []byte) []byte {
		f, err := parseRequest(req)
		require.NoError(t, err)
		switch f.Dest {
		case 0x58:
			return replyFrame(0x58, CmdRdTrxID, SubRdTrxID, 0x58)
		case 0x6e:
			return nakFrame(0x6e)
		}
		return nil
	})

	results, err := Probe(m, 2*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, byte(0x58), results[0].Addr)
	assert.Equal(t, rig.Model(311), results[0].Model)
	assert.Equal(t, "IC-706MkIIG", results[0].Name)

	assert.Equal(t, byte(0x6e), results[1].Addr)
	assert.Equal(t, rig.ModelNone, results[1].Model)
	assert.Equal(t, "IC-756PROIII", results[1].Name)
}

func TestProbeStopsOnClosedTransport(t *testing.T) {
	m := transport.NewMock()
	require.NoError(t, m.Close())

	_, err := Probe(m, time.Millisecond)
	assert.ErrorIs(t, err, transport.ErrIO)
}

func TestProbeTimeout(t *testing.T) {
	assert.Equal(t, 40*time.Millisecond, ProbeTimeout(19200))
	assert.Equal(t, 46*time.Millisecond, ProbeTimeout(300))
}
