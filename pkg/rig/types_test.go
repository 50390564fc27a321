package rig

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeNames(t *testing.T) {
	for m, name := range modeNames {
		got, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.Equal(t, name, m.String())
	}

	set, err := ParseMode("usb|lsb")
	require.NoError(t, err)
	assert.Equal(t, ModeSSB, set)
	assert.False(t, set.Single())
	assert.Equal(t, []Mode{ModeUSB, ModeLSB}, set.Modes())

	_, err = ParseMode("SSTV")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseVFO(t *testing.T) {
	cases := map[string]VFO{"A": VFOA, "vfob": VFOB, "Main": VFOMain, "currVFO": VFOCurrent, "MEM": VFOMem}
	for in, want := range cases {
		got, err := ParseVFO(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVFO("Z")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLevelFloat(t *testing.T) {
	assert.True(t, LevelAF.IsFloat())
	assert.True(t, LevelRFPower.IsFloat())
	assert.False(t, LevelAGC.IsFloat())
	assert.False(t, LevelStrength.IsFloat())

	l, err := ParseLevel("PBT_IN")
	require.NoError(t, err)
	assert.Equal(t, LevelPBTIn, l)
	assert.Equal(t, "AF|RF", (LevelAF | LevelRF).String())
}

func TestCalInterpolate(t *testing.T) {
	ic7300 := CalTable{{0, -54}, {10, -24}, {120, 0}, {241, 64}}

	assert.Equal(t, -54, ic7300.Interpolate(0))
	assert.Equal(t, -24, ic7300.Interpolate(10))
	assert.Equal(t, -12, ic7300.Interpolate(65))
	assert.Equal(t, 0, ic7300.Interpolate(120))
	assert.Equal(t, 64, ic7300.Interpolate(241))
	assert.Equal(t, 64, ic7300.Interpolate(255))
	assert.Equal(t, -54, ic7300.Interpolate(-5))

	assert.Equal(t, 77, CalTable(nil).Interpolate(77))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "timeout", Kind(fmt.Errorf("read: %w", ErrTimeout)))
	assert.Equal(t, "rejected", Kind(ErrRejected))
	assert.Equal(t, "io_error", Kind(fmt.Errorf("x: %w", ErrIO)))
	assert.Equal(t, "unknown", Kind(fmt.Errorf("plain")))
	assert.Equal(t, ErrTimeout, ErrorOfKind("timeout"))
	assert.Nil(t, ErrorOfKind("unknown"))
}

func TestParseCaps(t *testing.T) {
	c, err := ParseCaps([]string{"set_freq", "get_freq"})
	require.NoError(t, err)
	assert.True(t, (&Caps{Ops: c}).Has(CapSetFreq|CapGetFreq))
	assert.False(t, (&Caps{Ops: c}).Has(CapSetMode))

	_, err = ParseCaps([]string{"fly"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPassband(t *testing.T) {
	caps := &Caps{Filters: []Filter{
		{Modes: ModeSSB, Width: 2400},
		{Modes: ModeSSB, Width: 1800},
		{Modes: ModeSSB, Width: 3000},
		{Modes: ModeCW, Width: 500},
	}}
	assert.Equal(t, 2400, caps.PassbandNormal(ModeUSB))
	assert.Equal(t, 1800, caps.PassbandNarrow(ModeUSB))
	assert.Equal(t, 3000, caps.PassbandWide(ModeUSB))
	assert.Equal(t, 500, caps.PassbandNormal(ModeCW))
	assert.Equal(t, 0, caps.PassbandNormal(ModeFM))
}
