package civ

import (
	"testing"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueLoads(t *testing.T) {
	reg := rig.NewRegistry()
	require.NoError(t, reg.EnsureLoaded(ic7300))

	var names []string
	reg.ForEach(func(c *rig.Caps) bool {
		assert.Equal(t, rig.FamilyIcom, c.Model.Family())
		assert.NotNil(t, c.New)
		assert.NotZero(t, c.Modes)
		_, ok := c.Priv.(*ModelData)
		assert.True(t, ok, c.ModelName)
		names = append(names, c.ModelName)
		return true
	})
	assert.Contains(t, names, "IC-7300")
	assert.Contains(t, names, "IC-R75")
	assert.Len(t, names, 10)
}

func TestIC7300Caps(t *testing.T) {
	caps := loadCaps(t, ic7300)

	assert.Equal(t, "Icom", caps.MfgName)
	assert.Equal(t, rig.StatusStable, caps.Status)
	assert.Equal(t, 4800, caps.SerialRateMin)
	assert.Equal(t, 19200, caps.SerialRateMax)
	assert.Equal(t, time.Second, caps.Timeout)
	assert.Equal(t, 3, caps.Retry)
	assert.True(t, caps.Has(rig.CapSetFreq|rig.CapGetFreq|rig.CapTransceive))
	assert.True(t, caps.InRxRange(14_074_000))
	assert.False(t, caps.InRxRange(144_000_000))
	assert.True(t, caps.HasTuningStep(12_500))
	assert.NotZero(t, caps.GetLevels&rig.LevelStrength)
	assert.Zero(t, caps.SetLevels&rig.LevelReadOnly)

	md := caps.Priv.(*ModelData)
	assert.Equal(t, byte(0x94), md.Addr)
	assert.False(t, md.Legacy)
}

func TestLegacyModel(t *testing.T) {
	caps := loadCaps(t, 319)
	md := caps.Priv.(*ModelData)
	assert.True(t, md.Legacy)
	assert.Equal(t, byte(0x04), md.Addr)
}

func TestReceiverHasNoTransmit(t *testing.T) {
	caps := loadCaps(t, 339)
	assert.False(t, caps.Has(rig.CapSetPTT))
	assert.Equal(t, 0x10, int(caps.Priv.(*ModelData).TS[10].Code))
}

func TestLoadTwiceIsDuplicate(t *testing.T) {
	reg := rig.NewRegistry()
	require.NoError(t, Load(reg))
	assert.ErrorIs(t, Load(reg), rig.ErrDuplicateModel)
}

func TestIdentify(t *testing.T) {
	res := identify(0x94)
	assert.Equal(t, ic7300, res.Model)
	assert.Equal(t, "IC-7300", res.Name)

	res = identify(0x6e)
	assert.Equal(t, rig.ModelNone, res.Model)
	assert.Equal(t, "IC-756PROIII", res.Name)

	res = identify(0x7e)
	assert.Equal(t, rig.ModelNone, res.Model)
	assert.Empty(t, res.Name)
}
