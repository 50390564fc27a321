package rig

import (
	"fmt"
	"time"
)

// Cap is a set of front-end operations a model implements.
type Cap uint64

const (
	CapSetFreq Cap = 1 << iota
	CapGetFreq
	CapSetMode
	CapGetMode
	CapSetVFO
	CapGetVFO
	CapSetPTT
	CapGetPTT
	CapGetDCD
	CapSetRIT
	CapGetRIT
	CapSetTS
	CapGetTS
	CapSetSplitVFO
	CapGetSplitVFO
	CapSetSplitFreq
	CapGetSplitFreq
	CapSetSplitMode
	CapGetSplitMode
	CapSetRptrShift
	CapGetRptrShift
	CapSetRptrOffs
	CapGetRptrOffs
	CapSetPowerStat
	CapGetPowerStat
	CapSetMem
	CapVFOOp
	CapGetInfo
	CapTransceive
)

var capNames = map[string]Cap{
	"set_freq":       CapSetFreq,
	"get_freq":       CapGetFreq,
	"set_mode":       CapSetMode,
	"get_mode":       CapGetMode,
	"set_vfo":        CapSetVFO,
	"get_vfo":        CapGetVFO,
	"set_ptt":        CapSetPTT,
	"get_ptt":        CapGetPTT,
	"get_dcd":        CapGetDCD,
	"set_rit":        CapSetRIT,
	"get_rit":        CapGetRIT,
	"set_ts":         CapSetTS,
	"get_ts":         CapGetTS,
	"set_split_vfo":  CapSetSplitVFO,
	"get_split_vfo":  CapGetSplitVFO,
	"set_split_freq": CapSetSplitFreq,
	"get_split_freq": CapGetSplitFreq,
	"set_split_mode": CapSetSplitMode,
	"get_split_mode": CapGetSplitMode,
	"set_rptr_shift": CapSetRptrShift,
	"get_rptr_shift": CapGetRptrShift,
	"set_rptr_offs":  CapSetRptrOffs,
	"get_rptr_offs":  CapGetRptrOffs,
	"set_powerstat":  CapSetPowerStat,
	"get_powerstat":  CapGetPowerStat,
	"set_mem":        CapSetMem,
	"vfo_op":         CapVFOOp,
	"get_info":       CapGetInfo,
	"transceive":     CapTransceive,
}

// ParseCaps converts operation names such as "set_freq" into a Cap set.
func ParseCaps(names []string) (Cap, error) {
	var c Cap
	for _, n := range names {
		v, ok := capNames[n]
		if !ok {
			return 0, fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, n)
		}
		c |= v
	}
	return c, nil
}

// Names lists the operation names in c.
func (c Cap) Names() []string {
	var out []string
	for name, v := range capNames {
		if c&v != 0 {
			out = append(out, name)
		}
	}
	return out
}

// PortType is the kind of byte transport a model expects.
type PortType int

const (
	PortNone PortType = iota
	PortSerial
	PortNetwork
)

func (p PortType) String() string {
	switch p {
	case PortNone:
		return "none"
	case PortSerial:
		return "serial"
	case PortNetwork:
		return "network"
	}
	return "unknown"
}

// Status is the maturity of a model's support.
type Status int

const (
	StatusAlpha Status = iota
	StatusUntested
	StatusBeta
	StatusStable
)

func (s Status) String() string {
	switch s {
	case StatusAlpha:
		return "Alpha"
	case StatusUntested:
		return "Untested"
	case StatusBeta:
		return "Beta"
	case StatusStable:
		return "Stable"
	}
	return "Unknown"
}

// FreqRange is a receive or transmit range.
type FreqRange struct {
	Start Freq
	End   Freq
	Modes Mode
}

// Filter gives the passband width for a set of modes. The first entry
// matching a mode is its normal width.
type Filter struct {
	Modes Mode
	Width int
}

// TuningStep is a tuning step available in a set of modes.
type TuningStep struct {
	Modes Mode
	Step  int
}

// Caps is the static description of one model. It is immutable once
// registered and shared by every handle of that model.
type Caps struct {
	Model     Model
	ModelName string
	MfgName   string
	Version   string
	Status    Status

	PortType       PortType
	SerialRateMin  int
	SerialRateMax  int
	SerialDataBits int
	SerialStopBits int
	SerialParity   string

	Timeout        time.Duration
	Retry          int
	WriteDelay     time.Duration
	PostWriteDelay time.Duration

	Ops       Cap
	Modes     Mode
	VFOs      VFO
	VFOOps    VFOOp
	GetLevels Level
	SetLevels Level
	GetFuncs  Func
	SetFuncs  Func

	RxRanges    []FreqRange
	TxRanges    []FreqRange
	TuningSteps []TuningStep
	Filters     []Filter
	StrCal      CalTable
	Preamp      []int
	Attenuator  []int

	// New builds the family backend for one handle.
	New func(st *State) (Backend, error)

	// Priv is family-private model data.
	Priv interface{}
}

// Has reports whether every operation in op is implemented.
func (c *Caps) Has(op Cap) bool {
	return c.Ops&op == op
}

// PassbandNormal returns the normal width for mode, or 0 when the model
// lists no filter for it.
func (c *Caps) PassbandNormal(mode Mode) int {
	for _, f := range c.Filters {
		if f.Modes&mode != 0 {
			return f.Width
		}
	}
	return 0
}

// PassbandNarrow returns the next width below normal for mode.
func (c *Caps) PassbandNarrow(mode Mode) int {
	normal := c.PassbandNormal(mode)
	for _, f := range c.Filters {
		if f.Modes&mode != 0 && f.Width < normal {
			return f.Width
		}
	}
	return 0
}

// PassbandWide returns the next width above normal for mode.
func (c *Caps) PassbandWide(mode Mode) int {
	normal := c.PassbandNormal(mode)
	wide := 0
	for _, f := range c.Filters {
		if f.Modes&mode != 0 && f.Width > normal && (wide == 0 || f.Width < wide) {
			wide = f.Width
		}
	}
	return wide
}

// InRxRange reports whether f is inside a receive range. Models that
// declare no ranges accept any positive frequency.
func (c *Caps) InRxRange(f Freq) bool {
	if len(c.RxRanges) == 0 {
		return f > 0
	}
	for _, r := range c.RxRanges {
		if f >= r.Start && f <= r.End {
			return true
		}
	}
	return false
}

// HasTuningStep reports whether step is listed for any mode.
func (c *Caps) HasTuningStep(step int) bool {
	if len(c.TuningSteps) == 0 {
		return step > 0
	}
	for _, ts := range c.TuningSteps {
		if ts.Step == step {
			return true
		}
	}
	return false
}
