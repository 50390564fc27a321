// Package rig is the model-independent side of radio control: model
// identifiers, capability tables, the model registry and device handles.
package rig

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Model identifies one radio model. The family is Model/100.
type Model int

// ModelNone is never a valid model.
const ModelNone Model = 0

// Family groups models served by the same backend.
type Family int

const (
	FamilyDummy Family = 0
	FamilyIcom  Family = 3
)

// MakeModel builds a model identifier from a family and a number within it.
func MakeModel(f Family, n int) Model {
	return Model(int(f)*100 + n)
}

// Family returns the backend family that serves m.
func (m Model) Family() Family {
	return Family(int(m) / 100)
}

// Freq is a frequency in Hz.
type Freq int64

const (
	Hz  Freq = 1
	KHz Freq = 1000
	MHz Freq = 1000000
)

func (f Freq) String() string {
	return fmt.Sprintf("%d Hz", int64(f))
}

// Passband widths with a special meaning.
const (
	PassbandNormal   = 0
	PassbandNoChange = -1
)

// Mode is a set of operating modes; a single mode has exactly one bit set.
type Mode uint64

const (
	ModeNone Mode = 0
	ModeAM   Mode = 1 << iota
	ModeCW
	ModeUSB
	ModeLSB
	ModeRTTY
	ModeFM
	ModeWFM
	ModeCWR
	ModeRTTYR
	ModeAMS
	ModePKTLSB
	ModePKTUSB
	ModePKTFM
	ModeSAM
	ModePSK
	ModePSKR
	ModeDSTAR
)

// SSB is a convenience set.
const ModeSSB = ModeUSB | ModeLSB

var modeNames = map[Mode]string{
	ModeAM:     "AM",
	ModeCW:     "CW",
	ModeUSB:    "USB",
	ModeLSB:    "LSB",
	ModeRTTY:   "RTTY",
	ModeFM:     "FM",
	ModeWFM:    "WFM",
	ModeCWR:    "CWR",
	ModeRTTYR:  "RTTYR",
	ModeAMS:    "AMS",
	ModePKTLSB: "PKTLSB",
	ModePKTUSB: "PKTUSB",
	ModePKTFM:  "PKTFM",
	ModeSAM:    "SAM",
	ModePSK:    "PSK",
	ModePSKR:   "PSKR",
	ModeDSTAR:  "DSTAR",
}

func (m Mode) String() string {
	if m == ModeNone {
		return "NONE"
	}
	return bitNames(uint64(m), func(b uint64) string { return modeNames[Mode(b)] })
}

// Single reports whether m names exactly one mode.
func (m Mode) Single() bool {
	return bits.OnesCount64(uint64(m)) == 1
}

// Modes returns the individual modes in m, lowest bit first.
func (m Mode) Modes() []Mode {
	var out []Mode
	for v := uint64(m); v != 0; v &= v - 1 {
		out = append(out, Mode(v&-v))
	}
	return out
}

// ParseMode parses one mode name or a "|"-separated set.
func ParseMode(s string) (Mode, error) {
	v, err := parseBits(s, func(name string) (uint64, bool) {
		for m, n := range modeNames {
			if n == name {
				return uint64(m), true
			}
		}
		return 0, false
	})
	if err != nil {
		return ModeNone, fmt.Errorf("%w: mode %s", ErrInvalidArgument, err)
	}
	return Mode(v), nil
}

// VFO selects a frequency register. A VFO value is a single bit except for
// VFONone; VFOCurrent means whichever register the radio is using.
type VFO uint32

const (
	VFONone VFO = 0
	VFOA    VFO = 1 << iota
	VFOB
	VFOC
	VFOMain
	VFOSub
	VFOMem
	// VFOVFO selects VFO mode without naming a register.
	VFOVFO
	VFOCurrent VFO = 1 << 29
)

var vfoNames = map[VFO]string{
	VFOA:       "VFOA",
	VFOB:       "VFOB",
	VFOC:       "VFOC",
	VFOMain:    "Main",
	VFOSub:     "Sub",
	VFOMem:     "MEM",
	VFOVFO:     "VFO",
	VFOCurrent: "currVFO",
}

func (v VFO) String() string {
	if v == VFONone {
		return "None"
	}
	return bitNames(uint64(v), func(b uint64) string { return vfoNames[VFO(b)] })
}

// ParseVFO parses a VFO name such as "VFOA", "A", "Main" or "currVFO".
func ParseVFO(s string) (VFO, error) {
	switch strings.ToUpper(s) {
	case "A", "VFOA":
		return VFOA, nil
	case "B", "VFOB":
		return VFOB, nil
	case "C", "VFOC":
		return VFOC, nil
	case "MAIN":
		return VFOMain, nil
	case "SUB":
		return VFOSub, nil
	case "MEM":
		return VFOMem, nil
	case "VFO":
		return VFOVFO, nil
	case "", "CURR", "CURRVFO":
		return VFOCurrent, nil
	}
	return VFONone, fmt.Errorf("%w: unknown VFO %q", ErrInvalidArgument, s)
}

// Level is a set of analog settings and meters.
type Level uint64

const (
	LevelNone   Level = 0
	LevelPreamp Level = 1 << iota
	LevelAtt
	LevelAF
	LevelRF
	LevelSQL
	LevelIF
	LevelAPF
	LevelNR
	LevelPBTIn
	LevelPBTOut
	LevelCWPitch
	LevelRFPower
	LevelMicGain
	LevelKeySpd
	LevelNotchF
	LevelComp
	LevelAGC
	LevelBKINDL
	LevelBalance
	LevelVOXGain
	LevelAntiVOX
	LevelRawStr
	LevelSQLStat
	LevelSWR
	LevelALC
	LevelStrength
)

// LevelFloat holds the levels carried as a fraction in [0,1].
const LevelFloat = LevelAF | LevelRF | LevelSQL | LevelAPF | LevelNR | LevelPBTIn |
	LevelPBTOut | LevelRFPower | LevelMicGain | LevelComp | LevelBalance |
	LevelSWR | LevelALC | LevelVOXGain | LevelAntiVOX

// LevelReadOnly holds meters that can only be read.
const LevelReadOnly = LevelRawStr | LevelSQLStat | LevelSWR | LevelALC | LevelStrength

var levelNames = map[Level]string{
	LevelPreamp:   "PREAMP",
	LevelAtt:      "ATT",
	LevelAF:       "AF",
	LevelRF:       "RF",
	LevelSQL:      "SQL",
	LevelIF:       "IF",
	LevelAPF:      "APF",
	LevelNR:       "NR",
	LevelPBTIn:    "PBT_IN",
	LevelPBTOut:   "PBT_OUT",
	LevelCWPitch:  "CWPITCH",
	LevelRFPower:  "RFPOWER",
	LevelMicGain:  "MICGAIN",
	LevelKeySpd:   "KEYSPD",
	LevelNotchF:   "NOTCHF",
	LevelComp:     "COMP",
	LevelAGC:      "AGC",
	LevelBKINDL:   "BKINDL",
	LevelBalance:  "BAL",
	LevelVOXGain:  "VOXGAIN",
	LevelAntiVOX:  "ANTIVOX",
	LevelRawStr:   "RAWSTR",
	LevelSQLStat:  "SQLSTAT",
	LevelSWR:      "SWR",
	LevelALC:      "ALC",
	LevelStrength: "STRENGTH",
}

// IsFloat reports whether l is carried as a fraction.
func (l Level) IsFloat() bool {
	return l&LevelFloat != 0
}

func (l Level) String() string {
	if l == LevelNone {
		return "NONE"
	}
	return bitNames(uint64(l), func(b uint64) string { return levelNames[Level(b)] })
}

// ParseLevel parses a level name or a "|"-separated set.
func ParseLevel(s string) (Level, error) {
	v, err := parseBits(s, func(name string) (uint64, bool) {
		for l, n := range levelNames {
			if n == name {
				return uint64(l), true
			}
		}
		return 0, false
	})
	if err != nil {
		return LevelNone, fmt.Errorf("%w: level %s", ErrInvalidArgument, err)
	}
	return Level(v), nil
}

// Value carries a level setting; float levels use F and the rest use I.
type Value struct {
	I int
	F float64
}

// AGC presets carried in Value.I for LevelAGC.
const (
	AGCOff = iota
	AGCSuperFast
	AGCFast
	AGCSlow
	AGCUser
	AGCMedium
	AGCAuto
)

// Func is a set of on/off features.
type Func uint64

const (
	FuncNone Func = 0
	FuncFAGC Func = 1 << iota
	FuncNB
	FuncComp
	FuncVOX
	FuncTone
	FuncTSQL
	FuncFBKIN
	FuncANF
	FuncNR
	FuncAPF
	FuncMon
	FuncMN
	FuncAFC
)

var funcNames = map[Func]string{
	FuncFAGC:  "FAGC",
	FuncNB:    "NB",
	FuncComp:  "COMP",
	FuncVOX:   "VOX",
	FuncTone:  "TONE",
	FuncTSQL:  "TSQL",
	FuncFBKIN: "FBKIN",
	FuncANF:   "ANF",
	FuncNR:    "NR",
	FuncAPF:   "APF",
	FuncMon:   "MON",
	FuncMN:    "MN",
	FuncAFC:   "AFC",
}

func (f Func) String() string {
	if f == FuncNone {
		return "NONE"
	}
	return bitNames(uint64(f), func(b uint64) string { return funcNames[Func(b)] })
}

// ParseFunc parses a function name or a "|"-separated set.
func ParseFunc(s string) (Func, error) {
	v, err := parseBits(s, func(name string) (uint64, bool) {
		for f, n := range funcNames {
			if n == name {
				return uint64(f), true
			}
		}
		return 0, false
	})
	if err != nil {
		return FuncNone, fmt.Errorf("%w: func %s", ErrInvalidArgument, err)
	}
	return Func(v), nil
}

// PowerStatus is the radio's power state.
type PowerStatus int

const (
	PowerOff PowerStatus = iota
	PowerOn
	PowerStandby
)

func (p PowerStatus) String() string {
	switch p {
	case PowerOff:
		return "off"
	case PowerOn:
		return "on"
	case PowerStandby:
		return "standby"
	}
	return fmt.Sprintf("PowerStatus(%d)", int(p))
}

// RptrShift is the repeater offset direction.
type RptrShift int

const (
	RptrShiftNone RptrShift = iota
	RptrShiftMinus
	RptrShiftPlus
)

func (r RptrShift) String() string {
	switch r {
	case RptrShiftNone:
		return "None"
	case RptrShiftMinus:
		return "-"
	case RptrShiftPlus:
		return "+"
	}
	return fmt.Sprintf("RptrShift(%d)", int(r))
}

// VFOOp is a set of register operations.
type VFOOp uint32

const (
	OpNone    VFOOp = 0
	OpCPY     VFOOp = 1 << iota // copy VFO A to B
	OpXCHG                      // exchange VFO A and B
	OpFromVFO                   // VFO to memory
	OpToVFO                     // memory to VFO
	OpMCL                       // clear memory channel
)

var vfoOpNames = map[VFOOp]string{
	OpCPY:     "CPY",
	OpXCHG:    "XCHG",
	OpFromVFO: "FROM_VFO",
	OpToVFO:   "TO_VFO",
	OpMCL:     "MCL",
}

func (o VFOOp) String() string {
	if o == OpNone {
		return "NONE"
	}
	return bitNames(uint64(o), func(b uint64) string { return vfoOpNames[VFOOp(b)] })
}

// ParseVFOOp parses a VFO operation name or a "|"-separated set.
func ParseVFOOp(s string) (VFOOp, error) {
	v, err := parseBits(s, func(name string) (uint64, bool) {
		for o, n := range vfoOpNames {
			if n == name {
				return uint64(o), true
			}
		}
		return 0, false
	})
	if err != nil {
		return OpNone, fmt.Errorf("%w: vfo op %s", ErrInvalidArgument, err)
	}
	return VFOOp(v), nil
}

// EventKind tells which field of an Event is meaningful.
type EventKind int

const (
	EventFreq EventKind = iota + 1
	EventMode
)

func (k EventKind) String() string {
	switch k {
	case EventFreq:
		return "freq"
	case EventMode:
		return "mode"
	}
	return "unknown"
}

// Event is an unsolicited state change reported by the radio.
type Event struct {
	Kind  EventKind
	VFO   VFO
	Freq  Freq
	Mode  Mode
	Width int
}

func bitNames(v uint64, name func(uint64) string) string {
	var parts []string
	for ; v != 0; v &= v - 1 {
		b := v & -v
		n := name(b)
		if n == "" {
			n = fmt.Sprintf("0x%x", b)
		}
		parts = append(parts, n)
	}
	return strings.Join(parts, "|")
}

func parseBits(s string, lookup func(string) (uint64, bool)) (uint64, error) {
	var v uint64
	for _, part := range strings.Split(s, "|") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		b, ok := lookup(name)
		if !ok {
			return 0, fmt.Errorf("unknown name %q", part)
		}
		v |= b
	}
	if v == 0 {
		return 0, fmt.Errorf("empty value %q", s)
	}
	return v, nil
}

// sortedModels orders a model slice in place.
func sortedModels(models []Model) []Model {
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}
