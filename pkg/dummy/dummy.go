// Package dummy is an in-memory radio for testing the daemon and clients
// without hardware.
package dummy

import (
	"fmt"
	"sync"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
)

// ModelDummy is the model number of the in-memory radio.
const ModelDummy rig.Model = 1

// Default frequencies (Hz)
const (
	DefaultFreqA = 14078000 // 20m
	DefaultFreqB = 7078000  // 40m
)

// Configuration tokens.
const (
	ConfMagic      = "magic_conf"
	ConfStaticData = "static_data"
)

const allModes = rig.ModeAM | rig.ModeCW | rig.ModeUSB | rig.ModeLSB | rig.ModeRTTY |
	rig.ModeFM | rig.ModeWFM | rig.ModeCWR | rig.ModeRTTYR | rig.ModePKTLSB |
	rig.ModePKTUSB | rig.ModePKTFM

func init() {
	rig.RegisterFamily(rig.FamilyDummy, "dummy", Load)
}

// Load registers the dummy model with reg.
func Load(reg *rig.Registry) error {
	return reg.Register(Caps())
}

// Caps returns the capability table of the dummy model.
func Caps() *rig.Caps {
	ops, _ := rig.ParseCaps([]string{
		"set_freq", "get_freq", "set_mode", "get_mode", "set_vfo", "get_vfo",
		"set_ptt", "get_ptt", "get_dcd", "set_rit", "get_rit", "set_ts", "get_ts",
		"set_split_vfo", "get_split_vfo", "set_split_freq", "get_split_freq",
		"set_split_mode", "get_split_mode", "set_rptr_shift", "get_rptr_shift",
		"set_rptr_offs", "get_rptr_offs", "set_powerstat", "get_powerstat",
		"set_mem", "vfo_op", "get_info",
	})
	levels := rig.LevelPreamp | rig.LevelAtt | rig.LevelAF | rig.LevelRF | rig.LevelSQL |
		rig.LevelRFPower | rig.LevelMicGain | rig.LevelKeySpd | rig.LevelCWPitch |
		rig.LevelComp | rig.LevelAGC | rig.LevelNR | rig.LevelVOXGain
	funcs := rig.FuncNB | rig.FuncComp | rig.FuncVOX | rig.FuncTone | rig.FuncTSQL |
		rig.FuncFBKIN | rig.FuncANF | rig.FuncNR | rig.FuncMon | rig.FuncMN

	return &rig.Caps{
		Model:      ModelDummy,
		ModelName:  "Dummy",
		MfgName:    "rigd",
		Version:    "0.5",
		Status:     rig.StatusStable,
		PortType:   rig.PortNone,
		Timeout:    time.Second,
		Ops:        ops,
		Modes:      allModes,
		VFOs:       rig.VFOA | rig.VFOB | rig.VFOMem,
		VFOOps:     rig.OpCPY | rig.OpXCHG | rig.OpFromVFO | rig.OpToVFO | rig.OpMCL,
		SetLevels:  levels,
		GetLevels:  levels | rig.LevelRawStr | rig.LevelStrength | rig.LevelSWR,
		GetFuncs:   funcs,
		SetFuncs:   funcs,
		RxRanges:   []rig.FreqRange{{Start: 150 * rig.KHz, End: 1500 * rig.MHz, Modes: allModes}},
		TxRanges:   []rig.FreqRange{{Start: 1800 * rig.KHz, End: 440 * rig.MHz, Modes: allModes}},
		Preamp:     []int{10},
		Attenuator: []int{10, 20, 30},
		StrCal:     rig.CalTable{{Raw: 0, Val: -54}, {Raw: 255, Val: 60}},
		TuningSteps: []rig.TuningStep{
			{Modes: allModes, Step: 1},
			{Modes: allModes, Step: 10},
			{Modes: allModes, Step: 100},
			{Modes: allModes, Step: 1000},
			{Modes: allModes, Step: 2500},
			{Modes: allModes, Step: 5000},
			{Modes: allModes, Step: 6250},
			{Modes: allModes, Step: 10000},
			{Modes: allModes, Step: 12500},
			{Modes: allModes, Step: 25000},
			{Modes: allModes, Step: 100000},
		},
		Filters: []rig.Filter{
			{Modes: rig.ModeSSB | rig.ModeRTTY | rig.ModeRTTYR | rig.ModePKTLSB | rig.ModePKTUSB, Width: 2400},
			{Modes: rig.ModeSSB | rig.ModePKTLSB | rig.ModePKTUSB, Width: 1800},
			{Modes: rig.ModeSSB | rig.ModePKTLSB | rig.ModePKTUSB, Width: 3000},
			{Modes: rig.ModeCW | rig.ModeCWR, Width: 500},
			{Modes: rig.ModeCW | rig.ModeCWR, Width: 250},
			{Modes: rig.ModeCW | rig.ModeCWR, Width: 2400},
			{Modes: rig.ModeAM, Width: 6000},
			{Modes: rig.ModeFM | rig.ModePKTFM, Width: 15000},
			{Modes: rig.ModeWFM, Width: 230000},
		},
		New: New,
	}
}

type channel struct {
	freq  rig.Freq
	mode  rig.Mode
	width int
}

// Radio is the in-memory backend. Every handle gets its own radio.
type Radio struct {
	rig.Unimplemented

	st    *rig.State
	mutex sync.RWMutex

	vfos  map[rig.VFO]*channel
	curr  rig.VFO
	mems  map[int]channel
	mem   int
	ptt   bool
	split bool
	txVFO rig.VFO
	ts    int
	rit   int
	shift rig.RptrShift
	offs  int
	power rig.PowerStatus

	levels map[rig.Level]rig.Value
	funcs  rig.Func
	conf   map[string]string
}

// New creates a radio tuned to 20m USB.
func New(st *rig.State) (rig.Backend, error) {
	return &Radio{
		st: st,
		vfos: map[rig.VFO]*channel{
			rig.VFOA:   {freq: DefaultFreqA, mode: rig.ModeUSB, width: 2400},
			rig.VFOB:   {freq: DefaultFreqB, mode: rig.ModeUSB, width: 2400},
			rig.VFOMem: {freq: DefaultFreqA, mode: rig.ModeUSB, width: 2400},
		},
		curr:  rig.VFOA,
		mems:  make(map[int]channel),
		txVFO: rig.VFOB,
		ts:    1000,
		power: rig.PowerOn,
		levels: map[rig.Level]rig.Value{
			rig.LevelAF:       {F: 0.5},
			rig.LevelRFPower:  {F: 0.5},
			rig.LevelRawStr:   {I: 120},
			rig.LevelStrength: {I: -10},
			rig.LevelSWR:      {F: 0.1},
			rig.LevelKeySpd:   {I: 20},
			rig.LevelCWPitch:  {I: 600},
			rig.LevelAGC:      {I: rig.AGCMedium},
		},
		conf: map[string]string{
			ConfMagic:      "DX",
			ConfStaticData: "false",
		},
	}, nil
}

func (r *Radio) Open() error {
	r.st.Log().Debug("dummy", "radio opened", map[string]interface{}{
		"freq": r.vfos[r.curr].freq,
		"mode": r.vfos[r.curr].mode.String(),
	})
	return nil
}

func (r *Radio) Close() error {
	r.st.Log().Debug("dummy", "radio closed")
	return nil
}

func (r *Radio) current() *channel {
	return r.vfos[r.curr]
}

func (r *Radio) SetFreq(f rig.Freq) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.current().freq = f
	return nil
}

func (r *Radio) GetFreq() (rig.Freq, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.current().freq, nil
}

func (r *Radio) SetMode(mode rig.Mode, width int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ch := r.current()
	ch.mode = mode
	switch width {
	case rig.PassbandNoChange:
	case rig.PassbandNormal:
		ch.width = r.st.Caps.PassbandNormal(mode)
	default:
		ch.width = width
	}
	return nil
}

func (r *Radio) GetMode() (rig.Mode, int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ch := r.current()
	return ch.mode, ch.width, nil
}

func (r *Radio) SetVFO(vfo rig.VFO) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if vfo == rig.VFOVFO {
		vfo = rig.VFOA
	}
	if _, ok := r.vfos[vfo]; !ok {
		return fmt.Errorf("%w: VFO %s", rig.ErrInvalidArgument, vfo)
	}
	r.curr = vfo
	return nil
}

func (r *Radio) GetVFO() (rig.VFO, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.curr, nil
}

func (r *Radio) SetPTT(on bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if on != r.ptt {
		r.st.Log().Info("dummy", "PTT changed", map[string]interface{}{"ptt": on})
		r.ptt = on
	}
	return nil
}

func (r *Radio) GetPTT() (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.ptt, nil
}

// GetDCD reports an open squelch while receiving with SQL fully down.
func (r *Radio) GetDCD() (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return !r.ptt && r.levels[rig.LevelSQL].F == 0, nil
}

func (r *Radio) SetLevel(level rig.Level, val rig.Value) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.levels[level] = val
	return nil
}

func (r *Radio) GetLevel(level rig.Level) (rig.Value, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.levels[level], nil
}

func (r *Radio) SetFunc(fn rig.Func, on bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if on {
		r.funcs |= fn
	} else {
		r.funcs &^= fn
	}
	return nil
}

func (r *Radio) GetFunc(fn rig.Func) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.funcs&fn != 0, nil
}

func (r *Radio) SetRIT(offset int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.rit = offset
	return nil
}

func (r *Radio) GetRIT() (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.rit, nil
}

func (r *Radio) SetTS(step int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.ts = step
	return nil
}

func (r *Radio) GetTS() (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.ts, nil
}

func (r *Radio) SetSplitVFO(split bool, txVFO rig.VFO) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if txVFO != rig.VFOA && txVFO != rig.VFOB {
		txVFO = rig.VFOB
	}
	r.split = split
	r.txVFO = txVFO
	return nil
}

func (r *Radio) GetSplitVFO() (bool, rig.VFO, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.split, r.txVFO, nil
}

func (r *Radio) SetSplitFreq(f rig.Freq) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.vfos[r.txVFO].freq = f
	return nil
}

func (r *Radio) GetSplitFreq() (rig.Freq, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.vfos[r.txVFO].freq, nil
}

func (r *Radio) SetSplitMode(mode rig.Mode, width int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ch := r.vfos[r.txVFO]
	ch.mode = mode
	if width != rig.PassbandNoChange {
		if width == rig.PassbandNormal {
			width = r.st.Caps.PassbandNormal(mode)
		}
		ch.width = width
	}
	return nil
}

func (r *Radio) GetSplitMode() (rig.Mode, int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ch := r.vfos[r.txVFO]
	return ch.mode, ch.width, nil
}

func (r *Radio) SetRptrShift(shift rig.RptrShift) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.shift = shift
	return nil
}

func (r *Radio) GetRptrShift() (rig.RptrShift, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.shift, nil
}

func (r *Radio) SetRptrOffs(offset int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.offs = offset
	return nil
}

func (r *Radio) GetRptrOffs() (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.offs, nil
}

func (r *Radio) SetPowerStat(status rig.PowerStatus) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.power = status
	return nil
}

func (r *Radio) GetPowerStat() (rig.PowerStatus, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.power, nil
}

// SetMem selects a memory channel and loads it into the MEM register.
func (r *Radio) SetMem(ch int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.mem = ch
	if saved, ok := r.mems[ch]; ok {
		*r.vfos[rig.VFOMem] = saved
	}
	return nil
}

func (r *Radio) VFOOp(op rig.VFOOp) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	switch op {
	case rig.OpCPY:
		*r.vfos[rig.VFOB] = *r.vfos[rig.VFOA]
	case rig.OpXCHG:
		r.vfos[rig.VFOA], r.vfos[rig.VFOB] = r.vfos[rig.VFOB], r.vfos[rig.VFOA]
	case rig.OpFromVFO:
		r.mems[r.mem] = *r.current()
	case rig.OpToVFO:
		saved, ok := r.mems[r.mem]
		if !ok {
			return fmt.Errorf("%w: memory channel %d is empty", rig.ErrRejected, r.mem)
		}
		*r.vfos[rig.VFOA] = saved
	case rig.OpMCL:
		delete(r.mems, r.mem)
	default:
		return fmt.Errorf("%w: VFO op %s", rig.ErrInvalidArgument, op)
	}
	return nil
}

func (r *Radio) GetInfo() (string, error) {
	return "Dummy radio (in-memory)", nil
}

func (r *Radio) SetConf(token, val string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.conf[token]; !ok {
		return fmt.Errorf("%w: unknown token %q", rig.ErrInvalidArgument, token)
	}
	r.conf[token] = val
	return nil
}

func (r *Radio) GetConf(token string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	val, ok := r.conf[token]
	if !ok {
		return "", fmt.Errorf("%w: unknown token %q", rig.ErrInvalidArgument, token)
	}
	return val, nil
}

// DecodeEvent never reports anything; it waits out poll so a listener
// does not spin.
func (r *Radio) DecodeEvent(poll time.Duration) ([]rig.Event, error) {
	time.Sleep(poll)
	return nil, nil
}
