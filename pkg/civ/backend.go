package civ

import (
	"fmt"

	"github.com/dougsko/rigd/pkg/bcd"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
)

var funcSubs = map[rig.Func]byte{
	rig.FuncFAGC:  SubFuncAGC,
	rig.FuncNB:    SubFuncNB,
	rig.FuncComp:  SubFuncComp,
	rig.FuncVOX:   SubFuncVOX,
	rig.FuncTone:  SubFuncTone,
	rig.FuncTSQL:  SubFuncTSQL,
	rig.FuncFBKIN: SubFuncBKIN,
	rig.FuncANF:   SubFuncANF,
	rig.FuncNR:    SubFuncNR,
	rig.FuncAPF:   SubFuncAPF,
	rig.FuncMon:   SubFuncMon,
	rig.FuncMN:    SubFuncMN,
	rig.FuncAFC:   SubFuncAFC,
}

// Backend drives one Icom radio over CI-V.
type Backend struct {
	rig.Unimplemented

	st   *rig.State
	caps *rig.Caps
	md   *ModelData
	eng  *Engine

	addr   byte
	legacy bool
	noXchg bool
}

// NewBackend is the rig.Caps constructor for every Icom model.
func NewBackend(st *rig.State) (rig.Backend, error) {
	md, err := modelData(st.Caps)
	if err != nil {
		return nil, err
	}
	return &Backend{
		st:     st,
		caps:   st.Caps,
		md:     md,
		addr:   md.Addr,
		legacy: md.Legacy,
	}, nil
}

// Open builds the transaction engine on the session transport.
func (b *Backend) Open() error {
	opts := []Option{
		WithTimeout(b.st.Timeout),
		WithRetry(b.st.Retry),
		WithWriteDelay(b.st.WriteDelay),
		WithPostWriteDelay(b.st.PostWriteDelay),
		WithLogger(b.st.Log()),
	}
	if b.st.Tracer != nil {
		opts = append(opts, WithTracer(b.st.Tracer))
	}
	b.eng = NewEngine(b.st.Transport, opts...)
	return nil
}

// Engine returns the transaction engine, nil before Open.
func (b *Backend) Engine() *Engine {
	return b.eng
}

func (b *Backend) freqDigits() int {
	if b.legacy {
		return 8
	}
	return 10
}

func (b *Backend) ack(cmd byte, sub int, payload []byte) error {
	if b.eng == nil {
		return fmt.Errorf("%w: backend not open", transport.ErrIO)
	}
	return b.eng.Ack(b.addr, cmd, sub, payload)
}

// query runs a read command and returns the reply data after the
// subcommand, checking that the reply echoes cmd and sub.
func (b *Backend) query(cmd byte, sub int, payload []byte) ([]byte, error) {
	if b.eng == nil {
		return nil, fmt.Errorf("%w: backend not open", transport.ErrIO)
	}
	reply, err := b.eng.Transact(b.addr, cmd, sub, payload)
	if err != nil {
		return nil, err
	}
	if reply.Cmd != cmd {
		return nil, fmt.Errorf("%w: reply to %#02x has command %#02x", rig.ErrMalformed, cmd, reply.Cmd)
	}
	data := reply.Data
	if sub != NoSub {
		if len(data) == 0 || data[0] != byte(sub) {
			return nil, fmt.Errorf("%w: reply to %#02x/%#02x has data % X", rig.ErrMalformed, cmd, sub, data)
		}
		data = data[1:]
	}
	return data, nil
}

func (b *Backend) SetFreq(f rig.Freq) error {
	payload, err := bcd.EncodeLE(uint64(f), b.freqDigits())
	if err != nil {
		return fmt.Errorf("%w: %v", rig.ErrInvalidArgument, err)
	}
	return b.ack(CmdSetFreq, NoSub, payload)
}

func (b *Backend) GetFreq() (rig.Freq, error) {
	data, err := b.query(CmdRdFreq, NoSub, nil)
	if err != nil {
		return 0, err
	}
	return decodeFreq(data)
}

// decodeFreq reads a 4 or 5 byte frequency. A single pad byte is what the
// radio reports for a blank memory channel.
func decodeFreq(data []byte) (rig.Freq, error) {
	if len(data) == 1 && data[0] == Pad {
		return 0, nil
	}
	if len(data) != 4 && len(data) != 5 {
		return 0, fmt.Errorf("%w: frequency of %d bytes", rig.ErrMalformed, len(data))
	}
	v, err := bcd.DecodeLE(data, len(data)*2)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", rig.ErrMalformed, err)
	}
	return rig.Freq(v), nil
}

func (b *Backend) SetMode(mode rig.Mode, width int) error {
	payload, err := encodeMode(b.caps, mode, width)
	if err != nil {
		return err
	}
	return b.ack(CmdSetMode, NoSub, payload)
}

func (b *Backend) GetMode() (rig.Mode, int, error) {
	data, err := b.query(CmdRdMode, NoSub, nil)
	if err != nil {
		return rig.ModeNone, 0, err
	}
	return decodeMode(b.caps, data, b.st.Log())
}

func (b *Backend) SetVFO(vfo rig.VFO) error {
	switch vfo {
	case rig.VFOA:
		return b.ack(CmdSetVFO, SubVFOA, nil)
	case rig.VFOB:
		return b.ack(CmdSetVFO, SubVFOB, nil)
	case rig.VFOMain:
		return b.ack(CmdSetVFO, SubVFOMain, nil)
	case rig.VFOSub:
		return b.ack(CmdSetVFO, SubVFOSub, nil)
	case rig.VFOVFO:
		return b.ack(CmdSetVFO, NoSub, nil)
	case rig.VFOMem:
		return b.ack(CmdSetMem, NoSub, nil)
	}
	return fmt.Errorf("%w: VFO %s", rig.ErrInvalidArgument, vfo)
}

func boolByte(on bool) byte {
	if on {
		return 1
	}
	return 0
}

func (b *Backend) SetPTT(on bool) error {
	return b.ack(CmdCtlPTT, SubPTT, []byte{boolByte(on)})
}

func (b *Backend) GetPTT() (bool, error) {
	data, err := b.query(CmdCtlPTT, SubPTT, nil)
	if err != nil {
		return false, err
	}
	if len(data) != 1 {
		return false, fmt.Errorf("%w: PTT reply of %d bytes", rig.ErrMalformed, len(data))
	}
	return data[0] == 1, nil
}

func (b *Backend) GetDCD() (bool, error) {
	data, err := b.query(CmdRdSqsm, SubMtrSQL, nil)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, fmt.Errorf("%w: empty squelch reply", rig.ErrMalformed)
	}
	v, err := bcd.DecodeBE(data, len(data)*2)
	if err != nil {
		return false, fmt.Errorf("%w: %v", rig.ErrMalformed, err)
	}
	return v == 1, nil
}

func (b *Backend) SetLevel(level rig.Level, val rig.Value) error {
	req, err := encodeLevel(b.caps, level, val)
	if err != nil {
		return err
	}
	return b.ack(req.cmd, req.sub, req.payload)
}

func (b *Backend) GetLevel(level rig.Level) (rig.Value, error) {
	lc, ok := levelCmds[level]
	if !ok {
		return rig.Value{}, fmt.Errorf("%w: level %s has no CI-V command", rig.ErrUnsupported, level)
	}
	data, err := b.query(lc.cmd, lc.sub, nil)
	if err != nil {
		return rig.Value{}, err
	}
	return decodeLevel(b.caps, level, data)
}

func (b *Backend) SetFunc(fn rig.Func, on bool) error {
	sub, ok := funcSubs[fn]
	if !ok {
		return fmt.Errorf("%w: func %s has no CI-V command", rig.ErrUnsupported, fn)
	}
	val := boolByte(on)
	if fn == rig.FuncFAGC {
		// Fast AGC is an AGC preset: 1 is fast, 2 is the slower default.
		val = 2 - val
	}
	return b.ack(CmdCtlFunc, int(sub), []byte{val})
}

func (b *Backend) GetFunc(fn rig.Func) (bool, error) {
	sub, ok := funcSubs[fn]
	if !ok {
		return false, fmt.Errorf("%w: func %s has no CI-V command", rig.ErrUnsupported, fn)
	}
	data, err := b.query(CmdCtlFunc, int(sub), nil)
	if err != nil {
		return false, err
	}
	if len(data) != 1 {
		return false, fmt.Errorf("%w: func reply of %d bytes", rig.ErrMalformed, len(data))
	}
	return data[0] == 1, nil
}

// SetRIT sends the offset magnitude; negative offsets add a sign byte.
func (b *Backend) SetRIT(offset int) error {
	mag := offset
	if mag < 0 {
		mag = -mag
	}
	payload, err := bcd.EncodeLE(uint64(mag), 4)
	if err != nil {
		return fmt.Errorf("%w: %v", rig.ErrInvalidArgument, err)
	}
	if offset < 0 {
		payload = append(payload, 1)
	}
	return b.ack(CmdSetOffs, NoSub, payload)
}

func (b *Backend) SetTS(step int) error {
	for _, ts := range b.md.TS {
		if ts.Step == step {
			return b.ack(CmdSetTS, int(ts.Code), nil)
		}
	}
	return fmt.Errorf("%w: tuning step %d", rig.ErrInvalidArgument, step)
}

func (b *Backend) GetTS() (int, error) {
	data, err := b.query(CmdSetTS, NoSub, nil)
	if err != nil {
		return 0, err
	}
	if len(data) != 1 {
		return 0, fmt.Errorf("%w: tuning step reply of %d bytes", rig.ErrMalformed, len(data))
	}
	for _, ts := range b.md.TS {
		if ts.Code == data[0] {
			return ts.Step, nil
		}
	}
	return 0, fmt.Errorf("%w: tuning step code %#02x", rig.ErrMalformed, data[0])
}

func (b *Backend) SetSplitVFO(split bool, txVFO rig.VFO) error {
	sub := SubSplitOff
	if split {
		sub = SubSplitOn
	}
	return b.ack(CmdCtlSplt, sub, nil)
}

func (b *Backend) GetSplitVFO() (bool, rig.VFO, error) {
	data, err := b.query(CmdCtlSplt, NoSub, nil)
	if err != nil {
		return false, rig.VFONone, err
	}
	if len(data) == 0 {
		return false, rig.VFONone, fmt.Errorf("%w: empty split reply", rig.ErrMalformed)
	}
	if data[0] == SubSplitOn {
		return true, rig.VFOB, nil
	}
	return false, rig.VFOA, nil
}

// onTxVFO runs fn with the transmit VFO selected, by exchanging the VFOs
// when the model can, else by selecting VFO B and then VFO A again.
func (b *Backend) onTxVFO(fn func() error) error {
	xchg := !b.noXchg && b.caps.VFOOps&rig.OpXCHG != 0

	var err error
	if xchg {
		err = b.ack(CmdSetVFO, SubXchng, nil)
	} else {
		err = b.SetVFO(rig.VFOB)
	}
	if err != nil {
		return err
	}

	err = fn()

	var rerr error
	if xchg {
		rerr = b.ack(CmdSetVFO, SubXchng, nil)
	} else {
		rerr = b.SetVFO(rig.VFOA)
	}
	if err == nil {
		err = rerr
	}
	return err
}

func (b *Backend) SetSplitFreq(f rig.Freq) error {
	return b.onTxVFO(func() error { return b.SetFreq(f) })
}

func (b *Backend) GetSplitFreq() (rig.Freq, error) {
	var f rig.Freq
	err := b.onTxVFO(func() error {
		var err error
		f, err = b.GetFreq()
		return err
	})
	return f, err
}

func (b *Backend) SetSplitMode(mode rig.Mode, width int) error {
	return b.onTxVFO(func() error { return b.SetMode(mode, width) })
}

func (b *Backend) GetSplitMode() (rig.Mode, int, error) {
	var (
		mode  rig.Mode
		width int
	)
	err := b.onTxVFO(func() error {
		var err error
		mode, width, err = b.GetMode()
		return err
	})
	return mode, width, err
}

func (b *Backend) SetRptrShift(shift rig.RptrShift) error {
	switch shift {
	case rig.RptrShiftNone:
		return b.ack(CmdCtlSplt, SubDupOff, nil)
	case rig.RptrShiftMinus:
		return b.ack(CmdCtlSplt, SubDupMinus, nil)
	case rig.RptrShiftPlus:
		return b.ack(CmdCtlSplt, SubDupPlus, nil)
	}
	return fmt.Errorf("%w: repeater shift %d", rig.ErrInvalidArgument, int(shift))
}

func (b *Backend) GetRptrShift() (rig.RptrShift, error) {
	data, err := b.query(CmdCtlSplt, NoSub, nil)
	if err != nil {
		return rig.RptrShiftNone, err
	}
	if len(data) == 0 {
		return rig.RptrShiftNone, fmt.Errorf("%w: empty duplex reply", rig.ErrMalformed)
	}
	switch data[0] {
	case SubDupMinus:
		return rig.RptrShiftMinus, nil
	case SubDupPlus:
		return rig.RptrShiftPlus, nil
	case SubDupOff, SubSplitOff, SubSplitOn:
		return rig.RptrShiftNone, nil
	}
	return rig.RptrShiftNone, fmt.Errorf("%w: duplex code %#02x", rig.ErrMalformed, data[0])
}

// SetRptrOffs sets the repeater offset, carried in units of 100 Hz.
func (b *Backend) SetRptrOffs(offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative repeater offset", rig.ErrInvalidArgument)
	}
	payload, err := bcd.EncodeLE(uint64(offset/100), 6)
	if err != nil {
		return fmt.Errorf("%w: %v", rig.ErrInvalidArgument, err)
	}
	return b.ack(CmdSetOffs, NoSub, payload)
}

func (b *Backend) GetRptrOffs() (int, error) {
	data, err := b.query(CmdRdOffs, NoSub, nil)
	if err != nil {
		return 0, err
	}
	if len(data) != 3 {
		return 0, fmt.Errorf("%w: offset of %d bytes", rig.ErrMalformed, len(data))
	}
	v, err := bcd.DecodeLE(data, 6)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", rig.ErrMalformed, err)
	}
	return int(v) * 100, nil
}

func (b *Backend) SetPowerStat(status rig.PowerStatus) error {
	switch status {
	case rig.PowerOff:
		return b.ack(CmdSetPwr, SubPwrOff, nil)
	case rig.PowerOn:
		return b.ack(CmdSetPwr, SubPwrOn, nil)
	case rig.PowerStandby:
		return b.ack(CmdSetPwr, SubPwrStdby, nil)
	}
	return fmt.Errorf("%w: power status %d", rig.ErrInvalidArgument, int(status))
}

func (b *Backend) GetPowerStat() (rig.PowerStatus, error) {
	data, err := b.query(CmdSetPwr, NoSub, nil)
	if err != nil {
		return rig.PowerOff, err
	}
	if len(data) != 1 {
		return rig.PowerOff, fmt.Errorf("%w: power reply of %d bytes", rig.ErrMalformed, len(data))
	}
	switch data[0] {
	case SubPwrOff:
		return rig.PowerOff, nil
	case SubPwrOn:
		return rig.PowerOn, nil
	case SubPwrStdby:
		return rig.PowerStandby, nil
	}
	return rig.PowerOff, fmt.Errorf("%w: power code %#02x", rig.ErrMalformed, data[0])
}

func (b *Backend) SetMem(ch int) error {
	digits := 2
	if ch >= 100 {
		digits = 4
	}
	payload, err := bcd.EncodeBE(uint64(ch), digits)
	if err != nil {
		return fmt.Errorf("%w: %v", rig.ErrInvalidArgument, err)
	}
	return b.ack(CmdSetMem, NoSub, payload)
}

func (b *Backend) VFOOp(op rig.VFOOp) error {
	switch op {
	case rig.OpCPY:
		return b.ack(CmdSetVFO, SubBToA, nil)
	case rig.OpXCHG:
		return b.ack(CmdSetVFO, SubXchng, nil)
	case rig.OpFromVFO:
		return b.ack(CmdWrMem, NoSub, nil)
	case rig.OpToVFO:
		return b.ack(CmdMem2VFO, NoSub, nil)
	case rig.OpMCL:
		return b.ack(CmdClrMem, NoSub, nil)
	}
	return fmt.Errorf("%w: VFO op %s", rig.ErrInvalidArgument, op)
}

func (b *Backend) GetInfo() (string, error) {
	data, err := b.query(CmdRdTrxID, SubRdTrxID, nil)
	if err != nil {
		return "", err
	}
	if len(data) != 1 {
		return "", fmt.Errorf("%w: transceiver id of %d bytes", rig.ErrMalformed, len(data))
	}
	res := identify(data[0])
	if res.Name == "" {
		return fmt.Sprintf("Icom transceiver id 0x%02x", data[0]), nil
	}
	return fmt.Sprintf("Icom %s (id 0x%02x)", res.Name, data[0]), nil
}
