// Package civ implements the Icom CI-V protocol: framing, the
// command/reply engine and the backend for Icom transceivers and receivers.
package civ

// Framing bytes.
const (
	Preamble   = 0xfe
	CtrlAddr   = 0xe0 // default controller address
	BcastAddr  = 0x00
	Terminator = 0xfd
	ACK        = 0xfb
	NAK        = 0xfa
	Collision  = 0xfc
	Pad        = 0xff
)

// Frame sizes.
const (
	AckFrameLen = 6
	MaxFrameLen = 56
	// NoSub marks a command sent without a subcommand byte.
	NoSub = -1
)

// Commands.
const (
	CmdSndFreq = 0x00 // transceive frequency
	CmdSndMode = 0x01 // transceive mode
	CmdRdBand  = 0x02
	CmdRdFreq  = 0x03
	CmdRdMode  = 0x04
	CmdSetFreq = 0x05
	CmdSetMode = 0x06
	CmdSetVFO  = 0x07
	CmdSetMem  = 0x08
	CmdWrMem   = 0x09
	CmdMem2VFO = 0x0a
	CmdClrMem  = 0x0b
	CmdRdOffs  = 0x0c
	CmdSetOffs = 0x0d
	CmdCtlScan = 0x0e
	CmdCtlSplt = 0x0f
	CmdSetTS   = 0x10
	CmdCtlAtt  = 0x11
	CmdCtlAnt  = 0x12
	CmdCtlLvl  = 0x14
	CmdRdSqsm  = 0x15
	CmdCtlFunc = 0x16
	CmdSndCW   = 0x17
	CmdSetPwr  = 0x18
	CmdRdTrxID = 0x19
	CmdCtlMem  = 0x1a
	CmdSetTone = 0x1b
	CmdCtlPTT  = 0x1c
	CmdCtlMisc = 0x7f
)

// VFO subcommands of CmdSetVFO.
const (
	SubVFOA    = 0x00
	SubVFOB    = 0x01
	SubBToA    = 0xa0
	SubXchng   = 0xb0
	SubVFOMain = 0xd0
	SubVFOSub  = 0xd1
)

// Split and duplex subcommands of CmdCtlSplt.
const (
	SubSplitOff = 0x00
	SubSplitOn  = 0x01
	SubDupOff   = 0x10
	SubDupMinus = 0x11
	SubDupPlus  = 0x12
)

// Level subcommands of CmdCtlLvl.
const (
	SubLvlAF      = 0x01
	SubLvlRF      = 0x02
	SubLvlSQL     = 0x03
	SubLvlIF      = 0x04
	SubLvlAPF     = 0x05
	SubLvlNR      = 0x06
	SubLvlPBTIn   = 0x07
	SubLvlPBTOut  = 0x08
	SubLvlCWPitch = 0x09
	SubLvlRFPower = 0x0a
	SubLvlMicGain = 0x0b
	SubLvlKeySpd  = 0x0c
	SubLvlNotchF  = 0x0d
	SubLvlComp    = 0x0e
	SubLvlBKINDL  = 0x0f
	SubLvlBalance = 0x10
	SubLvlVOXGain = 0x16
	SubLvlAntiVOX = 0x17
)

// Meter subcommands of CmdRdSqsm.
const (
	SubMtrSQL = 0x01 // squelch status
	SubMtrSML = 0x02 // S-meter
	SubMtrSWR = 0x12
	SubMtrALC = 0x13
)

// Function subcommands of CmdCtlFunc.
const (
	SubFuncPamp = 0x02
	SubFuncAGC  = 0x12
	SubFuncNB   = 0x22
	SubFuncAPF  = 0x32
	SubFuncNR   = 0x40
	SubFuncANF  = 0x41
	SubFuncTone = 0x42
	SubFuncTSQL = 0x43
	SubFuncComp = 0x44
	SubFuncMon  = 0x45
	SubFuncVOX  = 0x46
	SubFuncBKIN = 0x47
	SubFuncMN   = 0x48
	SubFuncRF   = 0x49
	SubFuncAFC  = 0x4a
)

// AGC presets for SubFuncAGC.
const (
	AGCFast      = 0x00
	AGCMid       = 0x01
	AGCSlow      = 0x02
	AGCSuperFast = 0x03
)

// Subcommands of CmdCtlMem.
const (
	SubMemVOXGain  = 0x02
	SubMemVOXDelay = 0x03
	SubMemAntiVOX  = 0x04
)

// Power subcommands of CmdSetPwr.
const (
	SubPwrOff   = 0x00
	SubPwrOn    = 0x01
	SubPwrStdby = 0x02
)

// Remaining subcommands.
const (
	SubRdTrxID = 0x00
	SubPTT     = 0x00
)

// Operating mode codes.
const (
	WireLSB   = 0x00
	WireUSB   = 0x01
	WireAM    = 0x02
	WireCW    = 0x03
	WireRTTY  = 0x04
	WireFM    = 0x05
	WireWFM   = 0x06
	WireCWR   = 0x07
	WireRTTYR = 0x08
	WirePSK   = 0x12
	WirePSKR  = 0x13
	WireDSTAR = 0x17
	// WireBlank is reported for an empty memory channel.
	WireBlank = 0xff
)

// Filter codes following a mode byte.
const (
	FilterWide   = 0x01
	FilterNormal = 0x02
	FilterNarrow = 0x03
)
