package civ

import (
	"fmt"
	"math"

	"github.com/dougsko/rigd/pkg/bcd"
	"github.com/dougsko/rigd/pkg/rig"
)

type levelCmd struct {
	cmd byte
	sub int
}

var levelCmds = map[rig.Level]levelCmd{
	rig.LevelAF:       {CmdCtlLvl, SubLvlAF},
	rig.LevelRF:       {CmdCtlLvl, SubLvlRF},
	rig.LevelSQL:      {CmdCtlLvl, SubLvlSQL},
	rig.LevelIF:       {CmdCtlLvl, SubLvlIF},
	rig.LevelAPF:      {CmdCtlLvl, SubLvlAPF},
	rig.LevelNR:       {CmdCtlLvl, SubLvlNR},
	rig.LevelPBTIn:    {CmdCtlLvl, SubLvlPBTIn},
	rig.LevelPBTOut:   {CmdCtlLvl, SubLvlPBTOut},
	rig.LevelCWPitch:  {CmdCtlLvl, SubLvlCWPitch},
	rig.LevelRFPower:  {CmdCtlLvl, SubLvlRFPower},
	rig.LevelMicGain:  {CmdCtlLvl, SubLvlMicGain},
	rig.LevelKeySpd:   {CmdCtlLvl, SubLvlKeySpd},
	rig.LevelNotchF:   {CmdCtlLvl, SubLvlNotchF},
	rig.LevelComp:     {CmdCtlLvl, SubLvlComp},
	rig.LevelBKINDL:   {CmdCtlLvl, SubLvlBKINDL},
	rig.LevelBalance:  {CmdCtlLvl, SubLvlBalance},
	rig.LevelVOXGain:  {CmdCtlMem, SubMemVOXGain},
	rig.LevelAntiVOX:  {CmdCtlMem, SubMemAntiVOX},
	rig.LevelPreamp:   {CmdCtlFunc, SubFuncPamp},
	rig.LevelAGC:      {CmdCtlFunc, SubFuncAGC},
	rig.LevelAtt:      {CmdCtlAtt, NoSub},
	rig.LevelRawStr:   {CmdRdSqsm, SubMtrSML},
	rig.LevelStrength: {CmdRdSqsm, SubMtrSML},
	rig.LevelSQLStat:  {CmdRdSqsm, SubMtrSQL},
	rig.LevelSWR:      {CmdRdSqsm, SubMtrSWR},
	rig.LevelALC:      {CmdRdSqsm, SubMtrALC},
}

var agcToWire = map[int]byte{
	rig.AGCFast:      AGCFast,
	rig.AGCMedium:    AGCMid,
	rig.AGCSlow:      AGCSlow,
	rig.AGCSuperFast: AGCSuperFast,
}

// levelRequest is a level translated to a CI-V command.
type levelRequest struct {
	cmd     byte
	sub     int
	payload []byte
}

func indexOf(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// encodeLevel translates a level write.
func encodeLevel(caps *rig.Caps, level rig.Level, val rig.Value) (levelRequest, error) {
	lc, ok := levelCmds[level]
	if !ok || level&rig.LevelReadOnly != 0 {
		return levelRequest{}, fmt.Errorf("%w: level %s cannot be set over CI-V", rig.ErrUnsupported, level)
	}
	req := levelRequest{cmd: lc.cmd, sub: lc.sub}

	var err error
	switch level {
	case rig.LevelPreamp:
		code := 0
		if val.I != 0 {
			i := indexOf(caps.Preamp, val.I)
			if i < 0 {
				return req, fmt.Errorf("%w: no %d dB preamp", rig.ErrInvalidArgument, val.I)
			}
			code = i + 1
		}
		req.payload, err = bcd.EncodeBE(uint64(code), 2)
	case rig.LevelAtt:
		if val.I != 0 && indexOf(caps.Attenuator, val.I) < 0 {
			return req, fmt.Errorf("%w: no %d dB attenuator", rig.ErrInvalidArgument, val.I)
		}
		var sub []byte
		if sub, err = bcd.EncodeBE(uint64(val.I), 2); err == nil {
			req.sub = int(sub[0])
		}
	case rig.LevelAGC:
		code, ok := agcToWire[val.I]
		if !ok {
			return req, fmt.Errorf("%w: AGC preset %d", rig.ErrInvalidArgument, val.I)
		}
		req.payload, err = bcd.EncodeBE(uint64(code), 2)
	default:
		raw := val.I
		if level.IsFloat() {
			raw = int(math.Round(val.F * 255))
		}
		if raw < 0 {
			return req, fmt.Errorf("%w: negative level value", rig.ErrInvalidArgument)
		}
		req.payload, err = bcd.EncodeBE(uint64(raw), 4)
	}
	if err != nil {
		return req, fmt.Errorf("%w: %v", rig.ErrInvalidArgument, err)
	}
	return req, nil
}

// decodeLevel converts the value bytes that follow the subcommand.
func decodeLevel(caps *rig.Caps, level rig.Level, data []byte) (rig.Value, error) {
	if len(data) == 0 {
		return rig.Value{}, fmt.Errorf("%w: empty %s reply", rig.ErrMalformed, level)
	}
	raw64, err := bcd.DecodeBE(data, len(data)*2)
	if err != nil {
		return rig.Value{}, fmt.Errorf("%w: %v", rig.ErrMalformed, err)
	}
	raw := int(raw64)

	switch {
	case level == rig.LevelPreamp:
		if raw == 0 {
			return rig.Value{}, nil
		}
		if raw > len(caps.Preamp) {
			return rig.Value{}, fmt.Errorf("%w: preamp code %d", rig.ErrMalformed, raw)
		}
		return rig.Value{I: caps.Preamp[raw-1]}, nil
	case level == rig.LevelAGC:
		for preset, code := range agcToWire {
			if int(code) == raw {
				return rig.Value{I: preset}, nil
			}
		}
		return rig.Value{}, fmt.Errorf("%w: AGC code %d", rig.ErrMalformed, raw)
	case level == rig.LevelStrength:
		return rig.Value{I: caps.StrCal.Interpolate(raw)}, nil
	case level.IsFloat():
		return rig.Value{F: float64(raw) / 255}, nil
	}
	return rig.Value{I: raw}, nil
}
