package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dougsko/rigd/pkg/protocol"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/storage"
)

// ModelInfo describes one registered model
type ModelInfo struct {
	Model   int    `json:"model"`
	Mfg     string `json:"mfg"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Family  string `json:"family"`
}

// Execute runs one protocol command against the radio
func (e *Engine) Execute(cmd *protocol.Command) *protocol.Response {
	switch cmd.Type {
	case protocol.CmdStatus:
		return protocol.NewSuccessResponse(map[string]interface{}{"status": e.Status()})
	case protocol.CmdPing:
		return protocol.NewSuccessResponse(map[string]interface{}{"pong": time.Now().Unix()})
	case protocol.CmdQuit:
		return protocol.NewSuccessResponse(map[string]interface{}{"message": "goodbye"})
	case protocol.CmdModels:
		return e.handleModels(cmd)
	case protocol.CmdEvents:
		return e.handleEvents(cmd)
	}

	if e.handle == nil {
		return protocol.NewErrorResponse("radio not initialized")
	}

	var data map[string]interface{}
	var err error
	switch cmd.Type {
	case protocol.CmdFreq:
		data, err = e.handleFreq(cmd)
	case protocol.CmdMode:
		data, err = e.handleMode(cmd)
	case protocol.CmdVFO:
		data, err = e.handleVFO(cmd)
	case protocol.CmdPTT:
		data, err = e.handlePTT(cmd)
	case protocol.CmdLevel:
		data, err = e.handleLevel(cmd)
	case protocol.CmdFunc:
		data, err = e.handleFunc(cmd)
	case protocol.CmdSplit:
		data, err = e.handleSplit(cmd)
	case protocol.CmdSplitFreq:
		data, err = e.handleSplitFreq(cmd)
	case protocol.CmdTS:
		data, err = e.handleTS(cmd)
	case protocol.CmdRIT:
		data, err = e.handleRIT(cmd)
	case protocol.CmdPower:
		data, err = e.handlePower(cmd)
	case protocol.CmdConf:
		data, err = e.handleConf(cmd)
	case protocol.CmdInfo:
		var info string
		info, err = e.handle.GetInfo()
		data = map[string]interface{}{"info": info}
	default:
		return protocol.NewErrorResponse(fmt.Sprintf("unknown command: %s", cmd.Type))
	}

	if err != nil {
		e.radioLog.Debug("engine", "command failed", map[string]interface{}{
			"command": cmd.Type,
			"error":   err.Error(),
		})
		return protocol.NewErrorResponseFrom(err)
	}
	return protocol.NewSuccessResponse(data)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "true", "yes":
		return true, nil
	case "0", "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected 0 or 1, got %q", rig.ErrInvalidArgument, s)
}

func parseInt(name, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", rig.ErrInvalidArgument, name, s)
	}
	return v, nil
}

func modeName(m rig.Mode) string {
	if m == rig.ModeNone {
		return ""
	}
	return m.String()
}

func (e *Engine) handleFreq(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("frequency")
	if !set {
		f, err := e.handle.GetFreq(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		e.noteFreq(int64(f), storage.SourcePoll)
		return map[string]interface{}{"frequency": int64(f)}, nil
	}

	hz, err := parseInt("frequency", arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetFreq(rig.VFOCurrent, rig.Freq(hz)); err != nil {
		return nil, err
	}
	e.noteFreq(hz, storage.SourceCommand)
	return map[string]interface{}{"frequency": hz}, nil
}

func (e *Engine) handleMode(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("mode")
	if !set {
		mode, width, err := e.handle.GetMode(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		e.noteMode(modeName(mode), width, storage.SourcePoll)
		return map[string]interface{}{"mode": modeName(mode), "width": width}, nil
	}

	mode, err := rig.ParseMode(arg)
	if err != nil {
		return nil, err
	}
	width := rig.PassbandNormal
	if w, ok := cmd.Arg("width"); ok {
		v, err := parseInt("width", w)
		if err != nil {
			return nil, err
		}
		width = int(v)
	}
	if err := e.handle.SetMode(rig.VFOCurrent, mode, width); err != nil {
		return nil, err
	}
	if width == rig.PassbandNormal {
		width = e.handle.Caps().PassbandNormal(mode)
	}
	e.noteMode(mode.String(), width, storage.SourceCommand)
	return map[string]interface{}{"mode": mode.String(), "width": width}, nil
}

func (e *Engine) handleVFO(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("vfo")
	if !set {
		vfo, err := e.handle.GetVFO()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"vfo": vfo.String()}, nil
	}

	vfo, err := rig.ParseVFO(arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetVFO(vfo); err != nil {
		return nil, err
	}
	e.record(storage.RigEvent{Kind: "vfo", Source: storage.SourceCommand, VFO: vfo.String()})
	return map[string]interface{}{"vfo": vfo.String()}, nil
}

func (e *Engine) handlePTT(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("state")
	if !set {
		on, err := e.handle.GetPTT(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"ptt": on}, nil
	}

	on, err := parseBool(arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetPTT(rig.VFOCurrent, on); err != nil {
		return nil, err
	}

	e.mutex.Lock()
	e.pttOn = on
	e.mutex.Unlock()
	detail := "off"
	if on {
		detail = "on"
	}
	e.record(storage.RigEvent{Kind: "ptt", Source: storage.SourceCommand, Detail: detail})
	return map[string]interface{}{"ptt": on}, nil
}

func (e *Engine) handleLevel(cmd *protocol.Command) (map[string]interface{}, error) {
	name, ok := cmd.Arg("name")
	if !ok {
		return nil, fmt.Errorf("%w: level name required", rig.ErrInvalidArgument)
	}
	level, err := rig.ParseLevel(name)
	if err != nil {
		return nil, err
	}

	arg, set := cmd.Arg("value")
	if !set {
		val, err := e.handle.GetLevel(rig.VFOCurrent, level)
		if err != nil {
			return nil, err
		}
		if level.IsFloat() {
			return map[string]interface{}{"level": level.String(), "value": val.F}, nil
		}
		return map[string]interface{}{"level": level.String(), "value": val.I}, nil
	}

	var val rig.Value
	if level.IsFloat() {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: level value %q", rig.ErrInvalidArgument, arg)
		}
		val.F = f
	} else {
		i, err := parseInt("level value", arg)
		if err != nil {
			return nil, err
		}
		val.I = int(i)
	}
	if err := e.handle.SetLevel(rig.VFOCurrent, level, val); err != nil {
		return nil, err
	}
	return map[string]interface{}{"level": level.String(), "value": arg}, nil
}

func (e *Engine) handleFunc(cmd *protocol.Command) (map[string]interface{}, error) {
	name, ok := cmd.Arg("name")
	if !ok {
		return nil, fmt.Errorf("%w: function name required", rig.ErrInvalidArgument)
	}
	fn, err := rig.ParseFunc(name)
	if err != nil {
		return nil, err
	}

	arg, set := cmd.Arg("state")
	if !set {
		on, err := e.handle.GetFunc(rig.VFOCurrent, fn)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"func": fn.String(), "state": on}, nil
	}

	on, err := parseBool(arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetFunc(rig.VFOCurrent, fn, on); err != nil {
		return nil, err
	}
	return map[string]interface{}{"func": fn.String(), "state": on}, nil
}

func (e *Engine) handleSplit(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("state")
	if !set {
		split, tx, err := e.handle.GetSplitVFO(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"split": split, "tx_vfo": tx.String()}, nil
	}

	split, err := parseBool(arg)
	if err != nil {
		return nil, err
	}
	tx := rig.VFOB
	if s, ok := cmd.Arg("tx_vfo"); ok {
		if tx, err = rig.ParseVFO(s); err != nil {
			return nil, err
		}
	}
	if err := e.handle.SetSplitVFO(rig.VFOCurrent, split, tx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"split": split, "tx_vfo": tx.String()}, nil
}

func (e *Engine) handleSplitFreq(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("frequency")
	if !set {
		f, err := e.handle.GetSplitFreq(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"tx_frequency": int64(f)}, nil
	}

	hz, err := parseInt("frequency", arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetSplitFreq(rig.VFOCurrent, rig.Freq(hz)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"tx_frequency": hz}, nil
}

func (e *Engine) handleTS(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("step")
	if !set {
		step, err := e.handle.GetTS(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"step": step}, nil
	}

	step, err := parseInt("step", arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetTS(rig.VFOCurrent, int(step)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"step": step}, nil
}

func (e *Engine) handleRIT(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("offset")
	if !set {
		offset, err := e.handle.GetRIT(rig.VFOCurrent)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"rit": offset}, nil
	}

	offset, err := parseInt("offset", arg)
	if err != nil {
		return nil, err
	}
	if err := e.handle.SetRIT(rig.VFOCurrent, int(offset)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"rit": offset}, nil
}

func (e *Engine) handlePower(cmd *protocol.Command) (map[string]interface{}, error) {
	arg, set := cmd.Arg("state")
	if !set {
		status, err := e.handle.GetPowerStat()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"power": status.String()}, nil
	}

	var status rig.PowerStatus
	switch strings.ToLower(arg) {
	case "on", "1":
		status = rig.PowerOn
	case "off", "0":
		status = rig.PowerOff
	case "standby":
		status = rig.PowerStandby
	default:
		return nil, fmt.Errorf("%w: power state %q", rig.ErrInvalidArgument, arg)
	}
	if err := e.handle.SetPowerStat(status); err != nil {
		return nil, err
	}
	e.record(storage.RigEvent{Kind: "power", Source: storage.SourceCommand, Detail: status.String()})
	return map[string]interface{}{"power": status.String()}, nil
}

func (e *Engine) handleConf(cmd *protocol.Command) (map[string]interface{}, error) {
	token, ok := cmd.Arg("token")
	if !ok {
		return nil, fmt.Errorf("%w: conf token required", rig.ErrInvalidArgument)
	}
	if val, set := cmd.Arg("value"); set {
		if err := e.handle.SetConf(token, val); err != nil {
			return nil, err
		}
	}
	val, err := e.handle.GetConf(token)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"token": token, "value": val}, nil
}

func (e *Engine) handleEvents(cmd *protocol.Command) *protocol.Response {
	if e.store == nil {
		return protocol.NewErrorResponse("event journal disabled")
	}

	var events []storage.RigEvent
	var err error
	if since, ok := cmd.Arg("since"); ok {
		id, perr := parseInt("since", since)
		if perr != nil {
			return protocol.NewErrorResponseFrom(perr)
		}
		events, err = e.store.EventsSince(id, 0)
	} else {
		limit := int64(50)
		if s, ok := cmd.Arg("limit"); ok {
			if limit, err = parseInt("limit", s); err != nil {
				return protocol.NewErrorResponseFrom(err)
			}
		}
		events, err = e.store.RecentEvents(int(limit))
	}
	if err != nil {
		return protocol.NewErrorResponseFrom(err)
	}
	if events == nil {
		events = []storage.RigEvent{}
	}

	return protocol.NewSuccessResponse(map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// Models lists registered models, optionally of one family
func (e *Engine) Models(familyName string) ([]ModelInfo, error) {
	if err := e.registry.LoadAll(); err != nil {
		return nil, err
	}

	var models []ModelInfo
	e.registry.ForEach(func(caps *rig.Caps) bool {
		fam := e.registry.FamilyName(caps.Model.Family())
		if familyName != "" && !strings.EqualFold(fam, familyName) {
			return true
		}
		models = append(models, ModelInfo{
			Model:   int(caps.Model),
			Mfg:     caps.MfgName,
			Name:    caps.ModelName,
			Version: caps.Version,
			Status:  caps.Status.String(),
			Family:  fam,
		})
		return true
	})
	return models, nil
}

func (e *Engine) handleModels(cmd *protocol.Command) *protocol.Response {
	family, _ := cmd.Arg("family")
	models, err := e.Models(family)
	if err != nil {
		return protocol.NewErrorResponseFrom(err)
	}
	return protocol.NewSuccessResponse(map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}
