package civ

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/dougsko/rigd/pkg/rig"
)

//go:embed models.yaml
var catalogue []byte

// TSCode maps a tuning step in Hz to the radio's step code.
type TSCode struct {
	Step int  `yaml:"step"`
	Code byte `yaml:"code"`
}

// ModelData is the Icom-private part of a model's caps.
type ModelData struct {
	Addr   byte
	Legacy bool // 4-byte frequencies
	TS     []TSCode
}

type freqRangeEntry struct {
	Start int64    `yaml:"start"`
	End   int64    `yaml:"end"`
	Modes []string `yaml:"modes"`
}

type filterEntry struct {
	Modes []string `yaml:"modes"`
	Width int      `yaml:"width"`
}

type modelEntry struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Addr   int    `yaml:"addr"`
	Legacy bool   `yaml:"legacy"`
	Status string `yaml:"status"`
	Serial struct {
		RateMin int `yaml:"rate_min"`
		RateMax int `yaml:"rate_max"`
	} `yaml:"serial"`
	TimeoutMs        int              `yaml:"timeout_ms"`
	Retry            int              `yaml:"retry"`
	WriteDelayMs     int              `yaml:"write_delay_ms"`
	PostWriteDelayMs int              `yaml:"post_write_delay_ms"`
	Ops              []string         `yaml:"ops"`
	Modes            []string         `yaml:"modes"`
	VFOs             []string         `yaml:"vfos"`
	VFOOps           []string         `yaml:"vfo_ops"`
	SetLevels        []string         `yaml:"set_levels"`
	GetLevels        []string         `yaml:"get_levels"`
	Funcs            []string         `yaml:"funcs"`
	RxRanges         []freqRangeEntry `yaml:"rx_ranges"`
	TxRanges         []freqRangeEntry `yaml:"tx_ranges"`
	Filters          []filterEntry    `yaml:"filters"`
	TuningSteps      []TSCode         `yaml:"tuning_steps"`
	StrCal           rig.CalTable     `yaml:"str_cal"`
	Preamp           []int            `yaml:"preamp"`
	Attenuator       []int            `yaml:"attenuator"`
}

type catalogueFile struct {
	Models    []modelEntry   `yaml:"models"`
	Addresses map[int]string `yaml:"addresses"`
}

var (
	catOnce sync.Once
	catFile catalogueFile
	catErr  error
)

func loadCatalogue() (*catalogueFile, error) {
	catOnce.Do(func() {
		if err := yaml.Unmarshal(catalogue, &catFile); err != nil {
			catErr = fmt.Errorf("failed to parse icom catalogue: %w", err)
		}
	})
	return &catFile, catErr
}

func init() {
	rig.RegisterFamily(rig.FamilyIcom, "icom", Load)
}

// Load registers every Icom model of the embedded catalogue with reg.
func Load(reg *rig.Registry) error {
	file, err := loadCatalogue()
	if err != nil {
		return err
	}
	for i := range file.Models {
		caps, err := file.Models[i].caps()
		if err != nil {
			return fmt.Errorf("icom model %d: %w", file.Models[i].ID, err)
		}
		if err := reg.Register(caps); err != nil {
			return err
		}
	}
	return nil
}

func parseStatus(s string) rig.Status {
	switch strings.ToLower(s) {
	case "stable":
		return rig.StatusStable
	case "beta":
		return rig.StatusBeta
	case "untested":
		return rig.StatusUntested
	}
	return rig.StatusAlpha
}

func parseModes(names []string) (rig.Mode, error) {
	if len(names) == 0 {
		return rig.ModeNone, nil
	}
	return rig.ParseMode(strings.Join(names, "|"))
}

func (m *modelEntry) caps() (*rig.Caps, error) {
	if m.Addr <= 0 || m.Addr > 0xff {
		return nil, fmt.Errorf("bad address %#x", m.Addr)
	}
	model := rig.MakeModel(rig.FamilyIcom, m.ID%100)
	if int(model) != m.ID {
		return nil, fmt.Errorf("id %d is outside the icom family", m.ID)
	}

	c := &rig.Caps{
		Model:          model,
		ModelName:      m.Name,
		MfgName:        "Icom",
		Version:        "0.3",
		Status:         parseStatus(m.Status),
		PortType:       rig.PortSerial,
		SerialRateMin:  m.Serial.RateMin,
		SerialRateMax:  m.Serial.RateMax,
		SerialDataBits: 8,
		SerialStopBits: 1,
		SerialParity:   "none",
		Timeout:        time.Duration(m.TimeoutMs) * time.Millisecond,
		Retry:          m.Retry,
		WriteDelay:     time.Duration(m.WriteDelayMs) * time.Millisecond,
		PostWriteDelay: time.Duration(m.PostWriteDelayMs) * time.Millisecond,
		StrCal:         m.StrCal,
		Preamp:         m.Preamp,
		Attenuator:     m.Attenuator,
		New:            NewBackend,
		Priv: &ModelData{
			Addr:   byte(m.Addr),
			Legacy: m.Legacy,
			TS:     m.TuningSteps,
		},
	}

	var err error
	if c.Ops, err = rig.ParseCaps(m.Ops); err != nil {
		return nil, err
	}
	if c.Modes, err = parseModes(m.Modes); err != nil {
		return nil, err
	}
	for _, name := range m.VFOs {
		v, err := rig.ParseVFO(name)
		if err != nil {
			return nil, err
		}
		c.VFOs |= v
	}
	if len(m.VFOOps) > 0 {
		if c.VFOOps, err = rig.ParseVFOOp(strings.Join(m.VFOOps, "|")); err != nil {
			return nil, err
		}
	}
	if len(m.SetLevels) > 0 {
		if c.SetLevels, err = rig.ParseLevel(strings.Join(m.SetLevels, "|")); err != nil {
			return nil, err
		}
	}
	if len(m.GetLevels) > 0 {
		if c.GetLevels, err = rig.ParseLevel(strings.Join(m.GetLevels, "|")); err != nil {
			return nil, err
		}
	}
	if len(m.Funcs) > 0 {
		if c.GetFuncs, err = rig.ParseFunc(strings.Join(m.Funcs, "|")); err != nil {
			return nil, err
		}
		c.SetFuncs = c.GetFuncs
	}
	if c.SetLevels&rig.LevelReadOnly != 0 {
		return nil, fmt.Errorf("read-only level in set_levels: %s", c.SetLevels&rig.LevelReadOnly)
	}
	if c.VFOs&^(rig.VFOA|rig.VFOB|rig.VFOMain|rig.VFOSub|rig.VFOMem) != 0 {
		return nil, fmt.Errorf("unsupported VFO in vfos: %s", c.VFOs)
	}

	if c.RxRanges, err = convertRanges(m.RxRanges, c.Modes); err != nil {
		return nil, err
	}
	if c.TxRanges, err = convertRanges(m.TxRanges, c.Modes); err != nil {
		return nil, err
	}
	for _, f := range m.Filters {
		modes, err := parseModes(f.Modes)
		if err != nil {
			return nil, err
		}
		c.Filters = append(c.Filters, rig.Filter{Modes: modes, Width: f.Width})
	}
	for _, ts := range m.TuningSteps {
		c.TuningSteps = append(c.TuningSteps, rig.TuningStep{Modes: c.Modes, Step: ts.Step})
	}
	return c, nil
}

func convertRanges(in []freqRangeEntry, all rig.Mode) ([]rig.FreqRange, error) {
	var out []rig.FreqRange
	for _, r := range in {
		modes := all
		if len(r.Modes) > 0 {
			var err error
			if modes, err = parseModes(r.Modes); err != nil {
				return nil, err
			}
		}
		if r.End < r.Start {
			return nil, fmt.Errorf("range %d-%d is inverted", r.Start, r.End)
		}
		out = append(out, rig.FreqRange{Start: rig.Freq(r.Start), End: rig.Freq(r.End), Modes: modes})
	}
	return out, nil
}

func modelData(c *rig.Caps) (*ModelData, error) {
	md, ok := c.Priv.(*ModelData)
	if !ok || md == nil {
		return nil, fmt.Errorf("%w: model %d has no CI-V data", rig.ErrInvalidArgument, c.Model)
	}
	return md, nil
}
