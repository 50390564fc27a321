package civ

import (
	"fmt"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
)

// WireUnsupported is returned by ModeToWire for modes CI-V cannot carry.
const WireUnsupported = -1

var modeToWire = map[rig.Mode]byte{
	rig.ModeLSB:   WireLSB,
	rig.ModeUSB:   WireUSB,
	rig.ModeAM:    WireAM,
	rig.ModeCW:    WireCW,
	rig.ModeRTTY:  WireRTTY,
	rig.ModeFM:    WireFM,
	rig.ModeWFM:   WireWFM,
	rig.ModeCWR:   WireCWR,
	rig.ModeRTTYR: WireRTTYR,
	rig.ModePSK:   WirePSK,
	rig.ModePSKR:  WirePSKR,
	rig.ModeDSTAR: WireDSTAR,
}

var wireToMode = func() map[byte]rig.Mode {
	m := make(map[byte]rig.Mode, len(modeToWire))
	for mode, code := range modeToWire {
		m[code] = mode
	}
	return m
}()

// WireModes is the set of modes with a CI-V code.
var WireModes = func() rig.Mode {
	var all rig.Mode
	for mode := range modeToWire {
		all |= mode
	}
	return all
}()

// ModeToWire returns the CI-V code for mode, or WireUnsupported.
func ModeToWire(mode rig.Mode) int {
	code, ok := modeToWire[mode]
	if !ok {
		return WireUnsupported
	}
	return int(code)
}

// ModeFromWire returns the mode for a CI-V code. ok is false for unknown
// codes; the blank memory code maps to ModeNone with ok true.
func ModeFromWire(code byte) (mode rig.Mode, ok bool) {
	if code == WireBlank {
		return rig.ModeNone, true
	}
	mode, ok = wireToMode[code]
	return mode, ok
}

func modeFromWire(code byte, log *logging.Logger) rig.Mode {
	mode, ok := ModeFromWire(code)
	if !ok {
		log.Warn("civ", "unsupported mode code", map[string]interface{}{"code": fmt.Sprintf("%#02x", code)})
	}
	return mode
}

// filterToWire returns the filter byte for width, or -1 when no filter
// byte should be sent.
func filterToWire(caps *rig.Caps, mode rig.Mode, width int) int {
	if width == rig.PassbandNormal || width == rig.PassbandNoChange {
		return -1
	}
	normal := caps.PassbandNormal(mode)
	switch {
	case normal == 0 || width == normal:
		return FilterNormal
	case width < normal:
		return FilterNarrow
	default:
		return FilterWide
	}
}

// filterFromWire converts a filter byte (or -1 when absent) to a width.
func filterFromWire(caps *rig.Caps, mode rig.Mode, code int, log *logging.Logger) int {
	normal := caps.PassbandNormal(mode)
	switch code {
	case -1, FilterNormal:
		return normal
	case FilterWide:
		if w := caps.PassbandWide(mode); w != 0 {
			return w
		}
		return normal
	case FilterNarrow:
		if w := caps.PassbandNarrow(mode); w != 0 {
			return w
		}
		return normal
	}
	log.Warn("civ", "unsupported filter code", map[string]interface{}{"code": fmt.Sprintf("%#02x", code)})
	return normal
}

// encodeMode builds the SetMode payload.
func encodeMode(caps *rig.Caps, mode rig.Mode, width int) ([]byte, error) {
	code := ModeToWire(mode)
	if code == WireUnsupported {
		return nil, fmt.Errorf("%w: mode %s has no CI-V code", rig.ErrUnsupported, mode)
	}
	payload := []byte{byte(code)}
	if f := filterToWire(caps, mode, width); f >= 0 {
		payload = append(payload, byte(f))
	}
	return payload, nil
}

// decodeMode reads "mode [filter]" from reply data.
func decodeMode(caps *rig.Caps, data []byte, log *logging.Logger) (rig.Mode, int, error) {
	if len(data) < 1 {
		return rig.ModeNone, 0, fmt.Errorf("%w: empty mode reply", rig.ErrMalformed)
	}
	mode := modeFromWire(data[0], log)
	filter := -1
	if len(data) > 1 {
		filter = int(data[1])
	}
	if mode == rig.ModeNone {
		return mode, rig.PassbandNormal, nil
	}
	return mode, filterFromWire(caps, mode, filter, log), nil
}
