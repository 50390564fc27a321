package rig

import "math"

// CalPoint maps one raw meter reading to a calibrated value.
type CalPoint struct {
	Raw int `yaml:"raw"`
	Val int `yaml:"val"`
}

// CalTable is a calibration curve ordered by increasing Raw.
type CalTable []CalPoint

// Interpolate converts a raw reading with linear interpolation between
// table points. Readings outside the table clamp to the end points; an
// empty table returns raw unchanged.
func (t CalTable) Interpolate(raw int) int {
	if len(t) == 0 {
		return raw
	}

	i := 0
	for ; i < len(t); i++ {
		if raw < t[i].Raw {
			break
		}
	}
	if i == 0 {
		return t[0].Val
	}
	if i >= len(t) {
		return t[len(t)-1].Val
	}

	lo, hi := t[i-1], t[i]
	if hi.Raw == lo.Raw {
		return hi.Val
	}
	delta := float64((hi.Raw-raw)*(hi.Val-lo.Val)) / float64(hi.Raw-lo.Raw)
	return hi.Val - int(math.Round(delta))
}
