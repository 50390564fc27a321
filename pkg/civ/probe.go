package civ

import (
	"errors"
	"fmt"
	"time"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/dougsko/rigd/pkg/verbose"
)

// Probe address range.
const (
	ProbeFirstAddr = 0x01
	ProbeLastAddr  = 0x7f
)

// ProbeRates are the serial rates tried by ProbeSerial, fastest first.
var ProbeRates = []int{19200, 9600, 300}

// ProbeResult is one radio found on the bus.
type ProbeResult struct {
	Addr  byte
	ID    byte
	Model rig.Model // ModelNone when the id has no catalogue entry
	Name  string
	Rate  int
}

// identify maps a transceiver id to a catalogue model or a known name.
func identify(id byte) ProbeResult {
	res := ProbeResult{ID: id}
	file, err := loadCatalogue()
	if err != nil {
		return res
	}
	for _, m := range file.Models {
		if byte(m.Addr) == id {
			res.Model = rig.Model(m.ID)
			res.Name = m.Name
			return res
		}
	}
	res.Name = file.Addresses[int(id)]
	return res
}

// Probe asks every bus address for its transceiver id. Addresses that stay
// silent are skipped; a NAK still reveals a radio, identified by its
// source address.
func Probe(t transport.Transport, timeout time.Duration) ([]ProbeResult, error) {
	log := logging.GetGlobalLogger()
	eng := NewEngine(t, WithTimeout(timeout), WithRetry(1), WithLogger(log), WithTracer(verbose.FrameTracer{}))

	var results []ProbeResult
	for addr := ProbeFirstAddr; addr <= ProbeLastAddr; addr++ {
		reply, err := eng.Transact(byte(addr), CmdRdTrxID, SubRdTrxID, nil)
		var id byte
		switch {
		case err == nil:
			if reply.Cmd != CmdRdTrxID || len(reply.Data) < 2 {
				log.Debug("civ", "unexpected probe reply", map[string]interface{}{"addr": fmt.Sprintf("0x%02x", addr)})
				continue
			}
			id = reply.Data[1]
		case errors.Is(err, rig.ErrRejected) && reply != nil:
			id = reply.Src
		case errors.Is(err, transport.ErrTimeout), errors.Is(err, rig.ErrMalformed):
			continue
		default:
			return results, err
		}

		res := identify(id)
		res.Addr = byte(addr)
		if res.Model == rig.ModelNone {
			log.Warn("civ", "probe found an unknown transceiver", map[string]interface{}{
				"addr": fmt.Sprintf("0x%02x", addr),
				"id":   fmt.Sprintf("0x%02x", id),
				"name": res.Name,
			})
		} else {
			log.Info("civ", "probe found "+res.Name, map[string]interface{}{"addr": fmt.Sprintf("0x%02x", addr)})
		}
		results = append(results, res)
	}
	return results, nil
}

// ProbeTimeout is the per-address timeout used at rate: two frame times
// plus margin.
func ProbeTimeout(rate int) time.Duration {
	return time.Duration(2*1000/rate+40) * time.Millisecond
}

// ProbeSerial probes device at each of ProbeRates and stops at the first
// rate that finds a radio.
func ProbeSerial(device string) ([]ProbeResult, error) {
	for _, rate := range ProbeRates {
		port, err := transport.OpenSerial(transport.SerialConfig{
			Device:   device,
			BaudRate: rate,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
		})
		if err != nil {
			return nil, err
		}
		results, err := Probe(port, ProbeTimeout(rate))
		port.Close()
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			for i := range results {
				results[i].Rate = rate
			}
			return results, nil
		}
	}
	return nil, nil
}
