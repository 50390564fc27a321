// Package ptt keys a transmitter through a side channel: a serial control
// line or a GPIO pin.
package ptt

import (
	"fmt"
	"strings"

	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
)

// Methods accepted by radio.ptt_method.
const (
	MethodCAT  = "cat"
	MethodNone = "none"
	MethodDTR  = "dtr"
	MethodRTS  = "rts"
	MethodGPIO = "gpio"
)

// Disabled refuses to key the transmitter.
type Disabled struct{}

func (Disabled) SetPTT(bool) error {
	return fmt.Errorf("%w: PTT is disabled", rig.ErrUnsupported)
}

func (Disabled) PTT() (bool, error) { return false, nil }

func (Disabled) Close() error { return nil }

// FromConfig builds the PTT line selected by the radio section. It returns
// nil for the cat method, meaning PTT goes through the radio protocol. cat
// is the CAT transport, reused when the control line is on the same port.
func FromConfig(cfg *config.Config, cat transport.Transport) (rig.PTTLine, error) {
	r := cfg.Radio
	switch strings.ToLower(r.PTTMethod) {
	case "", MethodCAT:
		return nil, nil
	case MethodNone:
		return Disabled{}, nil
	case MethodDTR, MethodRTS:
		signal := SignalDTR
		if strings.ToLower(r.PTTMethod) == MethodRTS {
			signal = SignalRTS
		}
		if r.PTTPort == "" || r.PTTPort == r.Device {
			mc, ok := cat.(transport.ModemControl)
			if !ok {
				return nil, fmt.Errorf("CAT port %s has no control lines", r.Device)
			}
			return NewSerialLine(mc, signal, r.PTTActiveLow, nil)
		}
		port, err := transport.OpenSerial(transport.SerialConfig{
			Device:   r.PTTPort,
			BaudRate: 9600,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open PTT port: %w", err)
		}
		line, err := NewSerialLine(port, signal, r.PTTActiveLow, port)
		if err != nil {
			port.Close()
			return nil, err
		}
		return line, nil
	case MethodGPIO:
		return NewGPIO(r.PTTGPIOPin, r.PTTActiveLow)
	}
	return nil, fmt.Errorf("%w: ptt_method %q", rig.ErrInvalidArgument, r.PTTMethod)
}
