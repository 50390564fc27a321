// Package client talks to a running rigd over its Unix control socket.
package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dougsko/rigd/pkg/protocol"
	"github.com/dougsko/rigd/pkg/storage"
)

// SocketClient represents a client connection to the daemon engine
type SocketClient struct {
	socketPath string
	timeout    time.Duration
}

// NewSocketClient creates a new socket client
func NewSocketClient(socketPath string) *SocketClient {
	return &SocketClient{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SetTimeout changes the per-command deadline
func (c *SocketClient) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SendCommand sends a raw command line and returns the response
func (c *SocketClient) SendCommand(cmd string) (*protocol.Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return nil, fmt.Errorf("send error: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return nil, fmt.Errorf("no response received")
	}

	return protocol.ParseResponse(scanner.Text())
}

// call sends a command built from args and returns the response data, or
// the daemon's error with its kind preserved for errors.Is.
func (c *SocketClient) call(cmdType string, args ...string) (map[string]interface{}, error) {
	resp, err := c.SendCommand(protocol.FormatCommand(cmdType, args...))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", cmdType, err)
	}
	return resp.Data, nil
}

// decode converts one field of the response data into out
func decode(data map[string]interface{}, key string, out interface{}) error {
	raw, ok := data[key]
	if !ok {
		return fmt.Errorf("%s not found in response", key)
	}
	b, _ := json.Marshal(raw)
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return nil
}

// GetStatus gets the current daemon status
func (c *SocketClient) GetStatus() (*protocol.Status, error) {
	data, err := c.call(protocol.CmdStatus)
	if err != nil {
		return nil, err
	}
	var status protocol.Status
	if err := decode(data, "status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetFrequency reads the current frequency in Hz
func (c *SocketClient) GetFrequency() (int64, error) {
	data, err := c.call(protocol.CmdFreq)
	if err != nil {
		return 0, err
	}
	var hz int64
	err = decode(data, "frequency", &hz)
	return hz, err
}

// SetFrequency tunes the radio
func (c *SocketClient) SetFrequency(hz int64) error {
	_, err := c.call(protocol.CmdFreq, strconv.FormatInt(hz, 10))
	return err
}

// GetMode reads the mode and passband width
func (c *SocketClient) GetMode() (string, int, error) {
	data, err := c.call(protocol.CmdMode)
	if err != nil {
		return "", 0, err
	}
	var mode string
	var width int
	if err := decode(data, "mode", &mode); err != nil {
		return "", 0, err
	}
	err = decode(data, "width", &width)
	return mode, width, err
}

// SetMode sets the mode; width 0 selects the normal passband
func (c *SocketClient) SetMode(mode string, width int) error {
	w := ""
	if width != 0 {
		w = strconv.Itoa(width)
	}
	_, err := c.call(protocol.CmdMode, mode, w)
	return err
}

// GetVFO reads the selected VFO
func (c *SocketClient) GetVFO() (string, error) {
	data, err := c.call(protocol.CmdVFO)
	if err != nil {
		return "", err
	}
	var vfo string
	err = decode(data, "vfo", &vfo)
	return vfo, err
}

// SetVFO selects a VFO
func (c *SocketClient) SetVFO(vfo string) error {
	_, err := c.call(protocol.CmdVFO, vfo)
	return err
}

// GetPTT reads the transmit state
func (c *SocketClient) GetPTT() (bool, error) {
	data, err := c.call(protocol.CmdPTT)
	if err != nil {
		return false, err
	}
	var on bool
	err = decode(data, "ptt", &on)
	return on, err
}

// SetPTT keys or unkeys the transmitter
func (c *SocketClient) SetPTT(on bool) error {
	_, err := c.call(protocol.CmdPTT, boolArg(on))
	return err
}

// GetLevel reads a level; float levels come back as 0..1
func (c *SocketClient) GetLevel(name string) (float64, error) {
	data, err := c.call(protocol.CmdLevel, name)
	if err != nil {
		return 0, err
	}
	var v float64
	err = decode(data, "value", &v)
	return v, err
}

// SetLevel sets a level from its text value
func (c *SocketClient) SetLevel(name, value string) error {
	_, err := c.call(protocol.CmdLevel, name, value)
	return err
}

// GetFunc reads an on/off function
func (c *SocketClient) GetFunc(name string) (bool, error) {
	data, err := c.call(protocol.CmdFunc, name)
	if err != nil {
		return false, err
	}
	var on bool
	err = decode(data, "state", &on)
	return on, err
}

// SetFunc switches a function on or off
func (c *SocketClient) SetFunc(name string, on bool) error {
	_, err := c.call(protocol.CmdFunc, name, boolArg(on))
	return err
}

// GetSplit reads split state and transmit VFO
func (c *SocketClient) GetSplit() (bool, string, error) {
	data, err := c.call(protocol.CmdSplit)
	if err != nil {
		return false, "", err
	}
	var on bool
	var tx string
	if err := decode(data, "split", &on); err != nil {
		return false, "", err
	}
	err = decode(data, "tx_vfo", &tx)
	return on, tx, err
}

// SetSplit sets split operation; an empty txVFO means VFOB
func (c *SocketClient) SetSplit(on bool, txVFO string) error {
	_, err := c.call(protocol.CmdSplit, boolArg(on), txVFO)
	return err
}

// SetSplitFrequency sets the transmit frequency used in split
func (c *SocketClient) SetSplitFrequency(hz int64) error {
	_, err := c.call(protocol.CmdSplitFreq, strconv.FormatInt(hz, 10))
	return err
}

// GetPower reads the power state
func (c *SocketClient) GetPower() (string, error) {
	data, err := c.call(protocol.CmdPower)
	if err != nil {
		return "", err
	}
	var state string
	err = decode(data, "power", &state)
	return state, err
}

// SetPower switches the radio on, off or to standby
func (c *SocketClient) SetPower(state string) error {
	_, err := c.call(protocol.CmdPower, state)
	return err
}

// GetInfo returns the radio's identification text
func (c *SocketClient) GetInfo() (string, error) {
	data, err := c.call(protocol.CmdInfo)
	if err != nil {
		return "", err
	}
	var info string
	err = decode(data, "info", &info)
	return info, err
}

// GetEvents returns the newest journal entries
func (c *SocketClient) GetEvents(limit int) ([]storage.RigEvent, error) {
	args := []string{}
	if limit > 0 {
		args = append(args, strconv.Itoa(limit))
	}
	return c.events(args...)
}

// EventsSince returns journal entries stored after id, oldest first
func (c *SocketClient) EventsSince(id int64) ([]storage.RigEvent, error) {
	return c.events("since", strconv.FormatInt(id, 10))
}

func (c *SocketClient) events(args ...string) ([]storage.RigEvent, error) {
	data, err := c.call(protocol.CmdEvents, args...)
	if err != nil {
		return nil, err
	}
	var events []storage.RigEvent
	err = decode(data, "events", &events)
	return events, err
}

// Ping tests the connection
func (c *SocketClient) Ping() error {
	_, err := c.call(protocol.CmdPing)
	return err
}

// IsConnected tests if the daemon is reachable
func (c *SocketClient) IsConnected() bool {
	return c.Ping() == nil
}

func boolArg(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
