// Package protocol defines the line protocol spoken on the daemon's control
// socket: one "TYPE[:arg[:arg]]" command per line, one JSON response per line.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
)

// Command represents a command sent to the daemon engine
type Command struct {
	Type string                 `json:"type"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Response represents a response from the daemon engine
type Response struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	// Error class from the rig error taxonomy, e.g. "timeout"
	Kind string `json:"kind,omitempty"`
}

// Status represents the current daemon status
type Status struct {
	Model     int       `json:"model"`
	ModelName string    `json:"model_name"`
	Device    string    `json:"device"`
	Session   string    `json:"session"`
	Connected bool      `json:"connected"`
	Frequency int64     `json:"frequency"`
	Mode      string    `json:"mode"`
	Width     int       `json:"width"`
	VFO       string    `json:"vfo"`
	PTT       bool      `json:"ptt"`
	Uptime    string    `json:"uptime"`
	StartTime time.Time `json:"start_time"`
	Version   string    `json:"version"`
}

// Protocol commands
const (
	CmdStatus    = "STATUS"
	CmdPing      = "PING"
	CmdQuit      = "QUIT"
	CmdFreq      = "FREQ"
	CmdMode      = "MODE"
	CmdVFO       = "VFO"
	CmdPTT       = "PTT"
	CmdLevel     = "LEVEL"
	CmdFunc      = "FUNC"
	CmdSplit     = "SPLIT"
	CmdSplitFreq = "SPLITFREQ"
	CmdTS        = "TS"
	CmdRIT       = "RIT"
	CmdPower     = "POWER"
	CmdConf      = "CONF"
	CmdInfo      = "INFO"
	CmdEvents    = "EVENTS"
	CmdModels    = "MODELS"
)

// ErrEmptyCommand is returned for a blank line.
var ErrEmptyCommand = errors.New("empty command")

// argNames lists the positional argument names of each command.
var argNames = map[string][]string{
	CmdFreq:      {"frequency"},
	CmdMode:      {"mode", "width"},
	CmdVFO:       {"vfo"},
	CmdPTT:       {"state"},
	CmdLevel:     {"name", "value"},
	CmdFunc:      {"name", "state"},
	CmdSplit:     {"state", "tx_vfo"},
	CmdSplitFreq: {"frequency"},
	CmdTS:        {"step"},
	CmdRIT:       {"offset"},
	CmdPower:     {"state"},
	CmdConf:      {"token", "value"},
	CmdEvents:    {"limit"},
	CmdModels:    {"family"},
}

// ParseCommand parses a text command into a Command struct
func ParseCommand(text string) (*Command, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyCommand
	}

	parts := strings.SplitN(text, ":", 2)
	cmd := &Command{
		Type: strings.ToUpper(strings.TrimSpace(parts[0])),
		Args: make(map[string]interface{}),
	}
	names := argNames[cmd.Type]
	if len(parts) == 1 || len(names) == 0 {
		return cmd, nil
	}

	// EVENTS:since:42 asks for events after an id
	if cmd.Type == CmdEvents && strings.HasPrefix(parts[1], "since:") {
		cmd.Args["since"] = strings.TrimPrefix(parts[1], "since:")
		return cmd, nil
	}

	// the last argument keeps any remaining colons
	args := strings.SplitN(parts[1], ":", len(names))
	for i, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		cmd.Args[names[i]] = arg
	}

	return cmd, nil
}

// FormatCommand builds a command line from a type and positional arguments
func FormatCommand(cmdType string, args ...string) string {
	for len(args) > 0 && args[len(args)-1] == "" {
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return strings.ToUpper(cmdType)
	}
	return strings.ToUpper(cmdType) + ":" + strings.Join(args, ":")
}

// Arg returns a string argument
func (c *Command) Arg(name string) (string, bool) {
	v, ok := c.Args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// String converts a Response to a JSON line
func (r *Response) String() string {
	data, _ := json.Marshal(r)
	return string(data)
}

// Err turns a failed response back into an error carrying its kind
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	if sentinel := rig.ErrorOfKind(r.Kind); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, r.Error)
	}
	return errors.New(r.Error)
}

// ParseResponse decodes one response line
func ParseResponse(line string) (*Response, error) {
	var resp Response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// NewSuccessResponse creates a successful response
func NewSuccessResponse(data map[string]interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err string) *Response {
	return &Response{
		Success: false,
		Error:   err,
	}
}

// NewErrorResponseFrom creates an error response classified by rig.Kind
func NewErrorResponseFrom(err error) *Response {
	return &Response{
		Success: false,
		Error:   err.Error(),
		Kind:    rig.Kind(err),
	}
}
