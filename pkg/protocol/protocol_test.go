package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
)

func TestParseCommand(t *testing.T) {
	t.Run("STATUS Command", func(t *testing.T) {
		cmd, err := ParseCommand("STATUS")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if cmd.Type != "STATUS" {
			t.Errorf("Expected type STATUS, got %s", cmd.Type)
		}
		if len(cmd.Args) != 0 {
			t.Errorf("Expected no args for STATUS, got %d", len(cmd.Args))
		}
	})

	t.Run("FREQ Command", func(t *testing.T) {
		cmd, _ := ParseCommand("FREQ:14074000")
		if cmd.Args["frequency"] != "14074000" {
			t.Errorf("Expected frequency 14074000, got %v", cmd.Args["frequency"])
		}
	})

	t.Run("MODE Command With Width", func(t *testing.T) {
		cmd, _ := ParseCommand("MODE:USB:2400")
		if cmd.Args["mode"] != "USB" {
			t.Errorf("Expected mode USB, got %v", cmd.Args["mode"])
		}
		if cmd.Args["width"] != "2400" {
			t.Errorf("Expected width 2400, got %v", cmd.Args["width"])
		}
	})

	t.Run("MODE Command Without Width", func(t *testing.T) {
		cmd, _ := ParseCommand("MODE:CW")
		if _, ok := cmd.Args["width"]; ok {
			t.Error("Expected no width argument")
		}
	})

	t.Run("LEVEL Command", func(t *testing.T) {
		cmd, _ := ParseCommand("LEVEL:AF:0.5")
		if cmd.Args["name"] != "AF" || cmd.Args["value"] != "0.5" {
			t.Errorf("Unexpected args %v", cmd.Args)
		}

		cmd, _ = ParseCommand("LEVEL:STRENGTH")
		if cmd.Args["name"] != "STRENGTH" {
			t.Errorf("Expected name STRENGTH, got %v", cmd.Args["name"])
		}
		if _, ok := cmd.Args["value"]; ok {
			t.Error("Expected a read without value")
		}
	})

	t.Run("SPLIT Command", func(t *testing.T) {
		cmd, _ := ParseCommand("SPLIT:1:VFOB")
		if cmd.Args["state"] != "1" || cmd.Args["tx_vfo"] != "VFOB" {
			t.Errorf("Unexpected args %v", cmd.Args)
		}
	})

	t.Run("CONF Value Keeps Colons", func(t *testing.T) {
		cmd, _ := ParseCommand("CONF:civaddr:0x94:extra")
		if cmd.Args["token"] != "civaddr" {
			t.Errorf("Expected token civaddr, got %v", cmd.Args["token"])
		}
		if cmd.Args["value"] != "0x94:extra" {
			t.Errorf("Expected value '0x94:extra', got %v", cmd.Args["value"])
		}
	})

	t.Run("EVENTS Command", func(t *testing.T) {
		cmd, _ := ParseCommand("EVENTS:20")
		if cmd.Args["limit"] != "20" {
			t.Errorf("Expected limit 20, got %v", cmd.Args["limit"])
		}

		cmd, _ = ParseCommand("EVENTS:since:42")
		if cmd.Args["since"] != "42" {
			t.Errorf("Expected since 42, got %v", cmd.Args["since"])
		}
		if _, ok := cmd.Args["limit"]; ok {
			t.Error("Expected no limit with since")
		}
	})

	t.Run("Simple Commands", func(t *testing.T) {
		for _, cmdText := range []string{"PING", "QUIT", "INFO", "MODELS"} {
			t.Run(cmdText, func(t *testing.T) {
				cmd, err := ParseCommand(cmdText)
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				if cmd.Type != cmdText {
					t.Errorf("Expected type %s, got %s", cmdText, cmd.Type)
				}
			})
		}
	})

	t.Run("Case Insensitive", func(t *testing.T) {
		cmd, _ := ParseCommand("freq:7074000")
		if cmd.Type != "FREQ" {
			t.Errorf("Expected type FREQ, got %s", cmd.Type)
		}
	})

	t.Run("Whitespace Handling", func(t *testing.T) {
		cmd, _ := ParseCommand("  PTT:1 \r\n")
		if cmd.Type != "PTT" || cmd.Args["state"] != "1" {
			t.Errorf("Unexpected command %+v", cmd)
		}
	})

	t.Run("Unknown Command", func(t *testing.T) {
		cmd, err := ParseCommand("TUNE:auto")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if cmd.Type != "TUNE" {
			t.Errorf("Expected type TUNE, got %s", cmd.Type)
		}
		if len(cmd.Args) != 0 {
			t.Errorf("Expected unknown command args to be ignored, got %v", cmd.Args)
		}
	})

	t.Run("Empty Command", func(t *testing.T) {
		if _, err := ParseCommand("   "); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("Expected ErrEmptyCommand, got %v", err)
		}
	})
}

func TestFormatCommand(t *testing.T) {
	cases := map[string]string{
		FormatCommand("status"):              "STATUS",
		FormatCommand(CmdMode, "USB", "2400"): "MODE:USB:2400",
		FormatCommand(CmdMode, "USB", ""):     "MODE:USB",
		FormatCommand(CmdSplit, "1", "VFOB"):  "SPLIT:1:VFOB",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}

	cmd, _ := ParseCommand(FormatCommand(CmdLevel, "RFPOWER", "0.25"))
	if v, ok := cmd.Arg("value"); !ok || v != "0.25" {
		t.Errorf("Expected value 0.25 after round trip, got %q", v)
	}
}

func TestResponse(t *testing.T) {
	t.Run("Success Response JSON", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]interface{}{"frequency": 14074000})
		line := resp.String()

		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if decoded["success"] != true {
			t.Error("Expected success true")
		}
		if _, ok := decoded["error"]; ok {
			t.Error("Expected no error field")
		}
		if strings.Contains(line, "\n") {
			t.Error("Expected a single line")
		}
	})

	t.Run("Error Response Carries Kind", func(t *testing.T) {
		resp := NewErrorResponseFrom(fmt.Errorf("set freq: %w", rig.ErrTimeout))
		if resp.Kind != "timeout" {
			t.Errorf("Expected kind timeout, got %s", resp.Kind)
		}

		parsed, err := ParseResponse(resp.String())
		if err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if !errors.Is(parsed.Err(), rig.ErrTimeout) {
			t.Errorf("Expected ErrTimeout, got %v", parsed.Err())
		}
	})

	t.Run("Plain Error Response", func(t *testing.T) {
		resp := NewErrorResponse("unknown command: TUNE")
		if err := resp.Err(); err == nil || err.Error() != "unknown command: TUNE" {
			t.Errorf("Unexpected error %v", err)
		}
		if NewSuccessResponse(nil).Err() != nil {
			t.Error("Expected nil error for success")
		}
	})

	t.Run("Bad Response Line", func(t *testing.T) {
		if _, err := ParseResponse("not json"); err == nil {
			t.Error("Expected parse error")
		}
	})
}

func TestStatus(t *testing.T) {
	status := Status{
		Model:     373,
		ModelName: "IC-7300",
		Connected: true,
		Frequency: 14074000,
		Mode:      "USB",
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("Failed to marshal status: %v", err)
	}
	if !strings.Contains(string(data), `"model_name":"IC-7300"`) {
		t.Errorf("Expected model_name in %s", data)
	}
}
