package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/engine"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/trace"
)

func startEngine(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "rigctl_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	cfg := config.Default()
	cfg.Radio.PollInterval = 50
	cfg.Storage.DatabasePath = filepath.Join(tempDir, "rigd.db")

	socket := filepath.Join(tempDir, "rigd.sock")
	e := engine.New(cfg, socket, engine.WithLogger(logging.New(io.Discard, logging.LevelError, false)))
	if err := e.Start(); err != nil {
		t.Fatalf("Failed to start engine: %v", err)
	}
	t.Cleanup(func() { e.Stop() })
	return socket
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRadioCommands(t *testing.T) {
	socket := startEngine(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"set freq", []string{"freq", "14074000"}, "14074000\n"},
		{"get freq", []string{"freq"}, "14074000\n"},
		{"set mode", []string{"mode", "usb", "3000"}, "USB 3000\n"},
		{"set vfo", []string{"vfo", "VFOB"}, "VFOB\n"},
		{"ptt on", []string{"ptt", "on"}, "on\n"},
		{"ptt off", []string{"ptt", "off"}, "off\n"},
		{"level", []string{"level", "af", "0.5"}, "AF 0.5\n"},
		{"func", []string{"func", "nb", "on"}, "NB on\n"},
		{"info", []string{"info"}, "Dummy radio (in-memory)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--socket", socket}, tt.args...)...)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if out != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out)
			}
		})
	}

	t.Run("status", func(t *testing.T) {
		out, err := run(t, "--socket", socket, "status")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(out, "Dummy") || !strings.Contains(out, "Connected: true") {
			t.Errorf("Unexpected status output:\n%s", out)
		}
	})

	t.Run("events", func(t *testing.T) {
		out, err := run(t, "--socket", socket, "events", "--since", "0")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(out, "14074000 Hz") {
			t.Errorf("Expected frequency event, got:\n%s", out)
		}
	})

	t.Run("send", func(t *testing.T) {
		out, err := run(t, "--socket", socket, "send", "PING")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(out, `"success":true`) {
			t.Errorf("Expected success response, got %q", out)
		}
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := run(t, "--socket", socket, "mode", "BOGUS")
		if err == nil {
			t.Fatal("Expected error for unknown mode")
		}
		if rig.Kind(err) != "invalid_argument" {
			t.Errorf("Expected invalid_argument, got %s", rig.Kind(err))
		}
	})

	t.Run("bad ptt word", func(t *testing.T) {
		if _, err := run(t, "--socket", socket, "ptt", "maybe"); err == nil {
			t.Error("Expected error for ptt maybe")
		}
	})
}

func TestNoDaemon(t *testing.T) {
	_, err := run(t, "--socket", filepath.Join(os.TempDir(), "rigctl-missing.sock"), "freq")
	if err == nil {
		t.Error("Expected error without a daemon")
	}
}

func TestModels(t *testing.T) {
	defer func() { modelsFlags.family = "" }()

	out, err := run(t, "models", "--family", "dummy")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one model, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "Dummy") {
		t.Errorf("Expected the dummy model, got %q", lines[1])
	}

	_, err = run(t, "models", "--family", "nosuch")
	if err == nil || !strings.Contains(err.Error(), "icom") {
		t.Errorf("Expected unknown family error listing icom, got %v", err)
	}
}

func TestTraceCommand(t *testing.T) {
	defer func() { traceFlags.dir = "" }()

	path := filepath.Join(t.TempDir(), "frames.cbor")
	rec, err := trace.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open trace: %v", err)
	}
	rec.TraceFrame(rig.DirTx, []byte{0xfe, 0xfe, 0x94, 0xe0, 0x03, 0xfd}, nil)
	rec.TraceFrame(rig.DirRx, []byte{0xfe, 0xfe, 0xe0, 0x94, 0xfb, 0xfd}, nil)
	rec.Close()

	out, err := run(t, "trace", "--dir", "rx", "--hex", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "fefee094fbfd\n" {
		t.Errorf("Expected the rx frame only, got %q", out)
	}

	if _, err := run(t, "trace", "--dir", "sideways", path); err == nil {
		t.Error("Expected error for unknown direction")
	}
}

func TestShellLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"status", "STATUS"},
		{"freq 7074000", "FREQ:7074000"},
		{"  mode usb   2400 ", "MODE:usb:2400"},
		{"LEVEL:AF:0.5", "LEVEL:AF:0.5"},
		{"events since:4", "events since:4"},
	}

	for _, tt := range tests {
		if got := shellLine(tt.in); got != tt.want {
			t.Errorf("shellLine(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "ON", "1", "true", "yes"} {
		if on, err := parseOnOff(s); err != nil || !on {
			t.Errorf("Expected %q to mean on", s)
		}
	}
	for _, s := range []string{"off", "0", "false", "no"} {
		if on, err := parseOnOff(s); err != nil || on {
			t.Errorf("Expected %q to mean off", s)
		}
	}
	if _, err := parseOnOff("maybe"); err == nil {
		t.Error("Expected error for maybe")
	}
}
