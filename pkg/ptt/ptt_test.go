package ptt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
)

func fakeSysfs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "export"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "unexport"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func readPin(t *testing.T, root string, pin int, file string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, fmt.Sprintf("gpio%d", pin), file))
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(data))
}

func TestSerialLine(t *testing.T) {
	t.Run("DTR", func(t *testing.T) {
		m := transport.NewMock()
		m.SetDTR(true)
		line, err := NewSerialLine(m, SignalDTR, false, nil)
		if err != nil {
			t.Fatalf("Failed to create line: %v", err)
		}
		if m.DTR() {
			t.Error("Expected DTR released after open")
		}

		line.SetPTT(true)
		if !m.DTR() {
			t.Error("Expected DTR asserted")
		}
		if m.RTS() {
			t.Error("Expected RTS untouched")
		}
		on, _ := line.PTT()
		if !on {
			t.Error("Expected PTT on")
		}

		line.Close()
		if m.DTR() {
			t.Error("Expected DTR released on close")
		}
	})

	t.Run("RTS active low", func(t *testing.T) {
		m := transport.NewMock()
		line, err := NewSerialLine(m, SignalRTS, true, nil)
		if err != nil {
			t.Fatalf("Failed to create line: %v", err)
		}
		if !m.RTS() {
			t.Error("Expected RTS high while released")
		}
		line.SetPTT(true)
		if m.RTS() {
			t.Error("Expected RTS low while keyed")
		}
	})

	t.Run("owned port is closed", func(t *testing.T) {
		m := transport.NewMock()
		line, _ := NewSerialLine(m, SignalDTR, false, m)
		line.Close()
		if err := m.Write([]byte{0x00}); !errors.Is(err, transport.ErrClosed) {
			t.Errorf("Expected closed port, got %v", err)
		}
	})
}

func TestGPIO(t *testing.T) {
	t.Run("exports and keys", func(t *testing.T) {
		root := fakeSysfs(t)
		// the kernel creates the pin directory on export
		os.MkdirAll(filepath.Join(root, "gpio17"), 0755)

		g, err := newGPIOAt(root, 17, false)
		if err != nil {
			t.Fatalf("Failed to open GPIO: %v", err)
		}
		if got := readPin(t, root, 17, "direction"); got != "out" {
			t.Errorf("Expected direction out, got %q", got)
		}
		if got := readPin(t, root, 17, "value"); got != "0" {
			t.Errorf("Expected value 0, got %q", got)
		}

		g.SetPTT(true)
		if got := readPin(t, root, 17, "value"); got != "1" {
			t.Errorf("Expected value 1, got %q", got)
		}
		on, err := g.PTT()
		if err != nil || !on {
			t.Errorf("Expected PTT on, got %v (%v)", on, err)
		}
		if err := g.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	t.Run("active low", func(t *testing.T) {
		root := fakeSysfs(t)
		os.MkdirAll(filepath.Join(root, "gpio17"), 0755)

		g, err := newGPIOAt(root, 17, true)
		if err != nil {
			t.Fatalf("Failed to open GPIO: %v", err)
		}
		if got := readPin(t, root, 17, "value"); got != "1" {
			t.Errorf("Expected idle value 1, got %q", got)
		}
		g.SetPTT(true)
		if got := readPin(t, root, 17, "value"); got != "0" {
			t.Errorf("Expected keyed value 0, got %q", got)
		}
		on, _ := g.PTT()
		if !on {
			t.Error("Expected PTT on")
		}
	})

	t.Run("export never appears", func(t *testing.T) {
		root := fakeSysfs(t)
		if _, err := newGPIOAt(root, 17, false); err == nil {
			t.Error("Expected error when pin directory is missing")
		}
	})

	t.Run("bad pin", func(t *testing.T) {
		if _, err := newGPIOAt(t.TempDir(), 0, false); err == nil {
			t.Error("Expected error for pin 0")
		}
	})

	t.Run("no sysfs", func(t *testing.T) {
		if _, err := newGPIOAt(filepath.Join(t.TempDir(), "missing"), 17, false); err == nil {
			t.Error("Expected error without sysfs")
		}
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("cat", func(t *testing.T) {
		cfg := config.Default()
		line, err := FromConfig(cfg, nil)
		if err != nil || line != nil {
			t.Errorf("Expected nil line, got %v (%v)", line, err)
		}
	})

	t.Run("none", func(t *testing.T) {
		cfg := config.Default()
		cfg.Radio.PTTMethod = "none"
		line, err := FromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := line.SetPTT(true); !errors.Is(err, rig.ErrUnsupported) {
			t.Errorf("Expected ErrUnsupported, got %v", err)
		}
	})

	t.Run("rts on CAT port", func(t *testing.T) {
		cfg := config.Default()
		cfg.Radio.Device = "/dev/ttyUSB0"
		cfg.Radio.PTTMethod = "RTS"
		m := transport.NewMock()
		line, err := FromConfig(cfg, m)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		line.SetPTT(true)
		if !m.RTS() || m.DTR() {
			t.Errorf("Expected RTS keyed only, got rts=%v dtr=%v", m.RTS(), m.DTR())
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		cfg := config.Default()
		cfg.Radio.PTTMethod = "vox"
		if _, err := FromConfig(cfg, nil); !errors.Is(err, rig.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
}
