package ptt

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dougsko/rigd/pkg/logging"
)

// SysfsRoot is the Linux sysfs GPIO directory.
const SysfsRoot = "/sys/class/gpio"

// GPIO keys PTT with a sysfs GPIO pin.
type GPIO struct {
	root      string
	pin       int
	activeLow bool
	exported  bool
	mutex     sync.Mutex
}

// NewGPIO exports pin as an output and releases PTT.
func NewGPIO(pin int, activeLow bool) (*GPIO, error) {
	return newGPIOAt(SysfsRoot, pin, activeLow)
}

func newGPIOAt(root string, pin int, activeLow bool) (*GPIO, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("invalid GPIO pin %d", pin)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, fmt.Errorf("GPIO not available on this system")
	}

	g := &GPIO{root: root, pin: pin, activeLow: activeLow}
	if err := g.export(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(g.path("direction"), []byte("out"), 0644); err != nil {
		return nil, fmt.Errorf("failed to set pin %d direction: %w", pin, err)
	}
	if err := g.SetPTT(false); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GPIO) path(file string) string {
	return filepath.Join(g.root, fmt.Sprintf("gpio%d", g.pin), file)
}

// export makes the pin visible to userspace. A pin exported by someone
// else is used as is and left exported on Close.
func (g *GPIO) export() error {
	pinPath := filepath.Join(g.root, fmt.Sprintf("gpio%d", g.pin))
	if _, err := os.Stat(pinPath); err == nil {
		return nil
	}

	if err := os.WriteFile(filepath.Join(g.root, "export"), []byte(strconv.Itoa(g.pin)), 0644); err != nil {
		return fmt.Errorf("failed to export GPIO pin %d: %w", g.pin, err)
	}

	for i := 0; i < 10; i++ {
		if _, err := os.Stat(pinPath); err == nil {
			g.exported = true
			logging.Debug("ptt", "exported GPIO pin", map[string]interface{}{"pin": g.pin})
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("pin %d directory did not appear after export", g.pin)
}

func (g *GPIO) SetPTT(on bool) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	value := "0"
	if on != g.activeLow {
		value = "1"
	}
	if err := os.WriteFile(g.path("value"), []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to set pin %d value: %w", g.pin, err)
	}
	return nil
}

func (g *GPIO) PTT() (bool, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	data, err := os.ReadFile(g.path("value"))
	if err != nil {
		return false, fmt.Errorf("failed to read pin %d value: %w", g.pin, err)
	}
	high := strings.TrimSpace(string(data)) == "1"
	return high != g.activeLow, nil
}

// Close releases PTT and unexports the pin if NewGPIO exported it.
func (g *GPIO) Close() error {
	err := g.SetPTT(false)

	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.exported {
		if uerr := os.WriteFile(filepath.Join(g.root, "unexport"), []byte(strconv.Itoa(g.pin)), 0644); uerr != nil && err == nil {
			err = fmt.Errorf("failed to unexport GPIO pin %d: %w", g.pin, uerr)
		}
		g.exported = false
	}
	return err
}
