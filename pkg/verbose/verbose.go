// Package verbose gates raw wire dumps behind a process-wide flag.
package verbose

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/dougsko/rigd/pkg/rig"
)

var enabled atomic.Bool

// SetEnabled sets the global verbose logging flag
func SetEnabled(enable bool) {
	enabled.Store(enable)
}

// IsEnabled returns whether verbose logging is enabled
func IsEnabled() bool {
	return enabled.Load()
}

// Printf prints a verbose log message if verbose logging is enabled
func Printf(format string, args ...interface{}) {
	if IsEnabled() {
		log.Printf("[VERBOSE] "+format, args...)
	}
}

// Dump prints a labelled hex dump of b if verbose logging is enabled
func Dump(label string, b []byte) {
	if IsEnabled() {
		log.Printf("[VERBOSE] %s (%d bytes): %s", label, len(b), Hex(b))
	}
}

// Hex formats b as space separated upper-case hex pairs
func Hex(b []byte) string {
	return fmt.Sprintf("% X", b)
}

// FrameTracer dumps every CAT frame a handle sends or receives.
type FrameTracer struct{}

// TraceFrame implements rig.FrameTracer
func (FrameTracer) TraceFrame(dir rig.Direction, frame []byte, err error) {
	if !IsEnabled() {
		return
	}
	if err != nil {
		log.Printf("[VERBOSE] %s %s: %v", dir, Hex(frame), err)
		return
	}
	Dump(dir.String(), frame)
}
