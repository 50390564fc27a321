package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dougsko/rigd/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for input, expected := range testCases {
		if got := ParseLogLevel(input); got != expected {
			t.Errorf("Expected %s for %q, got %s", expected, input, got)
		}
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn, false)

	logger.Debug("test", "hidden")
	logger.Info("test", "hidden")
	logger.Warn("test", "shown", map[string]interface{}{"b": 2, "a": 1})
	logger.Errorf("test", "value %d", 42)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[WARN] test: shown [a=1 b=2]") {
		t.Errorf("Unexpected warn line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] test: value 42") {
		t.Errorf("Unexpected error line: %s", lines[1])
	}
}

func TestStructuredFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug, true)

	logger.WithFields(map[string]interface{}{"model": 373}).Info("civ", `reply "ok"`, map[string]interface{}{"attempt": 2})

	var entry map[string]string
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got error %v for %s", err, buf.String())
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %s", entry["level"])
	}
	if entry["component"] != "civ" {
		t.Errorf("Expected component civ, got %s", entry["component"])
	}
	if entry["message"] != `reply "ok"` {
		t.Errorf("Expected quoted message to round trip, got %s", entry["message"])
	}
	if entry["model"] != "373" || entry["attempt"] != "2" {
		t.Errorf("Expected merged fields, got %v", entry)
	}
}

func TestFieldLoggerFormatted(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug, false)
	fl := logger.WithFields(map[string]interface{}{"session": "abc"})

	fl.Warnf("engine", "polling every %s", "1s")
	fl.Debug("engine", "poll failed", map[string]interface{}{"error": "timeout"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[WARN] engine: polling every 1s [session=abc]") {
		t.Errorf("Unexpected warn line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "[DEBUG] engine: poll failed [error=timeout session=abc]") {
		t.Errorf("Unexpected debug line: %s", lines[1])
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg := config.Default()
	cfg.Logging.File = filepath.Join(tempDir, "logs", "rigd.log")
	cfg.Logging.Level = "debug"

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	logger.Debug("main", "written to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "main: written to file") {
		t.Errorf("Expected log line in file, got %q", string(data))
	}
}
