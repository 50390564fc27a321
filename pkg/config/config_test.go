package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary directory for test files
	tempDir, err := os.MkdirTemp("", "rigd-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Valid Config", func(t *testing.T) {
		configContent := `
radio:
  model: 373
  device: "/dev/ttyUSB0"
  baud_rate: 19200
  transceive: true
  retry: 2
  conf:
    civaddr: "0x94"
  ptt_method: "rts"

web:
  enabled: true
  port: 8081
  bind_address: "0.0.0.0"

api:
  unix_socket: "/tmp/test-rigd.sock"

storage:
  database_path: "/tmp/rigd.db"
  max_events: 5000

trace:
  file: "/tmp/rigd.trace"

logging:
  level: "debug"
  file: "/var/log/rigd.log"
  console: true
`
		configPath := filepath.Join(tempDir, "valid.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Radio.Model != 373 {
			t.Errorf("Expected model 373, got %d", config.Radio.Model)
		}
		if config.Radio.Device != "/dev/ttyUSB0" {
			t.Errorf("Expected device /dev/ttyUSB0, got %s", config.Radio.Device)
		}
		if config.Radio.BaudRate != 19200 {
			t.Errorf("Expected baud rate 19200, got %d", config.Radio.BaudRate)
		}
		if !config.Radio.Transceive {
			t.Error("Expected transceive to be enabled")
		}
		if config.Radio.Retry != 2 {
			t.Errorf("Expected retry 2, got %d", config.Radio.Retry)
		}
		if config.Radio.Conf["civaddr"] != "0x94" {
			t.Errorf("Expected civaddr 0x94, got %s", config.Radio.Conf["civaddr"])
		}
		if config.Radio.PTTMethod != "rts" {
			t.Errorf("Expected PTT method rts, got %s", config.Radio.PTTMethod)
		}
		if config.Web.Port != 8081 {
			t.Errorf("Expected web port 8081, got %d", config.Web.Port)
		}
		if config.API.UnixSocket != "/tmp/test-rigd.sock" {
			t.Errorf("Expected unix socket /tmp/test-rigd.sock, got %s", config.API.UnixSocket)
		}
		if config.Storage.MaxEvents != 5000 {
			t.Errorf("Expected max events 5000, got %d", config.Storage.MaxEvents)
		}
		if config.Trace.File != "/tmp/rigd.trace" {
			t.Errorf("Expected trace file /tmp/rigd.trace, got %s", config.Trace.File)
		}
		if config.Logging.Level != "debug" {
			t.Errorf("Expected log level debug, got %s", config.Logging.Level)
		}
		if !config.Logging.Console {
			t.Error("Expected console logging to be enabled")
		}
		if config.UsesNetwork() {
			t.Error("Expected serial device, not network")
		}
	})

	t.Run("Config With Defaults", func(t *testing.T) {
		configContent := `
radio:
  device: "tcp://127.0.0.1:4532"
`
		configPath := filepath.Join(tempDir, "minimal.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Radio.Model != 1 {
			t.Errorf("Expected default radio model 1, got %d", config.Radio.Model)
		}
		if config.Radio.PollInterval != 1000 {
			t.Errorf("Expected default poll interval 1000, got %d", config.Radio.PollInterval)
		}
		if config.Radio.DataBits != 8 {
			t.Errorf("Expected default data bits 8, got %d", config.Radio.DataBits)
		}
		if config.Radio.Parity != "none" {
			t.Errorf("Expected default parity none, got %s", config.Radio.Parity)
		}
		if config.Radio.PTTMethod != "cat" {
			t.Errorf("Expected default PTT method cat, got %s", config.Radio.PTTMethod)
		}
		if config.Web.Port != 8080 {
			t.Errorf("Expected default web port 8080, got %d", config.Web.Port)
		}
		if config.API.UnixSocket != "/tmp/rigd.sock" {
			t.Errorf("Expected default unix socket /tmp/rigd.sock, got %s", config.API.UnixSocket)
		}
		if config.Storage.MaxEvents != 10000 {
			t.Errorf("Expected default max events 10000, got %d", config.Storage.MaxEvents)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected default log level info, got %s", config.Logging.Level)
		}
		if config.Logging.MaxSize != 10 {
			t.Errorf("Expected default log max size 10, got %d", config.Logging.MaxSize)
		}
		if !config.UsesNetwork() {
			t.Error("Expected tcp:// device to be a network device")
		}
	})

	t.Run("File Not Found", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if err == nil {
			t.Fatal("Expected error for nonexistent file, got nil")
		}
		if !strings.Contains(err.Error(), "failed to read config file") {
			t.Errorf("Expected 'failed to read config file' error, got: %v", err)
		}
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		configContent := `
radio:
  model: [invalid yaml structure
`
		configPath := filepath.Join(tempDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		_, err := LoadConfig(configPath)
		if err == nil {
			t.Fatal("Expected error for invalid YAML, got nil")
		}
		if !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected 'failed to parse config file' error, got: %v", err)
		}
	})

	t.Run("Empty File", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "empty.yaml")
		if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
			t.Fatalf("Failed to write empty config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error for empty file, got: %v", err)
		}
		if config.Radio.Device != "none" {
			t.Errorf("Expected default device none for empty file, got %s", config.Radio.Device)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("Default Config", func(t *testing.T) {
		if err := Default().Validate(); err != nil {
			t.Errorf("Expected default config to be valid, got: %v", err)
		}
	})

	t.Run("Real Rig Without Device", func(t *testing.T) {
		config := Default()
		config.Radio.Model = 373
		err := config.Validate()
		if err == nil || !strings.Contains(err.Error(), "radio device is required") {
			t.Errorf("Expected device required error, got: %v", err)
		}
	})

	t.Run("Invalid Parity", func(t *testing.T) {
		config := Default()
		config.Radio.Parity = "sometimes"
		if err := config.Validate(); err == nil {
			t.Error("Expected error for invalid parity")
		}
	})

	t.Run("Invalid Stop Bits", func(t *testing.T) {
		config := Default()
		config.Radio.StopBits = 3
		if err := config.Validate(); err == nil {
			t.Error("Expected error for invalid stop bits")
		}
	})

	t.Run("Negative Retry", func(t *testing.T) {
		config := Default()
		config.Radio.Retry = -1
		if err := config.Validate(); err == nil {
			t.Error("Expected error for negative retry")
		}
	})

	t.Run("GPIO PTT Without Pin", func(t *testing.T) {
		config := Default()
		config.Radio.PTTMethod = "gpio"
		err := config.Validate()
		if err == nil || !strings.Contains(err.Error(), "ptt_gpio_pin") {
			t.Errorf("Expected ptt_gpio_pin error, got: %v", err)
		}
	})

	t.Run("Serial PTT Without Port", func(t *testing.T) {
		config := Default()
		config.Radio.PTTMethod = "dtr"
		if err := config.Validate(); err == nil {
			t.Error("Expected error for dtr PTT without a port")
		}
	})

	t.Run("Unknown PTT Method", func(t *testing.T) {
		config := Default()
		config.Radio.PTTMethod = "vox"
		if err := config.Validate(); err == nil {
			t.Error("Expected error for unknown PTT method")
		}
	})

	t.Run("Web Port Out Of Range", func(t *testing.T) {
		config := Default()
		config.Web.Enabled = true
		config.Web.Port = 70000
		if err := config.Validate(); err == nil {
			t.Error("Expected error for web port out of range")
		}
	})
}
