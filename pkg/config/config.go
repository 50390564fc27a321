package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config represents the rigd configuration
type Config struct {
	Radio struct {
		// Rig model number (family*100 + model); 1 is the dummy rig
		Model        int `yaml:"model"`
		PollInterval int `yaml:"poll_interval"`
		// Listen for unsolicited transceive frames instead of polling
		Transceive bool `yaml:"transceive"`

		// CAT port: serial device path, tcp://host:port, or "none"
		Device   string `yaml:"device"`
		BaudRate int    `yaml:"baud_rate"`
		DataBits int    `yaml:"data_bits"`
		StopBits int    `yaml:"stop_bits"`
		Parity   string `yaml:"parity"`
		DTR      string `yaml:"dtr"`
		RTS      string `yaml:"rts"`

		// Session overrides; zero keeps the model defaults
		TimeoutMs        int `yaml:"timeout_ms"`
		Retry            int `yaml:"retry"`
		WriteDelayMs     int `yaml:"write_delay_ms"`
		PostWriteDelayMs int `yaml:"post_write_delay_ms"`

		// Backend configuration tokens, e.g. civaddr, mode731
		Conf map[string]string `yaml:"conf"`

		// PTT Configuration
		PTTMethod    string `yaml:"ptt_method"`
		PTTPort      string `yaml:"ptt_port"`
		PTTGPIOPin   int    `yaml:"ptt_gpio_pin"`
		PTTActiveLow bool   `yaml:"ptt_active_low"`
	} `yaml:"radio"`

	Web struct {
		Enabled     bool   `yaml:"enabled"`
		Port        int    `yaml:"port"`
		BindAddress string `yaml:"bind_address"`
	} `yaml:"web"`

	API struct {
		UnixSocket string `yaml:"unix_socket"`
	} `yaml:"api"`

	Storage struct {
		DatabasePath string `yaml:"database_path"`
		MaxEvents    int    `yaml:"max_events"`
	} `yaml:"storage"`

	Trace struct {
		File string `yaml:"file"`
	} `yaml:"trace"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Structured bool   `yaml:"structured"`
		Console    bool   `yaml:"console"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Radio.Model == 0 {
		c.Radio.Model = 1 // dummy rig
	}
	if c.Radio.PollInterval == 0 {
		c.Radio.PollInterval = 1000
	}
	if c.Radio.Device == "" {
		c.Radio.Device = "none"
	}
	if c.Radio.DataBits == 0 {
		c.Radio.DataBits = 8
	}
	if c.Radio.StopBits == 0 {
		c.Radio.StopBits = 1
	}
	if c.Radio.Parity == "" {
		c.Radio.Parity = "none"
	}
	if c.Radio.DTR == "" {
		c.Radio.DTR = "default"
	}
	if c.Radio.RTS == "" {
		c.Radio.RTS = "default"
	}
	if c.Radio.PTTMethod == "" {
		c.Radio.PTTMethod = "cat"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.BindAddress == "" {
		c.Web.BindAddress = "127.0.0.1"
	}
	if c.API.UnixSocket == "" {
		c.API.UnixSocket = "/tmp/rigd.sock"
	}
	if c.Storage.MaxEvents == 0 {
		c.Storage.MaxEvents = 10000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 28
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Radio.Model <= 0 {
		return fmt.Errorf("radio model must be positive, got %d", c.Radio.Model)
	}
	if c.Radio.Model >= 100 && c.Radio.Device == "none" {
		return fmt.Errorf("radio device is required for model %d", c.Radio.Model)
	}
	if c.Radio.BaudRate < 0 {
		return fmt.Errorf("invalid baud rate %d", c.Radio.BaudRate)
	}
	if c.Radio.DataBits < 5 || c.Radio.DataBits > 8 {
		return fmt.Errorf("invalid data bits %d", c.Radio.DataBits)
	}
	if c.Radio.StopBits != 1 && c.Radio.StopBits != 2 {
		return fmt.Errorf("invalid stop bits %d", c.Radio.StopBits)
	}
	switch strings.ToLower(c.Radio.Parity) {
	case "none", "odd", "even", "mark", "space":
	default:
		return fmt.Errorf("invalid parity %q", c.Radio.Parity)
	}
	if c.Radio.TimeoutMs < 0 || c.Radio.Retry < 0 || c.Radio.WriteDelayMs < 0 || c.Radio.PostWriteDelayMs < 0 {
		return fmt.Errorf("radio timeout, retry and delays must not be negative")
	}

	switch strings.ToLower(c.Radio.PTTMethod) {
	case "cat", "none":
	case "dtr", "rts":
		if c.Radio.PTTPort == "" && c.Radio.Device == "none" {
			return fmt.Errorf("ptt_port is required for ptt_method %s", c.Radio.PTTMethod)
		}
	case "gpio":
		if c.Radio.PTTGPIOPin <= 0 {
			return fmt.Errorf("ptt_gpio_pin is required for ptt_method gpio")
		}
	default:
		return fmt.Errorf("invalid ptt_method %q", c.Radio.PTTMethod)
	}

	if c.Web.Enabled && (c.Web.Port <= 0 || c.Web.Port > 65535) {
		return fmt.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}

// UsesNetwork reports whether the CAT device is a tcp:// address
func (c *Config) UsesNetwork() bool {
	return strings.HasPrefix(c.Radio.Device, "tcp://")
}

