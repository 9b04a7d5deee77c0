// Package config loads the YAML configuration of the bus tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"twibus/core"
)

// Config is the top-level configuration file.
type Config struct {
	Bus     BusConfig     `yaml:"bus"`
	Retry   RetryConfig   `yaml:"retry"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Console ConsoleConfig `yaml:"console"`
	Debug   bool          `yaml:"debug"`
}

// BusConfig describes the TWI peripheral.
type BusConfig struct {
	Name          string `yaml:"name"`
	CPUHz         uint32 `yaml:"cpu_hz"`
	SpeedHz       uint32 `yaml:"speed_hz"`
	LenientStatus bool   `yaml:"lenient_status"`
}

// RetryConfig bounds the busy-device retry loop. Zero values retry
// forever without pausing.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
}

// SensorConfig describes the temperature readers.
type SensorConfig struct {
	Address  uint8         `yaml:"address"`
	Interval time.Duration `yaml:"interval"`
	Tasks    int           `yaml:"tasks"`
	Readings int           `yaml:"readings"` // per task, 0 = forever
}

// ConsoleConfig selects where readings are printed. An empty device
// means stdout.
type ConsoleConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// LoadConfig parses a YAML configuration and applies defaults
func LoadConfig(data []byte) (*Config, error) {
	var config Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses the configuration file at path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return LoadConfig(data)
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Bus.Name == "" {
		config.Bus.Name = "twi0"
	}
	if config.Bus.CPUHz == 0 {
		config.Bus.CPUHz = core.DefaultCPUFrequency
	}
	if config.Bus.SpeedHz == 0 {
		config.Bus.SpeedHz = core.DefaultFrequency
	}

	if config.Sensor.Address == 0 {
		config.Sensor.Address = 0x68 // DS3231/DS3232
	}
	if config.Sensor.Interval == 0 {
		config.Sensor.Interval = time.Second
	}
	if config.Sensor.Tasks == 0 {
		config.Sensor.Tasks = 1
	}

	if config.Console.Baud == 0 {
		config.Console.Baud = 9600
	}
}

// Validate rejects values the bus cannot run with
func (c *Config) Validate() error {
	if c.Sensor.Address > 0x7F {
		return fmt.Errorf("sensor address %#02x: %w", c.Sensor.Address, core.ErrAddress)
	}
	if _, _, err := core.BitRate(c.Bus.CPUHz, c.Bus.SpeedHz); err != nil {
		return fmt.Errorf("bus speed %d Hz at %d Hz CPU: %w", c.Bus.SpeedHz, c.Bus.CPUHz, err)
	}
	if c.Sensor.Tasks < 0 || c.Sensor.Readings < 0 || c.Retry.MaxAttempts < 0 {
		return errors.New("tasks, readings and max_attempts must not be negative")
	}
	if c.Retry.Backoff < 0 || c.Retry.MaxBackoff < 0 {
		return errors.New("backoff must not be negative")
	}
	return nil
}

// BusConfig converts the bus and retry sections into a core.Config
func (c *Config) BusConfig() core.Config {
	cfg := core.Config{
		Name:          c.Bus.Name,
		CPUFrequency:  c.Bus.CPUHz,
		Frequency:     c.Bus.SpeedHz,
		LenientStatus: c.Bus.LenientStatus,
		Retry:         core.RetryPolicy{MaxAttempts: c.Retry.MaxAttempts},
	}

	switch {
	case c.Retry.Backoff == 0:
	case c.Retry.MaxBackoff > c.Retry.Backoff:
		cfg.Retry.Backoff = core.ExponentialBackoff(c.Retry.Backoff, c.Retry.MaxBackoff)
	default:
		cfg.Retry.Backoff = core.ConstantBackoff(c.Retry.Backoff)
	}
	return cfg
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}
