package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"twibus/core"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte("{}"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Bus.CPUHz != 16000000 || cfg.Bus.SpeedHz != 100000 {
		t.Errorf("Expected 16MHz/100kHz defaults, got %d/%d", cfg.Bus.CPUHz, cfg.Bus.SpeedHz)
	}
	if cfg.Sensor.Address != 0x68 {
		t.Errorf("Expected default address 0x68, got %#02x", cfg.Sensor.Address)
	}
	if cfg.Sensor.Interval != time.Second || cfg.Sensor.Tasks != 1 {
		t.Errorf("Expected 1s interval and 1 task, got %v and %d", cfg.Sensor.Interval, cfg.Sensor.Tasks)
	}
	if cfg.Console.Device != "" || cfg.Console.Baud != 9600 {
		t.Errorf("Expected stdout console at 9600 baud, got %q at %d", cfg.Console.Device, cfg.Console.Baud)
	}

	bc := cfg.BusConfig()
	if bc.Retry.MaxAttempts != 0 || bc.Retry.Backoff != nil {
		t.Errorf("Expected unbounded retry without backoff, got %+v", bc.Retry)
	}
}

func TestLoadConfig(t *testing.T) {
	data := []byte(`
bus:
  name: rtc-bus
  cpu_hz: 8000000
  speed_hz: 400000
  lenient_status: true
retry:
  max_attempts: 5
  backoff: 1ms
  max_backoff: 8ms
sensor:
  address: 0x57
  interval: 250ms
  tasks: 3
  readings: 10
console:
  device: /dev/ttyUSB0
  baud: 115200
debug: true
`)

	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Sensor.Address != 0x57 || cfg.Sensor.Interval != 250*time.Millisecond {
		t.Errorf("Unexpected sensor section %+v", cfg.Sensor)
	}
	if cfg.Sensor.Tasks != 3 || cfg.Sensor.Readings != 10 {
		t.Errorf("Unexpected task counts %+v", cfg.Sensor)
	}
	if cfg.Console.Device != "/dev/ttyUSB0" || cfg.Console.Baud != 115200 {
		t.Errorf("Unexpected console section %+v", cfg.Console)
	}
	if !cfg.Debug {
		t.Error("Expected debug enabled")
	}

	bc := cfg.BusConfig()
	if bc.Name != "rtc-bus" || bc.CPUFrequency != 8000000 || bc.Frequency != 400000 || !bc.LenientStatus {
		t.Errorf("Unexpected bus config %+v", bc)
	}
	if bc.Retry.MaxAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", bc.Retry.MaxAttempts)
	}
	if bc.Retry.Backoff == nil {
		t.Fatal("Expected a backoff function")
	}
	if d := bc.Retry.Backoff(3); d != 4*time.Millisecond {
		t.Errorf("Expected exponential backoff 4ms on attempt 3, got %v", d)
	}
	if d := bc.Retry.Backoff(10); d != 8*time.Millisecond {
		t.Errorf("Expected backoff capped at 8ms, got %v", d)
	}
}

func TestConstantBackoff(t *testing.T) {
	cfg, err := LoadConfig([]byte("retry:\n  backoff: 2ms\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	b := cfg.BusConfig().Retry.Backoff
	if b(1) != 2*time.Millisecond || b(7) != 2*time.Millisecond {
		t.Errorf("Expected constant 2ms backoff, got %v and %v", b(1), b(7))
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"address", "sensor:\n  address: 0x90\n", core.ErrAddress},
		{"speed", "bus:\n  speed_hz: 2000000\n", core.ErrBitRate},
		{"tasks", "sensor:\n  tasks: -1\n", nil},
		{"syntax", "bus: [", nil},
	}

	for _, tt := range tests {
		_, err := LoadConfig([]byte(tt.data))
		if err == nil {
			t.Errorf("%s: expected an error", tt.name)
			continue
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twibus.yaml")
	if err := os.WriteFile(path, []byte("sensor:\n  tasks: 4\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Sensor.Tasks != 4 {
		t.Errorf("Expected 4 tasks, got %d", cfg.Sensor.Tasks)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}
