package serial

import (
	"io"
	"os"
	"sync"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the board's UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration the firmware's console uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        9600, // machine.Serial default on AVR
		ReadTimeout: 100,
	}
}

// Console writes whole lines to a port or stream. Lines from concurrent
// tasks never interleave.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewConsole writes lines to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// OpenConsole opens the serial device in cfg, or stdout when no device
// is configured.
func OpenConsole(cfg *Config) (*Console, error) {
	if cfg == nil || cfg.Device == "" {
		return NewConsole(os.Stdout), nil
	}
	port, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return &Console{w: port, c: port}, nil
}

// Println writes line followed by CRLF, the way the firmware terminates
// console lines.
func (c *Console) Println(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, line+"\r\n")
	return err
}

// Close closes the underlying port, if any.
func (c *Console) Close() error {
	if c.c == nil {
		return nil
	}
	return c.c.Close()
}
