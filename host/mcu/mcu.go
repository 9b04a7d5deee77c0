// Package mcu talks to a board running the twibus firmware over its
// serial console and decodes the temperature lines it prints.
package mcu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"twibus/host/serial"
)

// ErrNotConnected is returned when no port is open.
var ErrNotConnected = errors.New("not connected to MCU")

// Sample is one decoded console line.
type Sample struct {
	Line         string
	MilliCelsius int32
}

// MCU represents a connection to a board's console
type MCU struct {
	// Serial port
	port serial.Port

	scanner *bufio.Scanner

	// Connection state
	connected bool

	// Lines that were not temperature readings
	skipped int
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{
		connected: false,
	}
}

// Connect connects to an MCU via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects to an MCU with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	return m.attachFlushed(port)
}

// attachFlushed drops anything printed before we were listening, then
// attaches the port. The port is closed if that fails.
func (m *MCU) attachFlushed(port serial.Port) error {
	if err := port.Flush(); err != nil {
		port.Close()
		return fmt.Errorf("failed to flush serial port: %w", err)
	}
	m.Attach(port)
	return nil
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) {
	m.port = port
	m.scanner = bufio.NewScanner(liveReader{port})
	m.connected = true
}

// liveReader keeps a console read waiting across idle periods. A port
// opened with a read timeout reports (0, io.EOF) when nothing arrived in
// time, which would end a bufio.Scanner for good.
type liveReader struct {
	r io.Reader
}

func (l liveReader) Read(b []byte) (int, error) {
	for {
		n, err := l.r.Read(b)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	if m.port != nil {
		if err := m.port.Close(); err != nil {
			return err
		}
	}
	m.connected = false
	return nil
}

// IsConnected returns whether the MCU is connected
func (m *MCU) IsConnected() bool {
	return m.connected
}

// Skipped returns how many console lines were not temperature readings
func (m *MCU) Skipped() int {
	return m.skipped
}

// Next blocks until the board prints a temperature line. Other lines are
// skipped. Idle periods on the port are waited out; io.EOF means the
// port was closed.
func (m *MCU) Next() (Sample, error) {
	if !m.connected {
		return Sample{}, ErrNotConnected
	}

	for m.scanner.Scan() {
		line := strings.TrimSpace(m.scanner.Text())
		milli, ok := ParseLine(line)
		if !ok {
			m.skipped++
			continue
		}
		return Sample{Line: line, MilliCelsius: milli}, nil
	}

	err := m.scanner.Err()
	if err == nil || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return Sample{}, io.EOF
	}
	return Sample{}, fmt.Errorf("failed to read console: %w", err)
}

// ParseLine decodes a "Temp 25.25 C" console line into milli-degrees.
func ParseLine(line string) (int32, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "Temp" || fields[2] != "C" {
		return 0, false
	}

	value := fields[1]
	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")

	whole, frac, found := strings.Cut(value, ".")
	if !found || whole == "" || frac == "" || len(frac) > 3 {
		return 0, false
	}
	w, err := strconv.ParseUint(whole, 10, 16)
	if err != nil {
		return 0, false
	}
	f, err := strconv.ParseUint(frac, 10, 16)
	if err != nil {
		return 0, false
	}
	for i := len(frac); i < 3; i++ {
		f *= 10
	}

	milli := int32(w)*1000 + int32(f)
	if negative {
		milli = -milli
	}
	return milli, true
}

// FormatMilli renders milli-degrees with two decimals
func FormatMilli(milli int32) string {
	sign := ""
	if milli < 0 {
		sign = "-"
		milli = -milli
	}
	return fmt.Sprintf("%s%d.%02d", sign, milli/1000, milli%1000/10)
}
