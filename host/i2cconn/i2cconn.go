// Package i2cconn exposes a core.Bus as a periph.io I²C bus, so periph
// device drivers and host tooling can run on the interrupt-driven bus.
package i2cconn

import (
	"errors"
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"twibus/core"
)

// ErrClosed is returned by calls on a closed Bus.
var ErrClosed = errors.New("i2cconn: bus closed")

// Bus implements i2c.BusCloser on top of a core.Bus.
type Bus struct {
	bus    *core.Bus
	closed atomic.Bool
}

var _ i2c.BusCloser = (*Bus)(nil)

// New wraps bus.
func New(bus *core.Bus) *Bus {
	return &Bus{bus: bus}
}

func (b *Bus) String() string {
	return b.bus.String()
}

// Tx runs one transaction as a single bus session.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := b.bus.Tx(addr, w, r); err != nil {
		return fmt.Errorf("%s: tx to %#02x: %w", b.bus, addr, err)
	}
	return nil
}

// SetSpeed reprograms SCL. Frequencies below 1 Hz or above what fits a
// uint32 are rejected.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if b.closed.Load() {
		return ErrClosed
	}
	hz := f / physic.Hertz
	if hz <= 0 || hz > 0xFFFFFFFF {
		return fmt.Errorf("%s: invalid speed %s: %w", b.bus, f, core.ErrBitRate)
	}
	if err := b.bus.SetSpeed(uint32(hz)); err != nil {
		return fmt.Errorf("%s: set speed %s: %w", b.bus, f, err)
	}
	return nil
}

// Close detaches the adapter. The underlying core.Bus stays usable.
func (b *Bus) Close() error {
	if b.closed.Swap(true) {
		return ErrClosed
	}
	return nil
}

// Dev returns a periph device handle for addr on this bus.
func (b *Bus) Dev(addr uint16) *i2c.Dev {
	return &i2c.Dev{Bus: b, Addr: addr}
}

// Scan lists the addresses that answer a probe.
func (b *Bus) Scan() ([]i2c.Addr, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	var out []i2c.Addr
	for _, a := range b.bus.Scan() {
		out = append(out, i2c.Addr(a))
	}
	return out, nil
}
