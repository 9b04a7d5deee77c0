package i2cconn

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"twibus/core"
	"twibus/core/sim"
)

func newTestBus(t *testing.T) (*Bus, *sim.Peripheral) {
	t.Helper()
	p := sim.New()
	p.Attach(sim.DS3232Address, sim.NewDS3232())
	cb, err := core.NewBus(p, core.DefaultConfig())
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	return New(cb), p
}

func TestTxThroughRecorder(t *testing.T) {
	b, _ := newTestBus(t)
	rec := &i2ctest.Record{Bus: b}

	d := i2ctest.IO{Addr: 0x68, W: []byte{0x11}}
	r := make([]byte, 2)
	if err := rec.Tx(d.Addr, d.W, r); err != nil {
		t.Fatalf("Tx failed: %v", err)
	}

	if len(rec.Ops) != 1 {
		t.Fatalf("Expected 1 recorded op, got %d", len(rec.Ops))
	}
	op := rec.Ops[0]
	if op.Addr != 0x68 || !bytes.Equal(op.W, []byte{0x11}) || !bytes.Equal(op.R, []byte{0x19, 0x40}) {
		t.Errorf("Unexpected op %+v", op)
	}
}

func TestDevTx(t *testing.T) {
	b, _ := newTestBus(t)
	dev := b.Dev(0x68)

	r := make([]byte, 3)
	if err := dev.Tx([]byte{0x00}, r); err != nil {
		t.Fatalf("Dev.Tx failed: %v", err)
	}
	if !bytes.Equal(r, []byte{0x56, 0x34, 0x12}) {
		t.Errorf("Expected seconds/minutes/hours 56 34 12, got % x", r)
	}
	if got := dev.String(); got != "twi0(104)" {
		t.Errorf("Unexpected device name %q", got)
	}
}

func TestTxWrapsErrors(t *testing.T) {
	b, _ := newTestBus(t)

	err := b.Tx(0x51, nil, nil)
	if !errors.Is(err, core.ErrNoDevice) {
		t.Errorf("Expected wrapped ErrNoDevice, got %v", err)
	}
}

func TestSetSpeed(t *testing.T) {
	b, p := newTestBus(t)

	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	if divider, _ := p.BitRate(); divider != 12 {
		t.Errorf("Expected TWBR=12 for 400kHz, got %d", divider)
	}

	if err := b.SetSpeed(physic.MicroHertz); !errors.Is(err, core.ErrBitRate) {
		t.Errorf("Expected ErrBitRate for sub-hertz speed, got %v", err)
	}
	if err := b.SetSpeed(10 * physic.MegaHertz); !errors.Is(err, core.ErrBitRate) {
		t.Errorf("Expected ErrBitRate for 10MHz, got %v", err)
	}
}

func TestScan(t *testing.T) {
	b, _ := newTestBus(t)

	found, err := b.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(found) != 1 || found[0] != 0x68 {
		t.Errorf("Expected [0x68], got %v", found)
	}
}

func TestClose(t *testing.T) {
	b, _ := newTestBus(t)

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close(); err != ErrClosed {
		t.Errorf("Expected ErrClosed on second Close, got %v", err)
	}
	if err := b.Tx(0x68, []byte{0x11}, make([]byte, 2)); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Tx, got %v", err)
	}
}
