// Package sim emulates an ATmega-style TWI master peripheral and the
// slave devices on its bus, so the interrupt-driven bus can run on a
// host. Phases complete on their own goroutine and call the installed
// interrupt handler from there, racing the waiting task as the real
// interrupt would.
package sim

import (
	"sync"
	"time"

	"twibus/core"
)

// Device is a slave on the simulated bus. Calls are serialized by the
// peripheral.
type Device interface {
	// Address is called when the device's address is clocked out after a
	// START. Returning false NACKs the address.
	Address(read bool) bool

	// Write receives one byte from the master and returns the ACK bit.
	Write(b uint8) bool

	// Read returns the next byte for the master. ack is what the master
	// answers after it.
	Read(ack bool) uint8

	// Stop is called on STOP after the device was addressed.
	Stop()
}

type op uint8

const (
	opStart op = iota
	opByte
)

// Peripheral implements core.TWI.
type Peripheral struct {
	mu sync.Mutex

	ctrl    core.Control
	status  uint8
	data    uint8
	divider uint8
	ps      uint8
	handler func()

	devices map[uint8]Device

	held       bool   // START sent, no STOP yet
	addressing bool   // next byte out is SLA+R/W
	target     Device // device addressed since the last START
	active     bool   // target ACKed its address
	reading    bool

	latency time.Duration
	events  []Event
	phases  int
}

// New returns an idle peripheral with no devices.
func New() *Peripheral {
	return &Peripheral{
		devices: make(map[uint8]Device),
		status:  uint8(core.StatusNoInfo),
	}
}

// Attach puts a device on the bus at a 7-bit address.
func (p *Peripheral) Attach(addr uint8, d Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devices[addr&0x7F] = d
}

// SetLatency delays every phase completion by d.
func (p *Peripheral) SetLatency(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency = d
}

// BitRate returns the programmed divider and prescaler select.
func (p *Peripheral) BitRate() (divider uint8, prescaler uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.divider, p.ps
}

// Events returns a copy of the bus event log.
func (p *Peripheral) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ResetEvents clears the bus event log.
func (p *Peripheral) ResetEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// Phases returns how many interrupt-raising phases have completed.
func (p *Peripheral) Phases() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phases
}

func (p *Peripheral) SetBitRate(divider uint8, prescaler uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.divider = divider
	p.ps = prescaler & 0x03
	p.status = p.status&^0x03 | p.ps
}

func (p *Peripheral) SetInterruptHandler(handler func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = handler
}

func (p *Peripheral) ControlBits() core.Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl
}

func (p *Peripheral) Status() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Peripheral) Data() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

func (p *Peripheral) SetData(b uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = b
}

// Control writes the control register. A write with TWINT and TWEN set
// starts a phase; anything else only updates the enable bits.
func (p *Peripheral) Control(c core.Control) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c&core.TWINT == 0 || c&core.TWEN == 0 {
		p.ctrl = p.ctrl&core.TWINT | c&^core.TWINT
		return
	}

	// Writing one clears the flag.
	p.ctrl = c &^ core.TWINT

	switch {
	case c&core.TWSTO != 0:
		p.stopLocked()
		go p.finishStop(p.latency)
	case c&core.TWSTA != 0:
		go p.complete(opStart, false, p.latency)
	default:
		go p.complete(opByte, c&core.TWEA != 0, p.latency)
	}
}

func (p *Peripheral) stopLocked() {
	if p.target != nil {
		p.target.Stop()
	}
	p.events = append(p.events, Event{Kind: EvStop})
	p.held = false
	p.addressing = false
	p.target = nil
	p.active = false
}

func (p *Peripheral) finishStop(latency time.Duration) {
	if latency > 0 {
		time.Sleep(latency)
	}
	p.mu.Lock()
	p.ctrl &^= core.TWSTO
	p.mu.Unlock()
}

// complete runs one phase against the devices, then raises TWINT and the
// interrupt if it is enabled.
func (p *Peripheral) complete(o op, ack bool, latency time.Duration) {
	if latency > 0 {
		time.Sleep(latency)
	}

	p.mu.Lock()
	var st core.Status
	switch {
	case o == opStart:
		st = core.StatusStart
		kind := EvStart
		if p.held {
			st = core.StatusRepStart
			kind = EvRepStart
		}
		if p.target != nil && p.active {
			// A repeated START ends the previous transfer for the slave.
			p.target.Stop()
		}
		p.held = true
		p.addressing = true
		p.target = nil
		p.active = false
		p.events = append(p.events, Event{Kind: kind})

	case p.addressing:
		p.addressing = false
		addr := p.data >> 1
		read := p.data&0x01 != 0
		d, ok := p.devices[addr]
		acked := ok && d.Address(read)
		p.target = d
		p.active = acked
		p.reading = read
		p.events = append(p.events, Event{Kind: EvAddress, Addr: addr, Read: read, Ack: acked})
		switch {
		case acked && read:
			st = core.StatusMRSLAAck
		case acked:
			st = core.StatusMTSLAAck
		case read:
			st = core.StatusMRSLANack
		default:
			st = core.StatusMTSLANack
		}

	case p.active && !p.reading:
		acked := p.target.Write(p.data)
		p.events = append(p.events, Event{Kind: EvWrite, Value: p.data, Ack: acked})
		st = core.StatusMTDataNack
		if acked {
			st = core.StatusMTDataAck
		}

	case p.active && p.reading:
		p.data = p.target.Read(ack)
		p.events = append(p.events, Event{Kind: EvRead, Value: p.data, Ack: ack})
		st = core.StatusMRDataNack
		if ack {
			st = core.StatusMRDataAck
		}

	default:
		st = core.StatusBusError
		p.events = append(p.events, Event{Kind: EvError})
	}

	p.status = uint8(st) | p.ps
	p.ctrl |= core.TWINT
	p.phases++
	fire := p.ctrl&core.TWIE != 0
	h := p.handler
	p.mu.Unlock()

	if fire && h != nil {
		h()
	}
}
