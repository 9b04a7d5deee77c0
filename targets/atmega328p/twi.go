//go:build atmega328p

package main

import (
	"device/avr"
	"runtime/interrupt"

	"twibus/core"
)

// twiHandler is called from the TWI vector. It is set once before the
// interrupt is first enabled.
var twiHandler func()

// hwTWI drives the on-chip TWI through its registers.
type hwTWI struct{}

var _ core.TWI = hwTWI{}

func newTWI() hwTWI {
	interrupt.New(avr.IRQ_TWI, func(interrupt.Interrupt) {
		if h := twiHandler; h != nil {
			h()
		}
	})
	return hwTWI{}
}

func (hwTWI) SetBitRate(divider uint8, prescaler uint8) {
	avr.TWBR.Set(divider)
	avr.TWSR.Set(prescaler & 0x03)
}

func (hwTWI) Control(c core.Control) { avr.TWCR.Set(uint8(c)) }

func (hwTWI) ControlBits() core.Control { return core.Control(avr.TWCR.Get()) }

func (hwTWI) Status() uint8 { return avr.TWSR.Get() }

func (hwTWI) Data() uint8 { return avr.TWDR.Get() }

func (hwTWI) SetData(b uint8) { avr.TWDR.Set(b) }

func (hwTWI) SetInterruptHandler(handler func()) {
	state := interrupt.Disable()
	twiHandler = handler
	interrupt.Restore(state)
}
