package core

// Address is a 7-bit I2C device address.
type Address uint8

// Direction is the R/W bit appended to the address byte.
type Direction uint8

const (
	Write Direction = 0
	Read  Direction = 1
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// Control mirrors the bits of the TWI control register (TWCR).
type Control uint8

const (
	TWIE  Control = 1 << 0 // interrupt enable
	TWEN  Control = 1 << 2 // peripheral enable
	TWWC  Control = 1 << 3 // write collision flag
	TWSTO Control = 1 << 4 // STOP condition
	TWSTA Control = 1 << 5 // START condition
	TWEA  Control = 1 << 6 // acknowledge received byte
	TWINT Control = 1 << 7 // phase complete flag, written as 1 to clear
)

// TWI is the two-wire peripheral contract the bus drives.
//
// Writing a Control value with TWINT set clears the completion flag and
// starts the phase selected by TWSTA, TWSTO and TWEA. When the phase
// completes the peripheral raises TWINT and, if TWIE is set, invokes the
// interrupt handler. A STOP does not raise TWINT: the peripheral clears
// TWSTO once the bus is released.
type TWI interface {
	// SetBitRate programs the clock divider (TWBR) and prescaler select (TWPS).
	SetBitRate(divider uint8, prescaler uint8)

	// Control writes the control register.
	Control(c Control)

	// ControlBits reads the control register.
	ControlBits() Control

	// Status returns the raw status register, prescaler bits included.
	Status() uint8

	// Data returns the last byte shifted in.
	Data() uint8

	// SetData loads the byte to shift out in the next phase.
	SetData(b uint8)

	// SetInterruptHandler installs the transfer-complete handler.
	SetInterruptHandler(handler func())
}
