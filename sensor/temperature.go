// Package sensor reads a DS3231/DS3232 real-time clock sitting on a
// core.Bus: the die temperature through a raw session, and the full
// driver through the bus's drivers.I2C side.
package sensor

import (
	"strconv"

	"twibus/core"
)

const (
	// Address is the fixed 7-bit address of the DS3231/DS3232.
	Address core.Address = 0x68

	// RegTemp is the temperature MSB register; the LSB follows at 0x12.
	RegTemp = 0x11
)

// Reading is the raw 10-bit temperature: MSB is whole degrees (two's
// complement), bits 7:6 of LSB are quarter degrees.
type Reading struct {
	MSB uint8
	LSB uint8
}

// ReadTemperature runs the two-byte temperature read on its own session:
// write the register pointer, repeated START, read MSB with ACK, read LSB
// with NACK, STOP.
func ReadTemperature(bus *core.Bus, addr core.Address) (Reading, error) {
	s := bus.Acquire(addr)
	defer s.Release()

	if err := s.Send(RegTemp); err != nil {
		return Reading{}, err
	}
	msb, err := s.Receive(true)
	if err != nil {
		return Reading{}, err
	}
	lsb, err := s.Receive(false)
	if err != nil {
		return Reading{}, err
	}
	return Reading{MSB: msb, LSB: lsb}, nil
}

// Quarters returns the temperature in units of 0.25 C.
func (r Reading) Quarters() int {
	return int(int16(uint16(r.MSB)<<8|uint16(r.LSB)) >> 6)
}

// Hundredths returns the fractional part the way the device reports it:
// 25 * (LSB >> 6).
func (r Reading) Hundredths() int {
	return 25 * int(r.LSB>>6)
}

// MilliCelsius returns the temperature in 1/1000 C, matching the ds3231
// driver's ReadTemperature.
func (r Reading) MilliCelsius() int32 {
	return int32(r.Quarters()) * 250
}

// String formats the reading as degrees with two decimals, e.g. "25.25".
func (r Reading) String() string {
	q := r.Quarters()
	sign := ""
	if q < 0 {
		sign = "-"
		q = -q
	}
	frac := strconv.Itoa(q % 4 * 25)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.Itoa(q/4) + "." + frac
}

// Line is the console line printed for a reading.
func (r Reading) Line() string {
	return "Temp " + r.String() + " C"
}
