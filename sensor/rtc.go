package sensor

import (
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"twibus/core"
)

// RTC is the TinyGo ds3231 driver running over a core.Bus. Every driver
// call becomes one bus session through Bus.Tx, so it can share the bus
// with tasks holding raw sessions.
type RTC struct {
	dev ds3231.Device
}

// NewRTC returns the clock at the default address.
func NewRTC(bus *core.Bus) *RTC {
	return &RTC{dev: ds3231.New(bus)}
}

// MilliCelsius reads the die temperature in 1/1000 C.
func (r *RTC) MilliCelsius() (int32, error) {
	return r.dev.ReadTemperature()
}

// Time reads the calendar registers.
func (r *RTC) Time() (time.Time, error) {
	return r.dev.ReadTime()
}

// SetTime writes the calendar registers.
func (r *RTC) SetTime(t time.Time) error {
	return r.dev.SetTime(t)
}

// Thermometer exposes the raw session read as a drivers.Sensor.
type Thermometer struct {
	bus  *core.Bus
	addr core.Address
	last Reading
}

var _ drivers.Sensor = (*Thermometer)(nil)

// NewThermometer returns a thermometer for the device at addr.
func NewThermometer(bus *core.Bus, addr core.Address) *Thermometer {
	return &Thermometer{bus: bus, addr: addr}
}

// Update reads the temperature when asked for it. Other measurements are
// ignored.
func (t *Thermometer) Update(which drivers.Measurement) error {
	if which&drivers.Temperature == 0 {
		return nil
	}
	r, err := ReadTemperature(t.bus, t.addr)
	if err != nil {
		return err
	}
	t.last = r
	return nil
}

// Temperature returns the last updated temperature in 1/1000 C.
func (t *Thermometer) Temperature() int32 {
	return t.last.MilliCelsius()
}

// Reading returns the last raw reading.
func (t *Thermometer) Reading() Reading {
	return t.last
}
