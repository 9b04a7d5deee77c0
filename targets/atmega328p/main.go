//go:build atmega328p

package main

import (
	"machine"
	"time"

	"twibus/core"
	"twibus/sensor"
)

const (
	cpuFrequency = 16000000 // Arduino Uno / Nano crystal
	busSpeed     = 100000
	consoleBaud  = 9600
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: consoleBaud})
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})

	// SDA/SCL idle high
	machine.PC4.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	machine.PC5.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	bus, err := core.NewBus(newTWI(), core.Config{
		Name:         "twi",
		CPUFrequency: cpuFrequency,
		Frequency:    busSpeed,
	})
	if err != nil {
		machine.Serial.Write([]byte("TWI init failed: " + err.Error() + "\r\n"))
		return
	}

	for {
		r, err := sensor.ReadTemperature(bus, sensor.Address)
		if err != nil {
			machine.Serial.Write([]byte("Temp read failed: " + err.Error() + "\r\n"))
		} else {
			machine.Serial.Write([]byte(r.Line() + "\r\n"))
		}
		time.Sleep(time.Second)
	}
}
