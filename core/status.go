package core

// Status is a TWI status code with the prescaler bits masked off.
type Status uint8

// StatusMask strips the prescaler select bits from the status register.
const StatusMask = 0xF8

// Master-mode status codes, as in avr-libc util/twi.h.
const (
	StatusBusError   Status = 0x00
	StatusStart      Status = 0x08
	StatusRepStart   Status = 0x10
	StatusMTSLAAck   Status = 0x18
	StatusMTSLANack  Status = 0x20
	StatusMTDataAck  Status = 0x28
	StatusMTDataNack Status = 0x30
	StatusArbLost    Status = 0x38
	StatusMRSLAAck   Status = 0x40
	StatusMRSLANack  Status = 0x48
	StatusMRDataAck  Status = 0x50
	StatusMRDataNack Status = 0x58
	StatusNoInfo     Status = 0xF8
)

func (s Status) String() string {
	switch s {
	case StatusBusError:
		return "bus error"
	case StatusStart:
		return "START sent"
	case StatusRepStart:
		return "repeated START sent"
	case StatusMTSLAAck:
		return "SLA+W ACK"
	case StatusMTSLANack:
		return "SLA+W NACK"
	case StatusMTDataAck:
		return "data sent, ACK"
	case StatusMTDataNack:
		return "data sent, NACK"
	case StatusArbLost:
		return "arbitration lost"
	case StatusMRSLAAck:
		return "SLA+R ACK"
	case StatusMRSLANack:
		return "SLA+R NACK"
	case StatusMRDataAck:
		return "data received, ACK"
	case StatusMRDataNack:
		return "data received, NACK"
	case StatusNoInfo:
		return "no info"
	default:
		return "status " + hex8(uint8(s))
	}
}

func (s Status) started() bool {
	return s == StatusStart || s == StatusRepStart
}

func (s Status) addressAck(dir Direction) bool {
	if dir == Read {
		return s == StatusMRSLAAck
	}
	return s == StatusMTSLAAck
}

// addressNack reports a device that did not answer its address: either
// absent or busy with an internal cycle.
func (s Status) addressNack() bool {
	return s == StatusMTSLANack || s == StatusMRSLANack
}
