package sim

import "fmt"

// EventKind is a bus condition seen by the simulated peripheral.
type EventKind uint8

const (
	EvStart EventKind = iota
	EvRepStart
	EvAddress
	EvWrite
	EvRead
	EvStop
	EvError
)

// Event is one entry of the bus log.
type Event struct {
	Kind  EventKind
	Addr  uint8 // 7-bit address, EvAddress only
	Read  bool  // direction bit, EvAddress only
	Value uint8 // byte on the wire, EvWrite and EvRead
	Ack   bool  // ACK from the slave (address, write) or the master (read)
}

func (e Event) String() string {
	switch e.Kind {
	case EvStart:
		return "START"
	case EvRepStart:
		return "REP_START"
	case EvAddress:
		dir := "W"
		if e.Read {
			dir = "R"
		}
		return fmt.Sprintf("ADDR %#02x+%s ack %v", e.Addr, dir, e.Ack)
	case EvWrite:
		return fmt.Sprintf("WRITE %#02x ack %v", e.Value, e.Ack)
	case EvRead:
		return fmt.Sprintf("READ %#02x ack %v", e.Value, e.Ack)
	case EvStop:
		return "STOP"
	case EvError:
		return "BUS_ERROR"
	}
	return "unknown event"
}

// Kinds returns just the kinds of events, for compact comparisons.
func Kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
