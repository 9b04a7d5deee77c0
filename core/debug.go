package core

import "sync"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, stderr, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// EventKind classifies a bus trace event
type EventKind uint8

const (
	EvtAcquire EventKind = iota + 1
	EvtStart
	EvtRepStart
	EvtStartFailed
	EvtAddress
	EvtBusy
	EvtWrite
	EvtRead
	EvtStop
	EvtRelease
)

func (k EventKind) String() string {
	switch k {
	case EvtAcquire:
		return "ACQUIRE"
	case EvtStart:
		return "START"
	case EvtRepStart:
		return "REP_START"
	case EvtStartFailed:
		return "START_FAILED"
	case EvtAddress:
		return "ADDRESS"
	case EvtBusy:
		return "BUSY"
	case EvtWrite:
		return "WRITE"
	case EvtRead:
		return "READ"
	case EvtStop:
		return "STOP"
	case EvtRelease:
		return "RELEASE"
	default:
		return "UNKNOWN"
	}
}

// TraceEvent captures one bus event for post-mortem analysis
type TraceEvent struct {
	Seq    uint32    // Monotonic event number
	Kind   EventKind // Event type
	Addr   Address   // Device address of the session
	Value  uint8     // Byte written or read, or the address byte
	Ack    bool      // ACK requested on a read
	Status Status    // Status latched for the phase
}

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

// TraceRing keeps the most recent bus events. Only the bus owner records.
type TraceRing struct {
	mu     sync.Mutex
	events [TraceRingSize]TraceEvent
	head   uint8
	seq    uint32
}

func (r *TraceRing) record(evt TraceEvent) {
	r.mu.Lock()
	r.seq++
	evt.Seq = r.seq
	r.events[r.head] = evt
	r.head = (r.head + 1) % TraceRingSize
	r.mu.Unlock()
}

// Snapshot returns the recorded events, oldest first.
func (r *TraceRing) Snapshot() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TraceEvent, 0, TraceRingSize)
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := r.events[(r.head+i)%TraceRingSize]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// Clear empties the ring.
func (r *TraceRing) Clear() {
	r.mu.Lock()
	r.events = [TraceRingSize]TraceEvent{}
	r.head = 0
	r.mu.Unlock()
}

// DumpTrace outputs the trace ring through the debug writer. It prints
// whether or not debug output is enabled.
func DumpTrace(r *TraceRing) {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TWI] === Trace Dump ===")
	for _, evt := range r.Snapshot() {
		line := "[TWI] " + itoa(int(evt.Seq)) + " " + evt.Kind.String() + " addr=" + hex8(uint8(evt.Addr))
		switch evt.Kind {
		case EvtWrite, EvtRead, EvtAddress:
			line += " value=" + hex8(evt.Value)
		}
		if evt.Kind == EvtRead {
			if evt.Ack {
				line += " ack"
			} else {
				line += " nack"
			}
		}
		if evt.Status != 0 {
			line += " status=" + hex8(uint8(evt.Status))
		}
		debugPrintln(line)
	}
	debugPrintln("[TWI] === End Dump ===")
}
