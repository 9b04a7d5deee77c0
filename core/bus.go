// Package core is an interrupt-driven two-wire (I2C) bus master.
// A Bus serializes tasks on one TWI peripheral; each holder drives the
// START/STOP state machine through a Session while the transfer engine
// wakes it from the interrupt handler.
package core

import (
	"sync"
	"sync/atomic"
)

const (
	DefaultCPUFrequency = 16000000 // Hz
	DefaultFrequency    = 100000   // Hz, standard mode
)

// Config holds bus configuration
type Config struct {
	// Name identifies the bus in String and debug output.
	Name string

	// CPUFrequency is the peripheral clock in Hz.
	CPUFrequency uint32

	// Frequency is the SCL frequency in Hz.
	Frequency uint32

	// Retry governs START retries while a device NACKs its address.
	Retry RetryPolicy

	// LenientStatus treats unexpected status codes as success instead of
	// returning a StatusError.
	LenientStatus bool
}

// DefaultConfig returns a 100 kHz bus on a 16 MHz part that retries busy
// devices forever.
func DefaultConfig() Config {
	return Config{
		Name:         "twi0",
		CPUFrequency: DefaultCPUFrequency,
		Frequency:    DefaultFrequency,
	}
}

// Stats counts bus activity since creation.
type Stats struct {
	Sessions uint32 // Acquire calls granted
	Retries  uint32 // START sequences repeated after an address NACK
	Spurious uint32 // Interrupts with no session waiting
}

// Bus is one TWI peripheral and the lock that serializes its users.
type Bus struct {
	hw  TWI
	cfg Config

	mu sync.Mutex

	// waiting is the session the engine notifies. Set by Acquire,
	// cleared by Release.
	waiting atomic.Pointer[Session]

	// readPhase tells the engine to latch the data register.
	readPhase atomic.Bool

	note notifier

	trace TraceRing

	sessions atomic.Uint32
	retries  atomic.Uint32
	spurious atomic.Uint32

	lastSpurious atomic.Uint32 // status latched by the last spurious interrupt
	reported     uint32        // spurious count already logged, guarded by mu
}

// NewBus programs the clock divider and installs the interrupt handler.
// It must run once per peripheral before any other call.
func NewBus(hw TWI, cfg Config) (*Bus, error) {
	if hw == nil {
		return nil, ErrNoPeripheral
	}
	if cfg.CPUFrequency == 0 {
		cfg.CPUFrequency = DefaultCPUFrequency
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.Name == "" {
		cfg.Name = "twi"
	}

	divider, prescaler, err := BitRate(cfg.CPUFrequency, cfg.Frequency)
	if err != nil {
		return nil, err
	}

	b := &Bus{hw: hw, cfg: cfg}
	hw.SetBitRate(divider, prescaler)
	hw.SetInterruptHandler(b.HandleInterrupt)
	return b, nil
}

// BitRate computes TWBR and the TWPS prescaler select for an SCL
// frequency: SCL = CPU / (16 + 2*TWBR*4^TWPS). The smallest prescaler
// that fits TWBR in a byte wins.
func BitRate(cpuHz, sclHz uint32) (divider uint8, prescaler uint8, err error) {
	if sclHz == 0 || cpuHz/sclHz < 16 {
		return 0, 0, ErrBitRate
	}
	base := cpuHz/sclHz - 16
	for ps := uint8(0); ps < 4; ps++ {
		twbr := base / (uint32(2) << (2 * ps))
		if twbr <= 0xFF {
			return uint8(twbr), ps, nil
		}
	}
	return 0, 0, ErrBitRate
}

// SetSpeed reprograms the SCL frequency. It waits for the current owner
// to release the bus.
func (b *Bus) SetSpeed(hz uint32) error {
	divider, prescaler, err := BitRate(b.cfg.CPUFrequency, hz)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.hw.SetBitRate(divider, prescaler)
	b.cfg.Frequency = hz
	return nil
}

// Frequency returns the configured SCL frequency in Hz.
func (b *Bus) Frequency() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.Frequency
}

func (b *Bus) String() string {
	return b.cfg.Name
}

// Acquire blocks until the bus is free and returns a session owning it.
// The address is masked to 7 bits. Acquire never fails and has no
// timeout; the lock is not reentrant.
func (b *Bus) Acquire(addr Address) *Session {
	b.mu.Lock()

	s := &Session{
		bus:  b,
		addr: addr & 0x7F,
		sla:  uint8(addr&0x7F) << 1,
		held: true,
	}
	b.note.reset()
	b.waiting.Store(s)
	b.hw.Control(TWEN | TWIE)
	b.sessions.Add(1)
	b.trace.record(TraceEvent{Kind: EvtAcquire, Addr: s.addr})
	b.reportSpurious()
	return s
}

// reportSpurious logs interrupts that arrived with no session waiting
// since the last report. Caller holds mu.
func (b *Bus) reportSpurious() {
	n := b.spurious.Load()
	if n == b.reported {
		return
	}
	fresh := n - b.reported
	b.reported = n
	if debugEnabled {
		DebugPrintln("[TWI] " + itoa(int(fresh)) + " spurious interrupt(s), last status " + hex8(uint8(b.lastSpurious.Load())))
	}
}

// release is the tail of Session.Release, run with a STOP already sent.
func (b *Bus) release(s *Session) {
	b.hw.Control(TWEN)
	b.waiting.Store(nil)
	b.readPhase.Store(false)
	b.trace.record(TraceEvent{Kind: EvtRelease, Addr: s.addr})
	b.mu.Unlock()
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Sessions: b.sessions.Load(),
		Retries:  b.retries.Load(),
		Spurious: b.spurious.Load(),
	}
}

// Trace returns the bus event ring.
func (b *Bus) Trace() *TraceRing {
	return &b.trace
}
