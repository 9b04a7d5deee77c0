package core

import "runtime"

// State is the position of a session in the bus state machine.
type State uint8

const (
	StateIdle         State = iota // no START issued, or STOP sent
	StateStarting                  // START or repeated START on the wire
	StateAddressed                 // address ACKed, direction fixed
	StateRetryBusy                 // address NACKed, STOP pending before retry
	StateTransferring              // at least one data byte clocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateAddressed:
		return "addressed"
	case StateRetryBusy:
		return "retry-busy"
	case StateTransferring:
		return "transferring"
	default:
		return "unknown"
	}
}

// open reports whether a transaction is open: START sent, address
// ACKed, STOP not yet sent.
func (s State) open() bool {
	return s == StateAddressed || s == StateTransferring
}

// Session is the bus owner's handle between Acquire and Release.
// It must only be used by the task that acquired it.
type Session struct {
	bus  *Bus
	addr Address
	sla  uint8 // addr << 1

	state State
	dir   Direction // valid while state.open()
	held  bool

	attempts int // START sequences used by the last open
}

// Address returns the device address this session talks to.
func (s *Session) Address() Address { return s.addr }

// State returns the current state machine position.
func (s *Session) State() State { return s.state }

// Direction returns the direction of the open transaction. It is only
// meaningful while a transaction is open.
func (s *Session) Direction() Direction { return s.dir }

// Attempts returns how many START sequences the last addressing took.
func (s *Session) Attempts() int { return s.attempts }

// Send clocks one byte out to the device. The first call after Acquire
// issues START + SLA+W. After a Receive it issues a repeated START +
// SLA+W instead, switching direction without giving up the bus.
func (s *Session) Send(v uint8) error {
	if !s.held {
		return ErrNotHeld
	}
	if err := s.direct(Write, s.bus.cfg.Retry); err != nil {
		return err
	}

	b := s.bus
	b.hw.SetData(v)
	p := s.clock(0, false)
	s.state = StateTransferring
	b.trace.record(TraceEvent{Kind: EvtWrite, Addr: s.addr, Value: v, Status: p.status})

	switch {
	case p.status == StatusMTDataAck || b.cfg.LenientStatus:
		return nil
	case p.status == StatusMTDataNack:
		return ErrDataNACK
	default:
		return s.unexpected("write", p.status)
	}
}

// Receive clocks one byte in from the device. ack must be false for the
// last byte of a read sequence so the device releases SDA, true for all
// others. The first read after Acquire or after a Send issues (repeated)
// START + SLA+R.
func (s *Session) Receive(ack bool) (uint8, error) {
	if !s.held {
		return 0, ErrNotHeld
	}
	if err := s.direct(Read, s.bus.cfg.Retry); err != nil {
		return 0, err
	}

	b := s.bus
	var ctrl Control
	want := StatusMRDataNack
	if ack {
		ctrl = TWEA
		want = StatusMRDataAck
	}
	p := s.clock(ctrl, true)
	s.state = StateTransferring
	b.trace.record(TraceEvent{Kind: EvtRead, Addr: s.addr, Value: p.data, Ack: ack, Status: p.status})

	if p.status != want && !b.cfg.LenientStatus {
		return p.data, s.unexpected("read", p.status)
	}
	return p.data, nil
}

// Probe addresses the device once in write direction. ErrNoDevice means
// nothing ACKed the address; a START that did not complete is reported
// as a StatusError. A device busy with an internal cycle NACKs like an
// absent one, so it probes as ErrNoDevice too. On success the
// transaction stays open until Release.
func (s *Session) Probe() error {
	if !s.held {
		return ErrNotHeld
	}
	if s.state.open() {
		return nil
	}
	err := s.start(Write, RetryPolicy{MaxAttempts: 1})
	if busy, ok := err.(*BusyError); ok {
		if busy.Last.addressNack() {
			return ErrNoDevice
		}
		// START never confirmed: a bus fault, not an empty address.
		return s.unexpected("start", busy.Last)
	}
	return err
}

// Release ends the session: STOP if a transaction is open, interrupt
// source off, lock handed to the next waiter. Calling it again is a
// no-op.
func (s *Session) Release() {
	if !s.held {
		return
	}
	if s.state != StateIdle {
		s.stop()
	}
	s.held = false
	s.bus.release(s)
}

// direct makes sure a transaction is open in direction dir.
func (s *Session) direct(dir Direction, policy RetryPolicy) error {
	if s.state.open() && s.dir == dir {
		return nil
	}
	return s.start(dir, policy)
}

// start runs the START + address sequence until the device ACKs. On a
// held bus the peripheral emits a repeated START. An address NACK means
// the device is busy: send STOP, wait for the bus to be released and go
// again from a fresh START, for as long as the policy allows.
func (s *Session) start(dir Direction, policy RetryPolicy) error {
	b := s.bus
	var last Status

	for attempt := 1; ; attempt++ {
		s.attempts = attempt
		s.state = StateStarting

		p := s.clock(TWSTA, false)
		last = p.status
		if p.status.started() {
			kind := EvtStart
			if p.status == StatusRepStart {
				kind = EvtRepStart
			}
			b.trace.record(TraceEvent{Kind: kind, Addr: s.addr, Status: p.status})

			sla := s.sla | uint8(dir)
			b.hw.SetData(sla)
			p = s.clock(0, dir == Read)
			last = p.status
			b.trace.record(TraceEvent{Kind: EvtAddress, Addr: s.addr, Value: sla, Status: p.status})

			switch {
			case p.status.addressAck(dir):
				s.state = StateAddressed
				s.dir = dir
				return nil
			case p.status.addressNack():
				s.state = StateRetryBusy
				b.trace.record(TraceEvent{Kind: EvtBusy, Addr: s.addr, Status: p.status})
				s.stop()
			default:
				if b.cfg.LenientStatus {
					s.state = StateAddressed
					s.dir = dir
					return nil
				}
				s.stop()
				return s.unexpected("address", p.status)
			}
		} else {
			// START not confirmed: try again without a STOP.
			b.trace.record(TraceEvent{Kind: EvtStartFailed, Addr: s.addr, Status: p.status})
		}

		if !policy.next(attempt) {
			if s.state != StateIdle {
				s.stop()
			}
			return &BusyError{Addr: s.addr, Attempts: attempt, Last: last}
		}
		b.retries.Add(1)
		if debugEnabled {
			DebugPrintln("[TWI] " + hex8(uint8(s.addr)) + " " + last.String() + ", retry " + itoa(attempt))
		}
	}
}

// clock starts one hardware phase with the interrupt enabled and blocks
// until the transfer engine reports it complete.
func (s *Session) clock(ctrl Control, read bool) phase {
	b := s.bus

	state := disableInterrupts()
	b.note.reset()
	b.readPhase.Store(read)
	b.hw.Control(TWINT | TWEN | TWIE | ctrl)
	restoreInterrupts(state)

	return b.note.take()
}

// stop sends STOP and waits until the peripheral has released the bus.
// STOP completion raises no interrupt, so this polls TWSTO.
func (s *Session) stop() {
	b := s.bus
	b.hw.Control(TWINT | TWEN | TWSTO)
	for b.hw.ControlBits()&TWSTO != 0 {
		runtime.Gosched()
	}
	s.state = StateIdle
	b.trace.record(TraceEvent{Kind: EvtStop, Addr: s.addr})
}

func (s *Session) unexpected(op string, st Status) error {
	return &StatusError{Op: op, Addr: s.addr, Status: st}
}
