package core

// HandleInterrupt is the transfer-complete interrupt handler. It fires
// once per finished hardware phase (START, address, byte out, byte in).
//
// It latches the status and, for read phases, the received byte, masks
// the interrupt enable so the level-triggered line stays quiet until the
// next phase is started, and notifies the waiting session. It never
// blocks and never touches the bus lock.
func (b *Bus) HandleInterrupt() {
	state := disableInterrupts()

	p := phase{status: Status(b.hw.Status() & StatusMask)}
	if b.readPhase.Load() {
		p.data = b.hw.Data()
	}

	// Writing TWINT as 0 leaves the flag set, so no new phase starts here.
	b.hw.Control(b.hw.ControlBits() &^ (TWINT | TWIE | TWSTA | TWSTO))

	woken := false
	waiting := b.waiting.Load() != nil
	if waiting {
		woken = b.note.give(p)
	}

	restoreInterrupts(state)

	if !waiting {
		// Reported by the next Acquire; no output from interrupt context.
		b.lastSpurious.Store(uint32(p.status))
		b.spurious.Add(1)
		return
	}
	if woken {
		yieldFromISR()
	}
}
