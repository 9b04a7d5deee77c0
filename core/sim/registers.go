package sim

import "fmt"

// DS3232 register layout used by the presets.
const (
	DS3232Address = 0x68
	DS3232RegTemp = 0x11
)

// Registers is a slave with a 256-byte register file and an auto
// incrementing register pointer: the first byte written after SLA+W sets
// the pointer, further bytes are stored, reads return from the pointer.
//
// It can pretend to be busy for a number of address phases, and records
// protocol violations a real device would trip over.
type Registers struct {
	Mem [256]uint8

	busyFor int
	nacks   int

	ptr        uint8
	expectPtr  bool
	reading    bool
	readDone   bool // last read was NACKed
	lastAck    bool
	violations []string
}

// NewRegisters returns a register file device.
func NewRegisters() *Registers {
	return &Registers{}
}

// NewDS3232 returns a register file preloaded with a 25.25 C temperature
// (0x19, 0x40) and a BCD date of 2015-09-23 12:34:56.
func NewDS3232() *Registers {
	r := NewRegisters()
	copy(r.Mem[0x00:], []uint8{0x56, 0x34, 0x12, 0x04, 0x23, 0x09, 0x15})
	r.Mem[DS3232RegTemp] = 0x19
	r.Mem[DS3232RegTemp+1] = 0x40
	return r
}

// SetBusy makes the device NACK its next n address phases.
func (r *Registers) SetBusy(n int) {
	r.busyFor = n
}

// NACKs returns how many address phases were NACKed while busy.
func (r *Registers) NACKs() int {
	return r.nacks
}

// Violations returns the protocol violations seen so far.
func (r *Registers) Violations() []string {
	return append([]string(nil), r.violations...)
}

func (r *Registers) Address(read bool) bool {
	if r.busyFor > 0 {
		r.busyFor--
		r.nacks++
		return false
	}
	r.reading = read
	r.readDone = false
	r.expectPtr = !read
	return true
}

func (r *Registers) Write(b uint8) bool {
	if r.reading {
		r.violations = append(r.violations, "write in read mode")
		return false
	}
	if r.expectPtr {
		r.ptr = b
		r.expectPtr = false
		return true
	}
	r.Mem[r.ptr] = b
	r.ptr++
	return true
}

func (r *Registers) Read(ack bool) uint8 {
	if !r.reading {
		r.violations = append(r.violations, "read in write mode")
	}
	if r.readDone {
		r.violations = append(r.violations, fmt.Sprintf("read at %#02x after NACK", r.ptr))
	}
	v := r.Mem[r.ptr]
	r.ptr++
	r.lastAck = ack
	r.readDone = !ack
	return v
}

func (r *Registers) Stop() {
	if r.reading && r.lastAck {
		r.violations = append(r.violations, "STOP after a read that was ACKed")
	}
	r.reading = false
	r.readDone = false
	r.lastAck = false
	r.expectPtr = false
}
