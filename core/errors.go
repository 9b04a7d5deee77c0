package core

import "errors"

var (
	// ErrNotHeld is returned by session calls made after Release.
	ErrNotHeld = errors.New("twi: bus not held by this session")

	// ErrDeviceBusy signals that the retry policy gave up on a device
	// that kept NACKing its address.
	ErrDeviceBusy = errors.New("twi: device busy")

	// ErrNoDevice signals that no device ACKed a probe.
	ErrNoDevice = errors.New("twi: no such device")

	// ErrDataNACK signals that the device NACKed a written byte.
	ErrDataNACK = errors.New("twi: data NACK received")

	// ErrUnexpectedStatus is the class of StatusError.
	ErrUnexpectedStatus = errors.New("twi: unexpected status")

	ErrAddress      = errors.New("twi: address out of 7-bit range")
	ErrBitRate      = errors.New("twi: bus speed not reachable from CPU clock")
	ErrNoPeripheral = errors.New("twi: no peripheral")
)

// StatusError reports a status code the state machine does not expect
// after the given operation.
type StatusError struct {
	Op     string
	Addr   Address
	Status Status
}

func (e *StatusError) Error() string {
	return "twi: " + e.Op + " to " + hex8(uint8(e.Addr)) + ": unexpected status " + hex8(uint8(e.Status)) + " (" + e.Status.String() + ")"
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// BusyError is returned when a START sequence is abandoned after the
// retry policy's attempt budget.
type BusyError struct {
	Addr     Address
	Attempts int
	Last     Status
}

func (e *BusyError) Error() string {
	return "twi: device " + hex8(uint8(e.Addr)) + " busy after " + itoa(e.Attempts) + " attempts (" + e.Last.String() + ")"
}

func (e *BusyError) Unwrap() error {
	return ErrDeviceBusy
}
