package core

import "tinygo.org/x/drivers"

var _ drivers.I2C = (*Bus)(nil)

// Tx performs one complete transaction with the device at addr: w is
// written, then r is read after a repeated START, the last byte NACKed,
// then STOP. With both buffers empty it only probes the address.
//
// Tx implements tinygo.org/x/drivers.I2C so TinyGo device drivers can
// share the bus with tasks using sessions directly.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return ErrAddress
	}

	s := b.Acquire(Address(addr))
	defer s.Release()

	if len(w) == 0 && len(r) == 0 {
		return s.Probe()
	}

	for _, v := range w {
		if err := s.Send(v); err != nil {
			return err
		}
	}

	for i := range r {
		v, err := s.Receive(i < len(r)-1)
		if err != nil {
			return err
		}
		r[i] = v
	}

	return nil
}

// Scan probes every non-reserved 7-bit address and returns the ones
// that ACKed. Each address gets a single attempt, so a device in the
// middle of an internal write cycle is left out.
func (b *Bus) Scan() []Address {
	var found []Address
	for a := uint16(0x08); a <= 0x77; a++ {
		if err := b.Tx(a, nil, nil); err == nil {
			found = append(found, Address(a))
		}
	}
	return found
}
