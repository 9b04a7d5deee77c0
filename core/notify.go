package core

import (
	"runtime"
	"sync/atomic"
)

// phase is what the transfer engine latched for one completed hardware
// phase. It travels inside the notification, so the task can only see it
// after being woken.
type phase struct {
	status Status
	data   uint8
}

func (p phase) pack() uint32 {
	return uint32(p.status)<<8 | uint32(p.data)
}

func unpackPhase(v uint32) phase {
	return phase{status: Status(v >> 8), data: uint8(v)}
}

// notifier is a counting task notification with a one-slot payload.
//
// give is lock-free and safe from interrupt context. take is called by
// exactly one task, the bus owner, and clears the count on return.
type notifier struct {
	count   atomic.Uint32
	payload atomic.Uint32
	parked  atomic.Bool
}

// give publishes p and bumps the count. It reports whether a task was
// parked in take, i.e. whether the caller should yield to it.
func (n *notifier) give(p phase) bool {
	n.payload.Store(p.pack())
	n.count.Add(1)
	return n.parked.Load()
}

// take blocks until at least one give has happened since the last take
// or reset, then consumes all of them and returns the latest payload.
func (n *notifier) take() phase {
	n.parked.Store(true)
	for n.count.Swap(0) == 0 {
		runtime.Gosched()
	}
	n.parked.Store(false)
	return unpackPhase(n.payload.Load())
}

// reset drops notifications nobody waited for.
func (n *notifier) reset() {
	n.count.Store(0)
}

func (n *notifier) pending() uint32 {
	return n.count.Load()
}
