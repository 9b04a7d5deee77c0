//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// yieldFromISR is a no-op: the scheduler picks up the woken goroutine
// when the handler returns.
func yieldFromISR() {}
