//go:build !tinygo

package core

import (
	"runtime"
	"sync"
)

// irqState is a placeholder for interrupt state on regular Go
type irqState uintptr

// criticalMu stands in for the global interrupt mask. The simulated
// peripheral calls interrupt handlers from its own goroutine, so masking
// has to exclude them for real.
var criticalMu sync.Mutex

// disableInterrupts enters the critical section. Not reentrant.
func disableInterrupts() irqState {
	criticalMu.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state irqState) {
	criticalMu.Unlock()
}

// yieldFromISR lets a task woken by an interrupt run straight away
func yieldFromISR() {
	runtime.Gosched()
}
