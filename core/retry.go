package core

import "time"

// RetryPolicy governs how a START sequence is repeated while the
// addressed device NACKs its address.
//
// The zero value retries forever without pausing, which is what an
// EEPROM-style device finishing an internal write cycle expects.
type RetryPolicy struct {
	// MaxAttempts bounds the number of START sequences. 0 means unbounded.
	MaxAttempts int

	// Backoff returns the pause before retry n (1-based). nil means none.
	Backoff func(attempt int) time.Duration

	// Sleep performs the pause. nil means time.Sleep.
	Sleep func(time.Duration)
}

// next is called after attempt failed. It pauses per the backoff and
// reports whether another attempt is allowed.
func (p RetryPolicy) next(attempt int) bool {
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		return false
	}
	if p.Backoff == nil {
		return true
	}
	d := p.Backoff(attempt)
	if d <= 0 {
		return true
	}
	if p.Sleep != nil {
		p.Sleep(d)
	} else {
		time.Sleep(d)
	}
	return true
}

// ConstantBackoff pauses d before every retry.
func ConstantBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff doubles the pause from base on every retry, capped at max.
func ExponentialBackoff(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt && d < max; i++ {
			d *= 2
		}
		if max > 0 && d > max {
			d = max
		}
		return d
	}
}
