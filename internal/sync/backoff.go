package sync

import "time"

// backoff yields exponentially growing delays: min, 2*min, 4*min, ...
// capped at max.
type backoff struct {
	min, max time.Duration
	attempt  int
}

func newBackoff(min, max time.Duration) *backoff {
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	return &backoff{min: min, max: max}
}

// Next returns the delay before the next attempt.
func (b *backoff) Next() time.Duration {
	d := b.min << uint(b.attempt)
	if d <= 0 || d > b.max {
		d = b.max
	} else {
		b.attempt++
	}
	return d
}

// Reset starts the sequence over after a successful connection.
func (b *backoff) Reset() {
	b.attempt = 0
}
