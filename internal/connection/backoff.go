package connection

import (
	"math/rand"
	"time"
)

// jitterFraction is the maximum random addition to a computed delay,
// expressed as a fraction of that delay. Jitter desynchronizes clients that
// lost connectivity at the same moment so they do not reconnect in a storm.
const jitterFraction = 0.3

// Scheduler computes reconnection delays and decides when retries stop.
type Scheduler struct {
	interval    time.Duration
	maxDelay    time.Duration
	maxAttempts int
	jitter      bool
}

// NewScheduler creates a scheduler. attempt 0 waits interval, each further
// attempt doubles the delay up to maxDelay.
func NewScheduler(interval, maxDelay time.Duration, maxAttempts int, jitter bool) *Scheduler {
	return &Scheduler{
		interval:    interval,
		maxDelay:    maxDelay,
		maxAttempts: maxAttempts,
		jitter:      jitter,
	}
}

// Delay returns the wait before the given attempt (0-based):
// min(interval * 2^attempt, maxDelay), plus uniform(0, 0.3*delay) when
// jitter is enabled, re-capped at maxDelay.
func (s *Scheduler) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := s.interval
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= s.maxDelay {
			d = s.maxDelay
			break
		}
	}
	if d > s.maxDelay {
		d = s.maxDelay
	}

	if s.jitter {
		d += time.Duration(rand.Float64() * jitterFraction * float64(d))
		if d > s.maxDelay {
			d = s.maxDelay
		}
	}

	return d
}

// ShouldRetry reports whether another attempt is allowed.
func (s *Scheduler) ShouldRetry(attempt int) bool {
	return attempt < s.maxAttempts
}
