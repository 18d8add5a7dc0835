package game

import "time"

// TickLimiter paces the update loop at a fixed rate.
type TickLimiter struct {
	interval time.Duration
	next     time.Time
}

// NewTickLimiter creates a limiter for rate ticks per second. A non-positive
// rate disables pacing.
func NewTickLimiter(rate int) *TickLimiter {
	var interval time.Duration
	if rate > 0 {
		interval = time.Second / time.Duration(rate)
	}
	return &TickLimiter{interval: interval}
}

// Interval returns the target tick duration.
func (l *TickLimiter) Interval() time.Duration { return l.interval }

// Next advances the schedule and returns how long to wait from now until the
// next tick should run.
func (l *TickLimiter) Next(now time.Time) time.Duration {
	if l.interval <= 0 {
		l.next = time.Time{}
		return 0
	}

	if l.next.IsZero() {
		l.next = now.Add(l.interval)
	} else {
		l.next = l.next.Add(l.interval)
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := now.Sub(l.next); late > l.interval {
		l.next = now.Add(l.interval)
	}

	if wait := l.next.Sub(now); wait > 0 {
		return wait
	}
	return 0
}
