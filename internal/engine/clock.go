package engine

import "time"

// Clock is the time source for elapsed-time and budget accounting.
// Tests inject testutil.FakeClock for deterministic budgets.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Time carries a monotonic reading, so
// differences are immune to wall-clock jumps.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

func since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
