package engine

import (
	"context"
	"time"

	"github.com/roach88/augeps/internal/oracle"
)

// RunIDGenerator generates unique run identifiers.
// Implemented by UUIDv7Generator (production) and testutil.FixedIDGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// Option configures a pipeline or a single stage.
type Option func(*settings)

type settings struct {
	observer Observer
	clock    Clock
	ids      RunIDGenerator
}

func newSettings(opts []Option) *settings {
	s := &settings{
		observer: NopObserver{},
		clock:    SystemClock{},
		ids:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithObserver installs the instrumentation sink for one run.
// A nil observer is ignored.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock replaces the system clock, typically with testutil.FakeClock.
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRunIDGenerator replaces the UUIDv7 run ID generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

// limitOf maps a configured duration to a solve limit: zero means unset.
func limitOf(d time.Duration) oracle.Limit {
	if d <= 0 {
		return oracle.NoLimit()
	}
	return oracle.Within(d)
}

// solve runs one observed oracle call and measures it. Elapsed falls back to
// the clock when the oracle does not report it.
func (s *settings) solve(ctx context.Context, sub oracle.Subproblem, label string) (oracle.Result, error) {
	s.observer.OnSolveStart(label)
	t0 := s.clock.Now()
	res, err := sub.Solve(ctx)
	if err == nil && res.Elapsed <= 0 {
		res.Elapsed = since(s.clock, t0)
	}
	s.observer.OnSolveEnd(label, res, err)
	return res, err
}
