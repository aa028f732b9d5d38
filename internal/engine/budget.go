package engine

import "time"

// PerIterationLimit divides what is left of a total budget among the grid
// points still to be processed.
//
// processed counts grid points handled so far including the current one.
// The result is never negative, and when the current point is the last one it
// receives the whole remaining budget.
func PerIterationLimit(total, elapsed time.Duration, totalPoints, processed int) time.Duration {
	remaining := total - elapsed
	if remaining < 0 {
		remaining = 0
	}
	remainingIters := totalPoints - (processed - 1)
	if remainingIters < 1 {
		remainingIters = 1
	}
	return remaining / time.Duration(remainingIters)
}

// BudgetAllocator tracks one enumeration run's total budget.
//
// The budget clock starts when the allocator is created, so time spent on
// skipped points and bookkeeping is charged to the budget as well.
type BudgetAllocator struct {
	total       time.Duration
	totalPoints int
	clock       Clock
	start       time.Time
}

// NewBudgetAllocator starts a budget of total for totalPoints grid points.
func NewBudgetAllocator(total time.Duration, totalPoints int, clock Clock) *BudgetAllocator {
	return &BudgetAllocator{
		total:       total,
		totalPoints: totalPoints,
		clock:       clock,
		start:       clock.Now(),
	}
}

// Limit returns the limit for the solve at grid point number processed
// (1-based). It is recomputed from the clock on every call.
func (b *BudgetAllocator) Limit(processed int) time.Duration {
	return PerIterationLimit(b.total, since(b.clock, b.start), b.totalPoints, processed)
}

// Remaining returns the unspent budget, never negative.
func (b *BudgetAllocator) Remaining() time.Duration {
	r := b.total - since(b.clock, b.start)
	if r < 0 {
		return 0
	}
	return r
}
