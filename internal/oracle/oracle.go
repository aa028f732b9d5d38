package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/augeps/internal/ir"
)

// FreeCardinality requests a model whose scheduled-item count is not fixed.
// Used by the Stage-1 cardinality solve.
const FreeCardinality = -1

// Limit is a solve time limit. The zero value means "no limit".
//
// A bounded limit of zero is valid and distinct from no limit: it is what a
// run receives once its total budget is spent.
type Limit struct {
	d       time.Duration
	bounded bool
}

// NoLimit returns an unbounded limit.
func NoLimit() Limit { return Limit{} }

// Within returns a bounded limit of d. Negative durations are clamped to 0.
func Within(d time.Duration) Limit {
	if d < 0 {
		d = 0
	}
	return Limit{d: d, bounded: true}
}

// Duration returns the limit and whether it is bounded.
func (l Limit) Duration() (time.Duration, bool) { return l.d, l.bounded }

// String implements fmt.Stringer.
func (l Limit) String() string {
	if !l.bounded {
		return "none"
	}
	return l.d.String()
}

// Result is what one Solve reports.
type Result struct {
	// Status is the termination status.
	Status ir.Status

	// Objectives is the full objective vector (maximize-form) of the
	// incumbent. Nil when no incumbent exists.
	Objectives ir.ObjectiveVector

	// Value is the model objective value at the incumbent.
	Value float64

	// Incumbents is the number of feasible solutions found.
	Incumbents int

	// Elapsed is the wall time spent inside the solve.
	Elapsed time.Duration
}

// HasIncumbent reports whether the result carries a usable solution.
func (r Result) HasIncumbent() bool {
	return r.Incumbents > 0 && r.Objectives != nil
}

// Usable reports whether the result is OPTIMAL, or TIME_LIMIT with an
// incumbent. Stage 1 and anchor solves require a usable result.
func (r Result) Usable() bool {
	switch r.Status {
	case ir.StatusOptimal:
		return r.HasIncumbent()
	case ir.StatusTimeLimit:
		return r.HasIncumbent()
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("%s incumbents=%d value=%g elapsed=%s", r.Status, r.Incumbents, r.Value, r.Elapsed)
}

// ModelRequest describes the model a Problem should open.
type ModelRequest struct {
	// Name labels the model in logs and diagnostics.
	Name string

	// Cardinality fixes the number of scheduled items, or is FreeCardinality.
	Cardinality int

	// Objective is maximized.
	Objective Objective

	// Bounded lists the 0-based objective indices that carry ε-constraints
	// (z_j >= eps_j). Their right-hand sides are set with SetEpsilon; until
	// then the constraints are inactive.
	Bounded []int
}

// Problem builds models for one instance.
type Problem interface {
	// NumObjectives returns n_z.
	NumObjectives() int

	// ObjectiveBounds returns a conservative [lb, ub] per objective, used only
	// to size the tie-breaking perturbation.
	ObjectiveBounds() ([]ir.Bound, error)

	// Open builds a fresh model. The caller must Close it.
	Open(ctx context.Context, req ModelRequest) (Subproblem, error)
}

// Subproblem is one open model.
type Subproblem interface {
	// SetEpsilon sets the ε-constraint right-hand sides, in ModelRequest.Bounded
	// order.
	SetEpsilon(eps ir.EpsilonVector) error

	// SetTimeLimit sets the limit for subsequent solves.
	SetTimeLimit(limit Limit)

	// Solve optimizes the model. A non-nil error is an engine failure, not an
	// infeasible or time-limited outcome.
	Solve(ctx context.Context) (Result, error)

	// Close releases the model.
	Close() error
}

// IISExporter is implemented by subproblems that can write an irreducible
// infeasible subset after an INFEASIBLE solve.
type IISExporter interface {
	ExportIIS(path string) error
}
