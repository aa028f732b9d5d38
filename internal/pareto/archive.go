package pareto

import (
	"fmt"

	"github.com/roach88/augeps/internal/ir"
)

// Archive is the non-dominated archive N.
//
// INVARIANT: members are pairwise non-dominated with respect to their bounded
// sub-vectors (SolutionPoint.ZBounded) after every Insert.
type Archive struct {
	dim    int
	points []ir.SolutionPoint
}

// NewArchive creates an empty archive for bounded sub-vectors of length dim.
func NewArchive(dim int) *Archive {
	return &Archive{dim: dim}
}

// Insert offers a candidate to the archive.
//
// If an existing member dominates the candidate, the archive is unchanged and
// Insert returns false. Otherwise every member dominated by the candidate is
// removed, the candidate is appended and Insert returns true.
func (a *Archive) Insert(cand ir.SolutionPoint) (bool, error) {
	if len(cand.ZBounded) != a.dim {
		return false, fmt.Errorf("archive insert: %w: %d != %d", ErrLengthMismatch, len(cand.ZBounded), a.dim)
	}

	for _, p := range a.points {
		if dominates(p.ZBounded, cand.ZBounded) {
			return false, nil
		}
	}

	kept := a.points[:0]
	for _, p := range a.points {
		if !dominates(cand.ZBounded, p.ZBounded) {
			kept = append(kept, p)
		}
	}
	a.points = append(kept, cand)
	return true, nil
}

// Covers implements skip_solutions: it reports whether some member's bounded
// sub-vector is componentwise >= eps. Such a member already satisfies every
// ε-constraint of the grid point.
func (a *Archive) Covers(eps ir.EpsilonVector) (bool, error) {
	if len(eps) != a.dim {
		return false, fmt.Errorf("archive covers: %w: %d != %d", ErrLengthMismatch, len(eps), a.dim)
	}
	for _, p := range a.points {
		if covers(p.ZBounded, eps) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns |N|.
func (a *Archive) Len() int {
	return len(a.points)
}

// Points returns a copy of the members in insertion order.
func (a *Archive) Points() []ir.SolutionPoint {
	out := make([]ir.SolutionPoint, len(a.points))
	copy(out, a.points)
	return out
}
