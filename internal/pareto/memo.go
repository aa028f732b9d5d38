package pareto

import (
	"fmt"

	"github.com/roach88/augeps/internal/ir"
)

// InfeasibleMemo is the set I of ε-vectors proven infeasible by certified
// solves. It only grows.
type InfeasibleMemo struct {
	dim     int
	vectors []ir.EpsilonVector
}

// NewInfeasibleMemo creates an empty memo for ε-vectors of length dim.
func NewInfeasibleMemo(dim int) *InfeasibleMemo {
	return &InfeasibleMemo{dim: dim}
}

// Add records eps as proven infeasible. The vector is copied.
func (m *InfeasibleMemo) Add(eps ir.EpsilonVector) error {
	if len(eps) != m.dim {
		return fmt.Errorf("memo add: %w: %d != %d", ErrLengthMismatch, len(eps), m.dim)
	}
	m.vectors = append(m.vectors, eps.Clone())
	return nil
}

// Covers implements skip_infeasible: it reports whether eps is at least as
// tight as some recorded vector (eps >= recorded componentwise). Raising
// lower bounds only shrinks the feasible region, so such a point is
// infeasible too.
func (m *InfeasibleMemo) Covers(eps ir.EpsilonVector) (bool, error) {
	if len(eps) != m.dim {
		return false, fmt.Errorf("memo covers: %w: %d != %d", ErrLengthMismatch, len(eps), m.dim)
	}
	for _, rec := range m.vectors {
		if covers(eps, rec) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns |I|.
func (m *InfeasibleMemo) Len() int {
	return len(m.vectors)
}

// Vectors returns copies of the recorded vectors in insertion order.
func (m *InfeasibleMemo) Vectors() []ir.EpsilonVector {
	out := make([]ir.EpsilonVector, len(m.vectors))
	for i, v := range m.vectors {
		out[i] = v.Clone()
	}
	return out
}
