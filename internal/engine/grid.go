package engine

import (
	"fmt"

	"github.com/roach88/augeps/internal/ir"
)

// Odometer enumerates every grid index v with 0 <= v_i <= steps_i exactly once.
//
// Starting from all zeros, Next finds the smallest i with v_i < steps_i,
// increments it and resets every position before it. The walk ends at
// v == steps, after Π(steps_i+1) indices.
type Odometer struct {
	steps []int
	v     ir.GridIndex
	done  bool
}

// NewOdometer creates an odometer positioned at the all-zero index.
// Steps must be non-negative.
func NewOdometer(steps []int) *Odometer {
	s := make([]int, len(steps))
	copy(s, steps)
	return &Odometer{
		steps: s,
		v:     make(ir.GridIndex, len(steps)),
	}
}

// Index returns a copy of the current index.
func (o *Odometer) Index() ir.GridIndex {
	return o.v.Clone()
}

// Next advances to the following index and returns it. ok is false once the
// current index equals steps; the index is then left unchanged.
func (o *Odometer) Next() (ir.GridIndex, bool) {
	if o.done {
		return o.v.Clone(), false
	}
	star := -1
	for i := range o.v {
		if o.v[i] < o.steps[i] {
			star = i
			break
		}
	}
	if star < 0 {
		o.done = true
		return o.v.Clone(), false
	}
	o.v[star]++
	for i := 0; i < star; i++ {
		o.v[i] = 0
	}
	return o.v.Clone(), true
}

// GridSize returns Π(steps_i+1), the number of grid points. Negative steps
// count as zero.
func GridSize(steps []int) int {
	total := 1
	for _, s := range steps {
		total *= max(s, 0) + 1
	}
	return total
}

// ComputeEpsilon interpolates the ε-vector of grid index v between the nadir
// and ideal values of the bounded objectives:
//
//	eps_i = nadir_j + (v_i / steps_i) * (ideal_j - nadir_j),  j = bounded[i]
//
// A dimension with steps_i == 0 is pinned to nadir_j. At v_i == steps_i the
// ideal value is returned exactly. bounded holds 0-based objective indices.
func ComputeEpsilon(nadir, ideal ir.ObjectiveVector, v ir.GridIndex, steps, bounded []int) (ir.EpsilonVector, error) {
	if len(v) != len(steps) || len(steps) != len(bounded) {
		return nil, fmt.Errorf("compute epsilon: dimension mismatch (v=%d steps=%d bounded=%d)",
			len(v), len(steps), len(bounded))
	}
	eps := make(ir.EpsilonVector, len(bounded))
	for i, j := range bounded {
		switch {
		case steps[i] <= 0:
			eps[i] = nadir[j]
		case v[i] >= steps[i]:
			eps[i] = ideal[j]
		default:
			eps[i] = nadir[j] + float64(v[i])/float64(steps[i])*(ideal[j]-nadir[j])
		}
	}
	return eps, nil
}
