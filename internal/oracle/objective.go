package oracle

import (
	"fmt"
	"math"

	"github.com/roach88/augeps/internal/ir"
)

// ObjectiveKind names the objective variants.
type ObjectiveKind string

const (
	KindCount     ObjectiveKind = "count"
	KindAnchor    ObjectiveKind = "anchor"
	KindAugmented ObjectiveKind = "augmented"
)

// SurplusTolerance absorbs rounding when checking that a surplus lies in
// [0, 1] and when treating an objective range as degenerate.
const SurplusTolerance = 1e-9

// Objective is a maximized model objective.
//
// Evaluate scores a solution given its full objective vector and its
// scheduled-item count. admissible is false when the objective's auxiliary
// variables cannot take the values the solution requires (the solution is
// outside the model).
type Objective interface {
	Kind() ObjectiveKind
	Evaluate(z ir.ObjectiveVector, scheduled int) (value float64, admissible bool)
	String() string
}

// Count maximizes the number of scheduled items (Stage 1).
type Count struct{}

func (Count) Kind() ObjectiveKind { return KindCount }

func (Count) Evaluate(_ ir.ObjectiveVector, scheduled int) (float64, bool) {
	return float64(scheduled), true
}

func (Count) String() string { return "max g" }

// Anchor maximizes z_Primary + Weight * sum_{j != Primary} z_j.
// Primary is 0-based.
type Anchor struct {
	Primary int
	Weight  float64
}

func (Anchor) Kind() ObjectiveKind { return KindAnchor }

func (a Anchor) Evaluate(z ir.ObjectiveVector, _ int) (float64, bool) {
	var rest float64
	for j, v := range z {
		if j != a.Primary {
			rest += v
		}
	}
	return z[a.Primary] + a.Weight*rest, true
}

func (a Anchor) String() string {
	return fmt.Sprintf("max z%d + %g*sum(others)", a.Primary+1, a.Weight)
}

// Augmented is the augmented ε-constraint objective
//
//	z_Primary + (n_z - 0.9)^-1 * sum_j surplus_j
//
// with surplus_j = (z_j - nadir_j) / (ideal_j - nadir_j) in [0, 1] for every
// bounded objective j, fixed to 0 when ideal_j == nadir_j.
// Primary and Bounded are 0-based; Ideal and Nadir have length n_z.
type Augmented struct {
	Primary int
	Bounded []int
	Ideal   ir.ObjectiveVector
	Nadir   ir.ObjectiveVector
}

func (Augmented) Kind() ObjectiveKind { return KindAugmented }

// Coefficient returns (n_z - 0.9)^-1.
func (a Augmented) Coefficient() float64 {
	return 1.0 / (float64(len(a.Ideal)) - 0.9)
}

// Surplus returns the normalized surplus of bounded objective j (0-based
// objective index). ok is false when the surplus falls outside [0, 1].
func (a Augmented) Surplus(z ir.ObjectiveVector, j int) (s float64, ok bool) {
	denom := a.Ideal[j] - a.Nadir[j]
	if math.Abs(denom) < SurplusTolerance {
		return 0, true
	}
	s = (z[j] - a.Nadir[j]) / denom
	if s < -SurplusTolerance || s > 1+SurplusTolerance {
		return s, false
	}
	return s, true
}

func (a Augmented) Evaluate(z ir.ObjectiveVector, _ int) (float64, bool) {
	var sum float64
	for _, j := range a.Bounded {
		s, ok := a.Surplus(z, j)
		if !ok {
			return 0, false
		}
		sum += s
	}
	return z[a.Primary] + a.Coefficient()*sum, true
}

func (a Augmented) String() string {
	return fmt.Sprintf("max z%d + %.4g*sum(surplus)", a.Primary+1, a.Coefficient())
}
