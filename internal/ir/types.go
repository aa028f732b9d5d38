package ir

import (
	"fmt"
	"strings"
	"time"
)

// ObjectiveVector is an ordered vector of objective values in maximize-form.
// Full vectors have length n_z; projected vectors have one entry per bounded
// objective.
type ObjectiveVector []float64

// Clone returns an independent copy of v.
func (v ObjectiveVector) Clone() ObjectiveVector {
	if v == nil {
		return nil
	}
	out := make(ObjectiveVector, len(v))
	copy(out, v)
	return out
}

// Project returns the sub-vector selected by the given 0-based indices.
func (v ObjectiveVector) Project(indices []int) ObjectiveVector {
	out := make(ObjectiveVector, len(indices))
	for i, idx := range indices {
		out[i] = v[idx]
	}
	return out
}

// GridIndex is a position on the ε-grid: one step index per bounded objective,
// each in [0, steps_i].
type GridIndex []int

// Clone returns an independent copy of g.
func (g GridIndex) Clone() GridIndex {
	out := make(GridIndex, len(g))
	copy(out, g)
	return out
}

// Key renders g as "i,j,k" for use in maps and file names.
func (g GridIndex) Key() string {
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

// EpsilonVector holds the lower bounds imposed on the bounded objectives at one
// grid point, in bounded-objective order.
type EpsilonVector []float64

// Clone returns an independent copy of e.
func (e EpsilonVector) Clone() EpsilonVector {
	if e == nil {
		return nil
	}
	out := make(EpsilonVector, len(e))
	copy(out, e)
	return out
}

// Bound is a conservative [LB, UB] range for one objective in maximize-form.
type Bound struct {
	LB float64 `yaml:"lb" json:"lb"`
	UB float64 `yaml:"ub" json:"ub"`
}

// Status is the termination status reported by a solve.
type Status int

const (
	// StatusOther covers every outcome that carries no usable information
	// (numerical trouble, interrupted, unbounded, ...).
	StatusOther Status = iota

	// StatusOptimal means the solve certified an optimum.
	StatusOptimal

	// StatusTimeLimit means the time limit was reached. An incumbent may or
	// may not be available.
	StatusTimeLimit

	// StatusInfeasible means the solve proved the model infeasible.
	StatusInfeasible
)

var statusNames = map[Status]string{
	StatusOther:      "OTHER",
	StatusOptimal:    "OPTIMAL",
	StatusTimeLimit:  "TIME_LIMIT",
	StatusInfeasible: "INFEASIBLE",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus parses the names produced by Status.String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return StatusOther, fmt.Errorf("unknown status %q", name)
}

// MarshalYAML renders the status by name.
func (s Status) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts a status name.
func (s *Status) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SolutionPoint is one solution accepted by the enumeration driver.
type SolutionPoint struct {
	// Z is the full objective vector (length n_z).
	Z ObjectiveVector

	// Eps is the ε-vector of the grid point that produced this solution.
	Eps EpsilonVector

	// Grid is the grid index of that point.
	Grid GridIndex

	// ZBounded is Z projected onto the bounded objectives, in Eps order.
	ZBounded ObjectiveVector

	// Status is the solve status (OPTIMAL or TIME_LIMIT).
	Status Status

	// Proven is true only for certified optima. Accepted time-limited
	// incumbents have Proven == false.
	Proven bool
}

// IdealNadir holds the ideal point and the approximate nadir point, both of
// length n_z.
type IdealNadir struct {
	Ideal ObjectiveVector
	Nadir ObjectiveVector

	// Payoff is the n_z x n_z payoff table the points were derived from.
	// Row i is the vector achieved by the anchor solve for objective i.
	Payoff []ObjectiveVector
}

// Metrics counts what happened to the grid points of one enumeration run.
type Metrics struct {
	// GridPoints is the total number of grid points, Π(steps_i+1).
	GridPoints int

	// ArchiveSize is |N| at the end of the run.
	ArchiveSize int

	// MemoSize is |I| at the end of the run.
	MemoSize int

	// SkippedDominated counts points skipped because an archived solution
	// already satisfies their ε-constraints (skip^N).
	SkippedDominated int

	// SkippedInfeasible counts points skipped because a recorded infeasible
	// ε-vector is weaker than theirs (skip^I).
	SkippedInfeasible int

	// Solved counts solves whose result was offered to the archive.
	Solved int

	// ProvenInfeasible counts solves that proved infeasibility.
	ProvenInfeasible int

	// Discarded counts solves that produced no information.
	Discarded int

	// Unproven counts accepted time-limited incumbents.
	Unproven int

	// SolvedTime is the solve time attributed to Solved (time^N).
	SolvedTime time.Duration

	// InfeasibleTime is the solve time attributed to ProvenInfeasible (time^I).
	InfeasibleTime time.Duration

	// DiscardedTime is the solve time spent on discarded solves.
	DiscardedTime time.Duration
}

// Solves returns the number of oracle calls made during the run.
func (m Metrics) Solves() int {
	return m.Solved + m.ProvenInfeasible + m.Discarded
}
