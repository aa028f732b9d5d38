package enum

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/augeps/internal/instance"
	"github.com/roach88/augeps/internal/oracle"
)

type constraint struct {
	name  string
	expr  string
	holds func(instance.Candidate) bool
}

func satisfies(cs []constraint, cand instance.Candidate) bool {
	for _, c := range cs {
		if !c.holds(cand) {
			return false
		}
	}
	return true
}

// constraints lists the model's active constraints: the cardinality fix, the
// ε-constraints once set, and the surplus bounds of an augmented objective.
func (m *Model) constraints() []constraint {
	var cs []constraint
	if g := m.req.Cardinality; g != oracle.FreeCardinality {
		cs = append(cs, constraint{
			name:  "cardinality",
			expr:  fmt.Sprintf("g == %d", g),
			holds: func(c instance.Candidate) bool { return c.Scheduled == g },
		})
	}
	if m.eps != nil {
		for i, j := range m.req.Bounded {
			j := j
			eps := m.eps[i]
			cs = append(cs, constraint{
				name:  fmt.Sprintf("eps_z%d", j+1),
				expr:  fmt.Sprintf("z%d >= %g", j+1, eps),
				holds: func(c instance.Candidate) bool { return c.Z[j] >= eps-Tolerance },
			})
		}
	}
	if aug, ok := m.req.Objective.(oracle.Augmented); ok {
		for _, j := range aug.Bounded {
			j := j
			if math.Abs(aug.Ideal[j]-aug.Nadir[j]) < oracle.SurplusTolerance {
				continue
			}
			nadir, ideal := aug.Nadir[j], aug.Ideal[j]
			cs = append(cs,
				constraint{
					name:  fmt.Sprintf("surplus_lb_z%d", j+1),
					expr:  fmt.Sprintf("z%d >= %g", j+1, nadir),
					holds: func(c instance.Candidate) bool { return c.Z[j] >= nadir-Tolerance },
				},
				constraint{
					name:  fmt.Sprintf("surplus_ub_z%d", j+1),
					expr:  fmt.Sprintf("z%d <= %g", j+1, ideal),
					holds: func(c instance.Candidate) bool { return c.Z[j] <= ideal+Tolerance },
				},
			)
		}
	}
	return cs
}

func (m *Model) infeasible(cs []constraint) bool {
	for _, cand := range m.p.inst.Candidates {
		if satisfies(cs, cand) {
			return false
		}
	}
	return true
}

// IIS is an irreducible infeasible subset of a model's constraints.
type IIS struct {
	Model       string          `yaml:"model"`
	Constraints []IISConstraint `yaml:"constraints"`
}

// IISConstraint is one member of an IIS.
type IISConstraint struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// ErrFeasible is returned when an IIS is requested for a feasible model.
var ErrFeasible = errors.New("enum: model is feasible")

// ComputeIIS finds an irreducible infeasible subset with a deletion filter:
// each constraint is dropped in turn and kept out whenever the rest stays
// infeasible.
func (m *Model) ComputeIIS() (IIS, error) {
	if m.closed {
		return IIS{}, ErrClosed
	}
	cs := m.constraints()
	if !m.infeasible(cs) {
		return IIS{}, ErrFeasible
	}
	for i := 0; i < len(cs); {
		rest := make([]constraint, 0, len(cs)-1)
		rest = append(rest, cs[:i]...)
		rest = append(rest, cs[i+1:]...)
		if m.infeasible(rest) {
			cs = rest
			continue
		}
		i++
	}

	out := IIS{Model: m.req.Name, Constraints: make([]IISConstraint, len(cs))}
	for i, c := range cs {
		out.Constraints[i] = IISConstraint{Name: c.name, Expr: c.expr}
	}
	return out, nil
}

// ExportIIS implements oracle.IISExporter by writing ComputeIIS as YAML.
func (m *Model) ExportIIS(path string) error {
	iis, err := m.ComputeIIS()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(iis)
	if err != nil {
		return fmt.Errorf("marshal IIS: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write IIS: %w", err)
	}
	return nil
}
