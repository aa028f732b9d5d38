package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
	"github.com/roach88/augeps/internal/testutil"
)

// Scenario is one scripted pipeline run with its expectations.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Objectives is n_z.
	Objectives int `yaml:"objectives"`

	// Bounds are the objective bounds the oracle reports. Empty means
	// [-10, 0] for every objective.
	Bounds []ir.Bound `yaml:"bounds,omitempty"`

	Config  ConfigSpec   `yaml:"config"`
	Stage1  ResultSpec   `yaml:"stage1"`
	Anchors []ResultSpec `yaml:"anchors"`
	Grid    GridSpec     `yaml:"grid"`

	Expect Expectation `yaml:"expect"`
}

// ConfigSpec mirrors engine.PipelineConfig.
type ConfigSpec struct {
	Bounded []int `yaml:"bounded,flow"`
	Primary int   `yaml:"primary"`
	Steps   []int `yaml:"steps,flow"`

	TotalBudget       time.Duration `yaml:"total_budget,omitempty"`
	PerIterationLimit time.Duration `yaml:"per_iteration_limit,omitempty"`
	Stage1TimeLimit   time.Duration `yaml:"stage1_time_limit,omitempty"`
	IdealTimeLimit    time.Duration `yaml:"ideal_time_limit,omitempty"`
	AcceptIncumbent   bool          `yaml:"accept_incumbent,omitempty"`
}

// ResultSpec scripts one oracle answer.
type ResultSpec struct {
	Status ir.Status `yaml:"status"`

	// Z is the incumbent's objective vector; empty means no incumbent.
	Z []float64 `yaml:"z,flow,omitempty"`

	// Incumbents defaults to 1 when Z is set, 0 otherwise.
	Incumbents *int `yaml:"incumbents,omitempty"`

	Elapsed time.Duration `yaml:"elapsed,omitempty"`

	// Error makes the solve fail with this message. Grid results only.
	Error string `yaml:"error,omitempty"`
}

// GridSpec scripts the augmented solves by ε-vector.
type GridSpec struct {
	Default ResultSpec            `yaml:"default"`
	Points  map[string]ResultSpec `yaml:"points,omitempty"`
}

// Expectation lists what the run must produce.
type Expectation struct {
	// Outcome is "completed" or "failed".
	Outcome        ir.OutcomeKind `yaml:"outcome"`
	ReasonContains string         `yaml:"reason_contains,omitempty"`

	G      *int `yaml:"g,omitempty"`
	Solves *int `yaml:"solves,omitempty"`

	// Archive lists full objective vectors in archive order.
	Archive    [][]float64         `yaml:"archive,omitempty"`
	Infeasible [][]float64         `yaml:"infeasible,omitempty"`
	Visits     []engine.VisitState `yaml:"visits,flow,omitempty"`

	// Limits lists the time limit of every augmented solve, e.g. "3s" or
	// "none".
	Limits []string `yaml:"limits,flow,omitempty"`

	Metrics map[string]int `yaml:"metrics,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Objectives <= 0 {
		return fmt.Errorf("objectives must be > 0")
	}
	if len(s.Bounds) != 0 && len(s.Bounds) != s.Objectives {
		return fmt.Errorf("got %d bounds for %d objectives", len(s.Bounds), s.Objectives)
	}
	if len(s.Anchors) != s.Objectives {
		return fmt.Errorf("got %d anchors for %d objectives", len(s.Anchors), s.Objectives)
	}
	if s.Stage1.Error != "" {
		return fmt.Errorf("stage1: error results are only supported on grid points")
	}
	for i, a := range s.Anchors {
		if a.Error != "" {
			return fmt.Errorf("anchors[%d]: error results are only supported on grid points", i)
		}
	}
	switch s.Expect.Outcome {
	case ir.OutcomeCompleted, ir.OutcomeFailed:
	default:
		return fmt.Errorf("expect.outcome must be %q or %q (got %q)",
			ir.OutcomeCompleted, ir.OutcomeFailed, s.Expect.Outcome)
	}
	for name := range s.Expect.Metrics {
		if _, ok := metricsByName(ir.Metrics{})[name]; !ok {
			return fmt.Errorf("expect.metrics: unknown metric %q", name)
		}
	}
	return nil
}

func (c ConfigSpec) pipeline() engine.PipelineConfig {
	return engine.PipelineConfig{
		Stage1TimeLimit: c.Stage1TimeLimit,
		IdealTimeLimit:  c.IdealTimeLimit,
		Enum: engine.EnumConfig{
			Bounded:                  c.Bounded,
			Primary:                  c.Primary,
			Steps:                    c.Steps,
			TotalBudget:              c.TotalBudget,
			PerIterationLimit:        c.PerIterationLimit,
			AcceptTimeLimitIncumbent: c.AcceptIncumbent,
		},
	}
}

func (r ResultSpec) result() oracle.Result {
	res := oracle.Result{Status: r.Status, Elapsed: r.Elapsed}
	if len(r.Z) > 0 {
		res.Objectives = ir.ObjectiveVector(r.Z).Clone()
		res.Value = r.Z[0]
		res.Incumbents = 1
	}
	if r.Incumbents != nil {
		res.Incumbents = *r.Incumbents
	}
	return res
}

// problem builds the scripted oracle.
func (s *Scenario) problem(clock *testutil.FakeClock) *testutil.ScriptedProblem {
	anchors := make([]oracle.Result, len(s.Anchors))
	for i, a := range s.Anchors {
		anchors[i] = a.result()
	}
	return &testutil.ScriptedProblem{
		Objectives: s.Objectives,
		Bounds:     s.Bounds,
		Clock:      clock,
		Stage1:     s.Stage1.result(),
		Anchors:    anchors,
		Grid: func(eps ir.EpsilonVector) (oracle.Result, error) {
			spec, ok := s.Grid.Points[testutil.EpsKey(eps)]
			if !ok {
				spec = s.Grid.Default
			}
			if spec.Error != "" {
				return oracle.Result{}, errors.New(spec.Error)
			}
			return spec.result(), nil
		},
	}
}

func metricsByName(m ir.Metrics) map[string]int {
	return map[string]int{
		"grid_points":        m.GridPoints,
		"archive_size":       m.ArchiveSize,
		"memo_size":          m.MemoSize,
		"skipped_dominated":  m.SkippedDominated,
		"skipped_infeasible": m.SkippedInfeasible,
		"solved":             m.Solved,
		"proven_infeasible":  m.ProvenInfeasible,
		"discarded":          m.Discarded,
		"unproven":           m.Unproven,
	}
}
