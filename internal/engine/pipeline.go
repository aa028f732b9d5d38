package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
)

// PipelineConfig configures RunTwoStage. Zero limits mean "no limit".
type PipelineConfig struct {
	Stage1TimeLimit time.Duration
	IdealTimeLimit  time.Duration
	Enum            EnumConfig
}

// DefaultEnumConfig returns the paper setting: z1 fully considered, z3 and
// z4 bounded, five steps each.
func DefaultEnumConfig() EnumConfig {
	return EnumConfig{
		Bounded: []int{3, 4},
		Primary: 1,
		Steps:   []int{5, 5},
	}
}

// Validate checks the configuration against n_z objectives.
func (c PipelineConfig) Validate(nz int) error {
	if c.Stage1TimeLimit < 0 {
		return newConfigError(ErrCodeNegativeTimeLimit, "stage1_time_limit", "got %s", c.Stage1TimeLimit)
	}
	if c.IdealTimeLimit < 0 {
		return newConfigError(ErrCodeNegativeTimeLimit, "ideal_time_limit", "got %s", c.IdealTimeLimit)
	}
	return c.Enum.Validate(nz)
}

// Fingerprint returns a content-addressed ID of the configuration. Runs with
// equal fingerprints used identical settings.
func (c PipelineConfig) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainConfig, map[string]any{
		"stage1_time_limit_ns":   int64(c.Stage1TimeLimit),
		"ideal_time_limit_ns":    int64(c.IdealTimeLimit),
		"bounded":                c.Enum.Bounded,
		"primary":                c.Enum.Primary,
		"steps":                  c.Enum.Steps,
		"total_budget_ns":        int64(c.Enum.TotalBudget),
		"per_iteration_limit_ns": int64(c.Enum.PerIterationLimit),
		"accept_incumbent":       c.Enum.AcceptTimeLimitIncumbent,
		"engine_version":         ir.EngineVersion,
	})
}

// Report is the result of a completed pipeline run.
type Report struct {
	RunID      string
	G          int
	IdealNadir ir.IdealNadir
	Enum       *EnumResult

	Stage1Time time.Duration
	IdealTime  time.Duration
	EnumTime   time.Duration
	Elapsed    time.Duration
}

// Solves returns the number of oracle calls made by the run.
func (r *Report) Solves() int {
	return 1 + len(r.IdealNadir.Ideal) + r.Enum.Metrics.Solves()
}

// Outcome returns Completed with the enumeration metrics.
func (r *Report) Outcome() ir.Outcome {
	return ir.Completed(r.Enum.Metrics)
}

// OutcomeOf folds a RunTwoStage result into an Outcome.
func OutcomeOf(r *Report, err error) ir.Outcome {
	if err != nil {
		return ir.Failed(err.Error())
	}
	return r.Outcome()
}

// RunTwoStage runs Stage 1, the ideal/nadir estimation and the enumeration on
// one problem. The whole configuration is validated before Stage 1.
func RunTwoStage(ctx context.Context, p oracle.Problem, cfg PipelineConfig, opts ...Option) (*Report, error) {
	s := newSettings(opts)
	if err := cfg.Validate(p.NumObjectives()); err != nil {
		return nil, err
	}

	r := &Report{RunID: s.ids.Generate()}
	start := s.clock.Now()
	logger := slog.With("run", r.RunID)

	g, err := MaximizeCardinality(ctx, p, limitOf(cfg.Stage1TimeLimit), opts...)
	if err != nil {
		return nil, err
	}
	r.G = g
	r.Stage1Time = since(s.clock, start)
	logger.Info("stage1 complete", "g", g, "elapsed", r.Stage1Time)

	t := s.clock.Now()
	in, err := EstimateIdealNadir(ctx, p, g, limitOf(cfg.IdealTimeLimit), opts...)
	if err != nil {
		return nil, err
	}
	r.IdealNadir = in
	r.IdealTime = since(s.clock, t)
	logger.Info("ideal/nadir estimated", "ideal", fmt.Sprint(in.Ideal), "nadir", fmt.Sprint(in.Nadir))

	t = s.clock.Now()
	enum, err := Enumerate(ctx, p, g, in, cfg.Enum, opts...)
	if err != nil {
		return nil, err
	}
	r.Enum = enum
	r.EnumTime = since(s.clock, t)
	r.Elapsed = since(s.clock, start)

	logger.Info("enumeration complete",
		"archive", enum.Metrics.ArchiveSize,
		"infeasible", enum.Metrics.MemoSize,
		"skipped_dominated", enum.Metrics.SkippedDominated,
		"skipped_infeasible", enum.Metrics.SkippedInfeasible,
		"elapsed", r.Elapsed,
	)
	return r, nil
}
