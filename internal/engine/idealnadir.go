package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
)

// EstimateIdealNadir runs one anchor solve per objective with cardinality
// fixed to g and derives the ideal and approximate nadir points from the
// resulting payoff table.
//
// Anchor i maximizes z_i + 10^-E * sum_{j != i} z_j, with E from SafeExponent
// over the problem's objective bounds. Every anchor uses its own model, closed
// before the next one is opened.
func EstimateIdealNadir(ctx context.Context, p oracle.Problem, g int, limit oracle.Limit, opts ...Option) (ir.IdealNadir, error) {
	s := newSettings(opts)
	nz := p.NumObjectives()

	bounds, err := p.ObjectiveBounds()
	if err != nil {
		return ir.IdealNadir{}, fmt.Errorf("objective bounds: %w", err)
	}
	if len(bounds) != nz {
		return ir.IdealNadir{}, newConfigError(ErrCodeBadVectorLength, "bounds",
			"got %d objective bounds, want %d", len(bounds), nz)
	}

	e := SafeExponent(bounds)
	weight := PerturbationWeight(e)
	slog.Debug("perturbation sized", "E", e, "weight", weight)

	payoff := make([]ir.ObjectiveVector, nz)
	for i := 0; i < nz; i++ {
		row, err := s.anchor(ctx, p, g, i, weight, limit)
		if err != nil {
			return ir.IdealNadir{}, err
		}
		if len(row) != nz {
			return ir.IdealNadir{}, fmt.Errorf("anchor z%d: oracle returned %d objectives, want %d", i+1, len(row), nz)
		}
		payoff[i] = row
	}

	return IdealNadirFromPayoff(payoff)
}

func (s *settings) anchor(ctx context.Context, p oracle.Problem, g, i int, weight float64, limit oracle.Limit) (row ir.ObjectiveVector, err error) {
	sub, err := p.Open(ctx, oracle.ModelRequest{
		Name:        fmt.Sprintf("anchor_z%d", i+1),
		Cardinality: g,
		Objective:   oracle.Anchor{Primary: i, Weight: weight},
	})
	if err != nil {
		return nil, fmt.Errorf("open anchor z%d: %w", i+1, err)
	}
	defer func() {
		if cerr := sub.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close anchor z%d: %w", i+1, cerr)
		}
	}()

	sub.SetTimeLimit(limit)
	res, err := s.solve(ctx, sub, fmt.Sprintf("ideal: anchor z%d (weight=%g)", i+1, weight))
	if err != nil {
		return nil, fmt.Errorf("anchor z%d solve: %w", i+1, err)
	}
	if !res.Usable() {
		return nil, &PipelineError{
			Stage:      StageIdealNadir,
			Anchor:     i + 1,
			Status:     res.Status,
			Incumbents: res.Incumbents,
		}
	}
	return res.Objectives.Clone(), nil
}

// IdealNadirFromPayoff derives ideal_i = payoff[i][i] and
// nadir_j = min_i payoff[i][j]. The table must be square.
func IdealNadirFromPayoff(payoff []ir.ObjectiveVector) (ir.IdealNadir, error) {
	n := len(payoff)
	for i, row := range payoff {
		if len(row) != n {
			return ir.IdealNadir{}, fmt.Errorf("payoff row %d has %d entries, want %d", i, len(row), n)
		}
	}

	ideal := make(ir.ObjectiveVector, n)
	nadir := make(ir.ObjectiveVector, n)
	for j := 0; j < n; j++ {
		ideal[j] = payoff[j][j]
		nadir[j] = payoff[0][j]
		for i := 1; i < n; i++ {
			nadir[j] = min(nadir[j], payoff[i][j])
		}
	}

	table := make([]ir.ObjectiveVector, n)
	for i, row := range payoff {
		table[i] = row.Clone()
	}
	return ir.IdealNadir{Ideal: ideal, Nadir: nadir, Payoff: table}, nil
}
