package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/augeps/internal/oracle"
)

// MaximizeCardinality solves the Stage-1 model (maximize the number of
// scheduled items, no ε-constraints) and returns g*.
//
// OPTIMAL and TIME_LIMIT with an incumbent are accepted. Anything else is a
// *PipelineError. The model is closed before returning.
func MaximizeCardinality(ctx context.Context, p oracle.Problem, limit oracle.Limit, opts ...Option) (g int, err error) {
	s := newSettings(opts)

	sub, err := p.Open(ctx, oracle.ModelRequest{
		Name:        "stage1",
		Cardinality: oracle.FreeCardinality,
		Objective:   oracle.Count{},
	})
	if err != nil {
		return 0, fmt.Errorf("open stage1 model: %w", err)
	}
	defer func() {
		if cerr := sub.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close stage1 model: %w", cerr)
		}
	}()

	sub.SetTimeLimit(limit)
	res, err := s.solve(ctx, sub, "stage1: maximize g")
	if err != nil {
		return 0, fmt.Errorf("stage1 solve: %w", err)
	}
	if !res.Usable() {
		return 0, &PipelineError{
			Stage:      StageCardinality,
			Status:     res.Status,
			Incumbents: res.Incumbents,
		}
	}

	g = int(math.Round(res.Value))
	slog.Debug("stage1 complete", "g", g, "status", res.Status.String(), "elapsed", res.Elapsed)
	return g, nil
}
