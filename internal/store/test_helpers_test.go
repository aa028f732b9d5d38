package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/ir"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMeta(runID string) RunMeta {
	return RunMeta{
		RunID:        runID,
		InstanceID:   "inst-1",
		InstanceName: "small",
		ConfigHash:   "cfg-1",
	}
}

// testReport is a finished run with two archive points and one memo entry.
func testReport(runID string) *engine.Report {
	return &engine.Report{
		RunID: runID,
		G:     12,
		IdealNadir: ir.IdealNadir{
			Ideal:  ir.ObjectiveVector{10, 20.5, 7, 6},
			Nadir:  ir.ObjectiveVector{0, -1.25, 2, 1},
			Payoff: []ir.ObjectiveVector{
				{10, -1.25, 2, 6},
				{0, 20.5, 3, 1},
				{5, 4, 7, 2},
				{1, 0, 2, 6},
			},
		},
		Enum: &engine.EnumResult{
			Archive: []ir.SolutionPoint{
				{
					Z:        ir.ObjectiveVector{9, 3, 7, 1},
					Eps:      ir.EpsilonVector{2, 1},
					Grid:     ir.GridIndex{0, 0},
					ZBounded: ir.ObjectiveVector{7, 1},
					Status:   ir.StatusOptimal,
					Proven:   true,
				},
				{
					Z:        ir.ObjectiveVector{8, 2, 4, 6},
					Eps:      ir.EpsilonVector{2, 6},
					Grid:     ir.GridIndex{0, 1},
					ZBounded: ir.ObjectiveVector{4, 6},
					Status:   ir.StatusTimeLimit,
				},
			},
			Infeasible: []ir.EpsilonVector{{7, 6}},
			Metrics: ir.Metrics{
				GridPoints:       4,
				ArchiveSize:      2,
				MemoSize:         1,
				SkippedDominated: 1,
				Solved:           3,
				ProvenInfeasible: 1,
				Unproven:         1,
				SolvedTime:       3 * time.Second,
				InfeasibleTime:   time.Second,
				DiscardedTime:    0,
			},
		},
		Elapsed: 5 * time.Second,
	}
}
