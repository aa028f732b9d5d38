package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/ir"
)

// RunMeta identifies a run and what it was run on.
type RunMeta struct {
	RunID        string
	InstanceID   string
	InstanceName string
	ConfigHash   string
}

func (m RunMeta) validate() error {
	if m.RunID == "" {
		return fmt.Errorf("run ID is required")
	}
	if m.InstanceID == "" {
		return fmt.Errorf("run %s: instance ID is required", m.RunID)
	}
	return nil
}

// WriteReport records a completed run with its archive and infeasibility
// memo. Writing an existing run ID is a no-op.
func (s *Store) WriteReport(ctx context.Context, meta RunMeta, r *engine.Report) error {
	if err := meta.validate(); err != nil {
		return err
	}
	if r == nil || r.Enum == nil {
		return fmt.Errorf("run %s: report has no enumeration result", meta.RunID)
	}
	ideal, err := marshalVector(r.IdealNadir.Ideal)
	if err != nil {
		return err
	}
	nadir, err := marshalVector(r.IdealNadir.Nadir)
	if err != nil {
		return err
	}
	payoff, err := marshalVector(r.IdealNadir.Payoff)
	if err != nil {
		return err
	}
	m := r.Enum.Metrics

	return s.withTx(ctx, func(tx *sql.Tx) error {
		inserted, err := insertRun(ctx, tx, `
			INSERT INTO runs (
				id, seq, instance_id, instance_name, config_hash, outcome, reason,
				g, ideal, nadir, payoff,
				grid_points, archive_size, memo_size, skipped_dominated, skipped_infeasible,
				solved, proven_infeasible, discarded, unproven,
				solved_ns, infeasible_ns, discarded_ns, elapsed_ns, engine_version
			) VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, '',
				?, ?, ?, ?,
				?, ?, ?, ?, ?,
				?, ?, ?, ?,
				?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			meta.RunID, meta.InstanceID, meta.InstanceName, meta.ConfigHash, string(ir.OutcomeCompleted),
			r.G, ideal, nadir, payoff,
			m.GridPoints, m.ArchiveSize, m.MemoSize, m.SkippedDominated, m.SkippedInfeasible,
			m.Solved, m.ProvenInfeasible, m.Discarded, m.Unproven,
			int64(m.SolvedTime), int64(m.InfeasibleTime), int64(m.DiscardedTime), int64(r.Elapsed),
			ir.EngineVersion,
		)
		if err != nil || !inserted {
			return err
		}

		for pos, p := range r.Enum.Archive {
			if err := insertSolution(ctx, tx, meta.RunID, pos, p); err != nil {
				return err
			}
		}
		for pos, eps := range r.Enum.Infeasible {
			col, err := marshalVector(eps)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO infeasible (run_id, pos, eps) VALUES (?, ?, ?)`,
				meta.RunID, pos, col,
			); err != nil {
				return fmt.Errorf("insert infeasible %d: %w", pos, err)
			}
		}
		return nil
	})
}

// WriteFailure records a run that did not complete. g is stored as -1.
// Writing an existing run ID is a no-op.
func (s *Store) WriteFailure(ctx context.Context, meta RunMeta, reason string) error {
	if err := meta.validate(); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := insertRun(ctx, tx, `
			INSERT INTO runs (
				id, seq, instance_id, instance_name, config_hash, outcome, reason, g, engine_version
			) VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, -1, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			meta.RunID, meta.InstanceID, meta.InstanceName, meta.ConfigHash,
			string(ir.OutcomeFailed), reason, ir.EngineVersion,
		)
		return err
	})
}

func insertRun(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert run: %w", err)
	}
	return n > 0, nil
}

func insertSolution(ctx context.Context, tx *sql.Tx, runID string, pos int, p ir.SolutionPoint) error {
	cols := make([]string, 0, 4)
	for _, v := range []any{p.Grid, p.Eps, p.Z, p.ZBounded} {
		col, err := marshalVector(v)
		if err != nil {
			return fmt.Errorf("solution %d: %w", pos, err)
		}
		cols = append(cols, col)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO solutions (run_id, pos, grid, eps, z, z_bounded, status, proven)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, pos, cols[0], cols[1], cols[2], cols[3], p.Status.String(), boolToInt(p.Proven)); err != nil {
		return fmt.Errorf("insert solution %d: %w", pos, err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
