package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/augeps/internal/ir"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID            string
	Seq           int64
	InstanceID    string
	InstanceName  string
	ConfigHash    string
	Kind          ir.OutcomeKind
	Reason        string
	G             int
	Ideal         ir.ObjectiveVector
	Nadir         ir.ObjectiveVector
	Payoff        []ir.ObjectiveVector
	Metrics       ir.Metrics
	Elapsed       time.Duration
	EngineVersion string
}

// Outcome rebuilds the tagged outcome of the run.
func (r RunRecord) Outcome() ir.Outcome {
	if r.Kind == ir.OutcomeCompleted {
		return ir.Completed(r.Metrics)
	}
	return ir.Failed(r.Reason)
}

// RunDetail is a run with its archive and infeasibility memo.
type RunDetail struct {
	Run        RunRecord
	Archive    []ir.SolutionPoint
	Infeasible []ir.EpsilonVector
}

const runColumns = `
	id, seq, instance_id, instance_name, config_hash, outcome, reason, g, ideal, nadir, payoff,
	grid_points, archive_size, memo_size, skipped_dominated, skipped_infeasible,
	solved, proven_infeasible, discarded, unproven,
	solved_ns, infeasible_ns, discarded_ns, elapsed_ns, engine_version
`

// ListRuns returns all runs in insertion order. A non-empty instanceID
// restricts the result to runs of that instance.
func (s *Store) ListRuns(ctx context.Context, instanceID string) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if instanceID != "" {
		query += ` WHERE instance_id = ?`
		args = append(args, instanceID)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// ReadRun loads a run with its archive (in archive order) and memo (in
// insertion order). Returns ErrNotFound for unknown IDs.
func (s *Store) ReadRun(ctx context.Context, id string) (*RunDetail, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	detail := &RunDetail{Run: rec}
	if detail.Archive, err = s.readSolutions(ctx, id); err != nil {
		return nil, err
	}
	if detail.Infeasible, err = s.readInfeasible(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var (
		rec                                  RunRecord
		outcome, ideal, nadir, payoff        string
		solvedNS, infNS, discardedNS, elapNS int64
	)
	m := &rec.Metrics
	err := sc.Scan(
		&rec.ID, &rec.Seq, &rec.InstanceID, &rec.InstanceName, &rec.ConfigHash,
		&outcome, &rec.Reason, &rec.G, &ideal, &nadir, &payoff,
		&m.GridPoints, &m.ArchiveSize, &m.MemoSize, &m.SkippedDominated, &m.SkippedInfeasible,
		&m.Solved, &m.ProvenInfeasible, &m.Discarded, &m.Unproven,
		&solvedNS, &infNS, &discardedNS, &elapNS, &rec.EngineVersion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan run: %w", err)
	}

	rec.Kind = ir.OutcomeKind(outcome)
	m.SolvedTime = time.Duration(solvedNS)
	m.InfeasibleTime = time.Duration(infNS)
	m.DiscardedTime = time.Duration(discardedNS)
	rec.Elapsed = time.Duration(elapNS)

	vals, err := unmarshalFloats("ideal", ideal)
	if err != nil {
		return rec, err
	}
	rec.Ideal = vals
	if vals, err = unmarshalFloats("nadir", nadir); err != nil {
		return rec, err
	}
	rec.Nadir = vals
	if rec.Payoff, err = unmarshalVectors("payoff", payoff); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Store) readSolutions(ctx context.Context, runID string) ([]ir.SolutionPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT grid, eps, z, z_bounded, status, proven
		FROM solutions WHERE run_id = ? ORDER BY pos ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	defer rows.Close()

	var out []ir.SolutionPoint
	for rows.Next() {
		var (
			grid, eps, z, zb, status string
			proven                   int
		)
		if err := rows.Scan(&grid, &eps, &z, &zb, &status, &proven); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		var p ir.SolutionPoint
		idx, err := unmarshalInts("grid", grid)
		if err != nil {
			return nil, err
		}
		p.Grid = idx
		if p.Eps, err = unmarshalFloats("eps", eps); err != nil {
			return nil, err
		}
		if p.Z, err = unmarshalFloats("z", z); err != nil {
			return nil, err
		}
		if p.ZBounded, err = unmarshalFloats("z_bounded", zb); err != nil {
			return nil, err
		}
		if p.Status, err = ir.ParseStatus(status); err != nil {
			return nil, err
		}
		p.Proven = proven == 1
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solutions: %w", err)
	}
	return out, nil
}

func (s *Store) readInfeasible(ctx context.Context, runID string) ([]ir.EpsilonVector, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT eps FROM infeasible WHERE run_id = ? ORDER BY pos ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query infeasible: %w", err)
	}
	defer rows.Close()

	var out []ir.EpsilonVector
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan infeasible: %w", err)
		}
		eps, err := unmarshalFloats("eps", data)
		if err != nil {
			return nil, err
		}
		out = append(out, eps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate infeasible: %w", err)
	}
	return out, nil
}
