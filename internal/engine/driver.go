package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
	"github.com/roach88/augeps/internal/pareto"
)

// DefaultIISDir is where IIS files are written when EnumConfig.IISDir is empty.
const DefaultIISDir = "data/debug/iis"

// EnumConfig configures one enumeration run. Objective ids are 1-based.
type EnumConfig struct {
	// Bounded lists the objectives turned into ε-constraints.
	Bounded []int

	// Primary is the fully-considered objective.
	Primary int

	// Steps holds the step count per bounded objective.
	Steps []int

	// TotalBudget, when positive, is divided dynamically across the grid
	// and takes priority over PerIterationLimit.
	TotalBudget time.Duration

	// PerIterationLimit, when positive, is the fixed limit of every solve.
	PerIterationLimit time.Duration

	// AcceptTimeLimitIncumbent admits time-limited incumbents into the
	// archive as unproven points.
	AcceptTimeLimitIncumbent bool

	// DebugIIS requests an IIS export after every INFEASIBLE solve.
	DebugIIS bool
	IISDir   string
}

// Validate checks the configuration against n_z objectives.
func (c EnumConfig) Validate(nz int) error {
	if c.Primary < 1 || c.Primary > nz {
		return newConfigError(ErrCodePrimaryOutOfRange, "primary",
			"objective %d not in 1..%d", c.Primary, nz)
	}
	seen := make(map[int]bool, len(c.Bounded))
	for _, id := range c.Bounded {
		if id < 1 || id > nz {
			return newConfigError(ErrCodeBoundedOutOfRange, "bounded",
				"objective %d not in 1..%d", id, nz)
		}
		if id == c.Primary {
			return newConfigError(ErrCodeBoundedOverlapsPrimary, "bounded",
				"objective %d is the fully-considered objective", id)
		}
		if seen[id] {
			return newConfigError(ErrCodeDuplicateBounded, "bounded",
				"objective %d listed twice", id)
		}
		seen[id] = true
	}
	if len(c.Steps) != len(c.Bounded) {
		return newConfigError(ErrCodeStepsLengthMismatch, "steps",
			"got %d step counts for %d bounded objectives", len(c.Steps), len(c.Bounded))
	}
	for i, st := range c.Steps {
		if st < 0 {
			return newConfigError(ErrCodeNegativeSteps, "steps",
				"steps[%d] = %d", i, st)
		}
	}
	if c.TotalBudget < 0 {
		return newConfigError(ErrCodeNegativeTimeLimit, "total_budget", "got %s", c.TotalBudget)
	}
	if c.PerIterationLimit < 0 {
		return newConfigError(ErrCodeNegativeTimeLimit, "per_iteration_limit", "got %s", c.PerIterationLimit)
	}
	return nil
}

// BudgetMode reports whether the run divides a total budget.
func (c EnumConfig) BudgetMode() bool {
	return c.TotalBudget > 0
}

func (c EnumConfig) boundedIndices() []int {
	out := make([]int, len(c.Bounded))
	for i, id := range c.Bounded {
		out[i] = id - 1
	}
	return out
}

// VisitState is the final state of one grid point.
type VisitState string

const (
	VisitPending           VisitState = "PENDING"
	VisitSkippedDominated  VisitState = "SKIPPED_DOMINATED"
	VisitSkippedInfeasible VisitState = "SKIPPED_INFEASIBLE"
	VisitSolved            VisitState = "SOLVED"
)

// Visit records what happened at one grid point, in odometer order.
type Visit struct {
	Grid  ir.GridIndex
	Eps   ir.EpsilonVector
	State VisitState

	// Status, Limit and Elapsed are set for solved points only.
	Status  ir.Status
	Limit   oracle.Limit
	Elapsed time.Duration

	// Accepted is true when the solve produced an archive candidate.
	Accepted bool
}

// EnumResult is the outcome of one enumeration run.
type EnumResult struct {
	// Archive is the final non-dominated set N.
	Archive []ir.SolutionPoint

	// Infeasible holds the proven-infeasible ε-vectors I, in insertion order.
	Infeasible []ir.EpsilonVector

	Metrics ir.Metrics
	Visits  []Visit
}

// Enumerate runs the augmented ε-constraint enumeration for cardinality g.
//
// The configuration and the ideal/nadir vectors are validated before the
// first solve. One augmented model is opened for the whole run; only its
// ε right-hand sides and time limit change between grid points.
//
// INFEASIBLE, time-limited and unknown outcomes are recorded in the metrics
// and never fail the run. Oracle errors are returned unchanged (wrapped).
func Enumerate(ctx context.Context, p oracle.Problem, g int, in ir.IdealNadir, cfg EnumConfig, opts ...Option) (res *EnumResult, err error) {
	s := newSettings(opts)
	nz := p.NumObjectives()

	if err := cfg.Validate(nz); err != nil {
		return nil, err
	}
	if len(in.Ideal) != nz {
		return nil, newConfigError(ErrCodeBadVectorLength, "ideal", "got length %d, want %d", len(in.Ideal), nz)
	}
	if len(in.Nadir) != nz {
		return nil, newConfigError(ErrCodeBadVectorLength, "nadir", "got length %d, want %d", len(in.Nadir), nz)
	}

	bounded := cfg.boundedIndices()
	totalPoints := GridSize(cfg.Steps)

	d := &driver{
		settings: s,
		cfg:      cfg,
		nz:       nz,
		bounded:  bounded,
		in:       in,
		archive:  pareto.NewArchive(len(bounded)),
		memo:     pareto.NewInfeasibleMemo(len(bounded)),
	}
	d.metrics.GridPoints = totalPoints
	if cfg.BudgetMode() {
		d.budget = NewBudgetAllocator(cfg.TotalBudget, totalPoints, s.clock)
	}

	sub, err := p.Open(ctx, oracle.ModelRequest{
		Name:        "augmented_eps",
		Cardinality: g,
		Objective: oracle.Augmented{
			Primary: cfg.Primary - 1,
			Bounded: bounded,
			Ideal:   in.Ideal.Clone(),
			Nadir:   in.Nadir.Clone(),
		},
		Bounded: bounded,
	})
	if err != nil {
		return nil, fmt.Errorf("open augmented model: %w", err)
	}
	defer func() {
		if cerr := sub.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("close augmented model: %w", cerr)
		}
	}()
	d.sub = sub

	slog.Debug("enumeration started",
		"g", g,
		"grid_points", totalPoints,
		"bounded", cfg.Bounded,
		"steps", cfg.Steps,
		"budget_mode", cfg.BudgetMode(),
	)

	odo := NewOdometer(cfg.Steps)
	v := odo.Index()
	for processed := 1; ; processed++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		visit, err := d.visit(ctx, v, processed)
		if err != nil {
			return nil, err
		}
		d.visits = append(d.visits, visit)

		next, ok := odo.Next()
		if !ok {
			break
		}
		v = next
	}

	d.metrics.ArchiveSize = d.archive.Len()
	d.metrics.MemoSize = d.memo.Len()

	attrs := []any{
		"archive", d.metrics.ArchiveSize,
		"infeasible", d.metrics.MemoSize,
		"skipped_dominated", d.metrics.SkippedDominated,
		"skipped_infeasible", d.metrics.SkippedInfeasible,
	}
	if d.budget != nil {
		attrs = append(attrs, "budget_remaining", d.budget.Remaining())
	}
	slog.Debug("enumeration complete", attrs...)

	return &EnumResult{
		Archive:    d.archive.Points(),
		Infeasible: d.memo.Vectors(),
		Metrics:    d.metrics,
		Visits:     d.visits,
	}, nil
}

// driver holds the state of one enumeration run. Not safe for concurrent use.
type driver struct {
	*settings
	cfg     EnumConfig
	nz      int
	bounded []int
	in      ir.IdealNadir
	sub     oracle.Subproblem
	budget  *BudgetAllocator

	archive *pareto.Archive
	memo    *pareto.InfeasibleMemo
	metrics ir.Metrics
	visits  []Visit
}

func (d *driver) limit(processed int) oracle.Limit {
	if d.budget != nil {
		return oracle.Within(d.budget.Limit(processed))
	}
	return limitOf(d.cfg.PerIterationLimit)
}

func (d *driver) visit(ctx context.Context, v ir.GridIndex, processed int) (Visit, error) {
	eps, err := ComputeEpsilon(d.in.Nadir, d.in.Ideal, v, d.cfg.Steps, d.bounded)
	if err != nil {
		return Visit{}, err
	}
	visit := Visit{Grid: v, Eps: eps, State: VisitPending}

	covered, err := d.archive.Covers(eps)
	if err != nil {
		return Visit{}, err
	}
	if covered {
		d.metrics.SkippedDominated++
		visit.State = VisitSkippedDominated
		return visit, nil
	}
	infeasible, err := d.memo.Covers(eps)
	if err != nil {
		return Visit{}, err
	}
	if infeasible {
		d.metrics.SkippedInfeasible++
		visit.State = VisitSkippedInfeasible
		return visit, nil
	}

	if err := d.sub.SetEpsilon(eps); err != nil {
		return Visit{}, fmt.Errorf("set epsilon at v=(%s): %w", v.Key(), err)
	}
	visit.Limit = d.limit(processed)
	d.sub.SetTimeLimit(visit.Limit)

	res, err := d.solve(ctx, d.sub, fmt.Sprintf("eps: v=(%s) limit=%s", v.Key(), visit.Limit))
	if err != nil {
		return Visit{}, fmt.Errorf("solve at v=(%s): %w", v.Key(), err)
	}
	visit.State = VisitSolved
	visit.Status = res.Status
	visit.Elapsed = res.Elapsed

	switch {
	case res.Status == ir.StatusInfeasible:
		if err := d.memo.Add(eps); err != nil {
			return Visit{}, err
		}
		d.metrics.ProvenInfeasible++
		d.metrics.InfeasibleTime += res.Elapsed
		if d.cfg.DebugIIS {
			d.exportIIS(v)
		}

	case res.Status == ir.StatusOptimal:
		if !res.HasIncumbent() {
			return Visit{}, fmt.Errorf("solve at v=(%s): OPTIMAL without an objective vector", v.Key())
		}
		if err := d.accept(res, v, eps, true); err != nil {
			return Visit{}, err
		}
		visit.Accepted = true
		d.metrics.Solved++
		d.metrics.SolvedTime += res.Elapsed

	case res.Status == ir.StatusTimeLimit && res.HasIncumbent() && d.cfg.AcceptTimeLimitIncumbent:
		if err := d.accept(res, v, eps, false); err != nil {
			return Visit{}, err
		}
		visit.Accepted = true
		d.metrics.Solved++
		d.metrics.Unproven++
		d.metrics.SolvedTime += res.Elapsed

	default:
		d.metrics.Discarded++
		d.metrics.DiscardedTime += res.Elapsed
		slog.Debug("solve discarded", "v", v.Key(), "status", res.Status.String(), "incumbents", res.Incumbents)
	}

	return visit, nil
}

func (d *driver) accept(res oracle.Result, v ir.GridIndex, eps ir.EpsilonVector, proven bool) error {
	if len(res.Objectives) != d.nz {
		return fmt.Errorf("solve at v=(%s): oracle returned %d objectives, want %d",
			v.Key(), len(res.Objectives), d.nz)
	}
	z := res.Objectives.Clone()
	_, err := d.archive.Insert(ir.SolutionPoint{
		Z:        z,
		Eps:      eps.Clone(),
		Grid:     v.Clone(),
		ZBounded: z.Project(d.bounded),
		Status:   res.Status,
		Proven:   proven,
	})
	return err
}

// exportIIS writes an IIS for the current model. Failures are logged and
// never abort the run.
func (d *driver) exportIIS(v ir.GridIndex) {
	exp, ok := d.sub.(oracle.IISExporter)
	if !ok {
		slog.Debug("oracle cannot export IIS", "v", v.Key())
		return
	}
	dir := d.cfg.IISDir
	if dir == "" {
		dir = DefaultIISDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("IIS export failed", "v", v.Key(), "error", err)
		return
	}
	path := filepath.Join(dir, IISFileName(v))
	if err := exp.ExportIIS(path); err != nil {
		slog.Warn("IIS export failed", "v", v.Key(), "path", path, "error", err)
		return
	}
	slog.Debug("IIS exported", "v", v.Key(), "path", path)
}

// IISFileName names the IIS file of grid index v, e.g. "iis_v_0_2.yaml".
func IISFileName(v ir.GridIndex) string {
	return "iis_v_" + strings.ReplaceAll(v.Key(), ",", "_") + ".yaml"
}
