package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/instance"
	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
	"github.com/roach88/augeps/internal/oracle/enum"
	"github.com/roach88/augeps/internal/store"
)

// RunWriter persists finished runs. *store.Store implements it.
type RunWriter interface {
	WriteReport(ctx context.Context, meta store.RunMeta, r *engine.Report) error
	WriteFailure(ctx context.Context, meta store.RunMeta, reason string) error
}

var _ RunWriter = (*store.Store)(nil)

// Runner executes tables.
type Runner struct {
	Pipeline engine.PipelineConfig

	// Problem builds the oracle for an instance. Nil uses the exhaustive
	// oracle over the instance's candidate pool.
	Problem func(*instance.Instance) oracle.Problem

	// Store, when set, receives every row.
	Store RunWriter

	// InstancesDir, when set, receives every generated instance as YAML.
	InstancesDir string

	SkipErrors bool

	// Parallel bounds the number of instances in flight; <= 1 runs them in
	// table order.
	Parallel int

	Clock engine.Clock
	IDs   engine.RunIDGenerator

	// Logger, when set, gets a per-run LogObserver tagged with N.
	Logger *slog.Logger
}

// TableResult holds the rows of one table in table order.
type TableResult struct {
	Table   Table
	Rows    []Row
	Summary Summary
}

// Validate checks the runner configuration.
func (r *Runner) Validate() error {
	if r.Parallel < 0 {
		return fmt.Errorf("parallel must be >= 0 (got %d)", r.Parallel)
	}
	if r.Problem == nil {
		return r.Pipeline.Validate(instance.NumObjectives)
	}
	return nil
}

// RunTable runs every instance of t.
func (r *Runner) RunTable(ctx context.Context, t Table) (*TableResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	configHash, err := r.Pipeline.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint config: %w", err)
	}

	jobs := t.jobs()
	rows := make([]Row, len(jobs))

	slog.Info("table started", "table", t.Name, "size", t.Size.Name, "instances", len(jobs), "parallel", max(1, r.Parallel))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Parallel))
	for _, j := range jobs {
		j := j
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			row, err := r.runOne(gctx, t, j, configHash)
			if err != nil {
				return fmt.Errorf("table %s: instance %d: %w", t.Name, j.n, err)
			}
			rows[j.pos] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &TableResult{Table: t, Rows: rows, Summary: Summarize(rows)}
	slog.Info("table complete",
		"table", t.Name,
		"completed", res.Summary.Completed,
		"failed", res.Summary.Failed,
		"cpu_mean", res.Summary.CPU.Mean,
	)
	return res, nil
}

func (r *Runner) runOne(ctx context.Context, t Table, j job, configHash string) (Row, error) {
	inst, err := instance.Generate(t.Size, j.knobs, j.seed)
	if err != nil {
		return Row{}, err
	}
	inst.Name = t.instanceName(j)
	if r.InstancesDir != "" {
		if err := instance.Save(filepath.Join(r.InstancesDir, inst.Name+".yaml"), inst); err != nil {
			return Row{}, err
		}
	}
	fp, err := inst.Fingerprint()
	if err != nil {
		return Row{}, err
	}

	clock := r.clock()
	ids := r.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	runID := ids.Generate()

	opts := []engine.Option{
		engine.WithClock(clock),
		engine.WithRunIDGenerator(fixedID(runID)),
	}
	if r.Logger != nil {
		opts = append(opts, engine.WithObserver(engine.NewLogObserver(r.Logger.With("N", j.n))))
	}

	problem := r.problem(inst, clock)
	start := clock.Now()
	report, err := engine.RunTwoStage(ctx, problem, r.Pipeline, opts...)
	cpu := clock.Now().Sub(start)

	row := Row{
		N:          j.n,
		Seed:       j.seed,
		RunID:      runID,
		InstanceID: fp,
		Size:       t.Size,
		Knobs:      j.knobs,
		CPU:        cpu,
	}
	meta := store.RunMeta{RunID: runID, InstanceID: fp, InstanceName: inst.Name, ConfigHash: configHash}

	if err != nil {
		if !r.recoverable(ctx, err) {
			return Row{}, err
		}
		slog.Warn("instance failed pipeline", "table", t.Name, "N", j.n, "error", err)
		row.Outcome = ir.Failed(err.Error())
		row.G = -1
		if r.Store != nil {
			if err := r.Store.WriteFailure(ctx, meta, err.Error()); err != nil {
				return Row{}, fmt.Errorf("store failure: %w", err)
			}
		}
		return row, nil
	}

	row.Outcome = report.Outcome()
	row.G = report.G
	row.Metrics = report.Enum.Metrics
	if r.Store != nil {
		if err := r.Store.WriteReport(ctx, meta, report); err != nil {
			return Row{}, fmt.Errorf("store report: %w", err)
		}
	}
	return row, nil
}

// recoverable reports whether a failed instance becomes a failed row.
func (r *Runner) recoverable(ctx context.Context, err error) bool {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case engine.IsConfigError(err):
		return false
	case engine.IsPipelineError(err):
		return true
	default:
		return r.SkipErrors
	}
}

func (r *Runner) clock() engine.Clock {
	if r.Clock == nil {
		return engine.SystemClock{}
	}
	return r.Clock
}

func (r *Runner) problem(inst *instance.Instance, clock engine.Clock) oracle.Problem {
	if r.Problem != nil {
		return r.Problem(inst)
	}
	return enum.New(inst, enum.WithNow(clock.Now))
}

// fixedID hands the pipeline a run ID chosen by the runner, so failed runs
// are stored under an ID too.
type fixedID string

func (f fixedID) Generate() string { return string(f) }
