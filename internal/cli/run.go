package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/instance"
	"github.com/roach88/augeps/internal/oracle/enum"
	"github.com/roach88/augeps/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	Primary int
	Bounded []int
	Steps   int

	Stage1TimeLimit time.Duration
	IdealTimeLimit  time.Duration
	EpsTimeLimit    time.Duration
	BudgetEps       time.Duration

	AcceptIncumbent bool
	DebugIIS        bool
	IISDir          string

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs engine.RunIDGenerator

	// Clock overrides the clock used by the oracle and the pipeline (for
	// testing). If nil, defaults to SystemClock.
	Clock engine.Clock
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	def := engine.DefaultEnumConfig()

	cmd := &cobra.Command{
		Use:   "run <instance.yaml>",
		Short: "Run the two-stage enumeration on one instance",
		Long: `Run Stage 1 (maximize the number of scheduled defences), estimate the
ideal and nadir points, then enumerate the ε-grid with the exhaustive oracle.

--tl-eps fixes the time limit of every ε-solve. --budget-eps instead divides a
total budget across the remaining grid points and takes priority.

Example:
  augeps run inst.yaml
  augeps run inst.yaml --steps 3 --budget-eps 10m --db runs.db
  augeps run inst.yaml --bounded 2,3,4 --tl-eps 30s --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnumeration(opts, args[0], cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Database, "db", "", "SQLite database to record the run in")
	f.IntVar(&opts.Primary, "primary", def.Primary, "fully-considered objective (1-based)")
	f.IntSliceVar(&opts.Bounded, "bounded", def.Bounded, "objectives bounded by ε-constraints (1-based)")
	f.IntVar(&opts.Steps, "steps", def.Steps[0], "grid steps per bounded objective")
	f.DurationVar(&opts.Stage1TimeLimit, "tl-stage1", 0, "Stage 1 time limit (0 = none)")
	f.DurationVar(&opts.IdealTimeLimit, "tl-ideal", 0, "time limit per ideal/nadir anchor (0 = none)")
	f.DurationVar(&opts.EpsTimeLimit, "tl-eps", 0, "time limit per ε-solve (0 = none)")
	f.DurationVar(&opts.BudgetEps, "budget-eps", 0, "total ε-enumeration budget (0 = fixed limits)")
	f.BoolVar(&opts.AcceptIncumbent, "accept-incumbent", false, "archive time-limited incumbents as unproven points")
	f.BoolVar(&opts.DebugIIS, "debug-iis", false, "export an IIS after every infeasible ε-solve")
	f.StringVar(&opts.IISDir, "iis-dir", engine.DefaultIISDir, "directory for IIS files")

	return cmd
}

// pipeline builds the pipeline configuration from the flags.
func (o *RunOptions) pipeline() engine.PipelineConfig {
	steps := make([]int, len(o.Bounded))
	for i := range steps {
		steps[i] = o.Steps
	}
	return engine.PipelineConfig{
		Stage1TimeLimit: o.Stage1TimeLimit,
		IdealTimeLimit:  o.IdealTimeLimit,
		Enum: engine.EnumConfig{
			Bounded:                  slices.Clone(o.Bounded),
			Primary:                  o.Primary,
			Steps:                    steps,
			TotalBudget:              o.BudgetEps,
			PerIterationLimit:        o.EpsTimeLimit,
			AcceptTimeLimitIncumbent: o.AcceptIncumbent,
			DebugIIS:                 o.DebugIIS,
			IISDir:                   o.IISDir,
		},
	}
}

func runEnumeration(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	cfg := opts.pipeline()
	if err := cfg.Validate(instance.NumObjectives); err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}
	configHash, err := cfg.Fingerprint()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to fingerprint configuration", err)
	}

	inst, err := instance.Load(path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeLoad, "failed to load instance", err)
	}
	instanceID, err := inst.Fingerprint()
	if err != nil {
		return out.Fail(ExitCommandError, CodeLoad, "failed to fingerprint instance", err)
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}
	meta := store.RunMeta{
		RunID:        ids.Generate(),
		InstanceID:   instanceID,
		InstanceName: inst.Name,
		ConfigHash:   configHash,
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	slog.Info("run starting", "run_id", meta.RunID, "instance", inst.Name, "candidates", len(inst.Candidates))
	report, err := engine.RunTwoStage(ctx, enum.New(inst, enum.WithNow(clock.Now)), cfg,
		engine.WithClock(clock),
		engine.WithRunIDGenerator(staticID(meta.RunID)),
		engine.WithObserver(engine.NewLogObserver(slog.Default().With("run_id", meta.RunID))),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return out.Fail(ExitFailure, CodePipeline, "run interrupted", err)
		}
		if st != nil && engine.IsPipelineError(err) {
			if werr := st.WriteFailure(context.Background(), meta, err.Error()); werr != nil {
				slog.Error("failed to record failed run", "run_id", meta.RunID, "error", werr)
			}
		}
		return out.Fail(ExitFailure, CodePipeline, "pipeline failed", err)
	}

	if st != nil {
		if err := st.WriteReport(ctx, meta, report); err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to record run", err)
		}
		out.VerboseLog("recorded run %s in %s", meta.RunID, opts.Database)
	}

	view := reportView(meta, report)
	return out.SuccessRun(meta.RunID, view, func(w io.Writer) {
		writeRunText(w, view)
		fmt.Fprintf(w, "stage1=%s ideal=%s enum=%s\n",
			roundMillis(report.Stage1Time), roundMillis(report.IdealTime), roundMillis(report.EnumTime))
	})
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// staticID hands the pipeline a run ID chosen before the run starts, so
// failed runs are recorded under it too.
type staticID string

func (s staticID) Generate() string { return string(s) }
