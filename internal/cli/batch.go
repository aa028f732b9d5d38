package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/experiment"
	"github.com/roach88/augeps/internal/plan"
	"github.com/roach88/augeps/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Out      string
	Database string
	Parallel int

	// IDs and Clock override the runner defaults (for testing).
	IDs   engine.RunIDGenerator
	Clock engine.Clock
}

// TableSummary is the per-table result of a batch.
type TableSummary struct {
	Name      string  `json:"name"`
	CSV       string  `json:"csv"`
	Rows      int     `json:"rows"`
	Completed int     `json:"completed"`
	Failed    int     `json:"failed"`
	CPUMean   float64 `json:"cpu_mean"`
	CPUStd    float64 `json:"cpu_std"`
	CPUBest   float64 `json:"cpu_best"`
	NMean     float64 `json:"archive_mean"`
}

// BatchResult holds every table of a batch, in plan order.
type BatchResult struct {
	Plan   string         `json:"plan"`
	Tables []TableSummary `json:"tables"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <plan.cue>",
		Short: "Run the scalability tables of an experiment plan",
		Long: `Run every table of a CUE experiment plan and write one CSV per table.

Each instance is generated, optionally saved under <out>/instances, and run
through the two-stage pipeline. Instances whose pipeline fails become failed
rows (g = -1); other errors abort the batch unless the plan sets skip_errors.

Example:
  augeps batch plan.cue --out results
  augeps batch plan.cue --out results --db runs.db --parallel 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "results", "output directory for CSV files")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to record runs in")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "instances in flight (0 = plan setting)")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	p, err := plan.Load(path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid plan", err)
	}
	if opts.Parallel < 0 {
		return out.Fail(ExitCommandError, CodeConfig,
			fmt.Sprintf("--parallel must be >= 0 (got %d)", opts.Parallel), nil)
	}

	runner := &experiment.Runner{
		Pipeline:   p.Pipeline,
		SkipErrors: p.SkipErrors,
		Parallel:   p.Parallel,
		Clock:      opts.Clock,
		IDs:        opts.IDs,
	}
	if opts.Parallel > 0 {
		runner.Parallel = opts.Parallel
	}
	if p.SaveInstances {
		runner.InstancesDir = filepath.Join(opts.Out, "instances")
	}
	if opts.Verbose {
		runner.Logger = slog.Default()
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		runner.Store = st
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	res := BatchResult{Plan: path, Tables: make([]TableSummary, 0, len(p.Tables))}
	for _, t := range p.Tables {
		tr, err := runner.RunTable(ctx, t)
		if err != nil {
			if engine.IsConfigError(err) {
				return out.Fail(ExitCommandError, CodeConfig, fmt.Sprintf("table %s", t.Name), err)
			}
			return out.Fail(ExitFailure, CodePipeline, fmt.Sprintf("table %s", t.Name), err)
		}

		csvPath := filepath.Join(opts.Out, t.Name+".csv")
		if err := experiment.WriteCSVFile(csvPath, tr.Rows); err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to write CSV", err)
		}
		out.VerboseLog("wrote %s (%d rows)", csvPath, len(tr.Rows))

		s := tr.Summary
		res.Tables = append(res.Tables, TableSummary{
			Name:      t.Name,
			CSV:       csvPath,
			Rows:      s.Rows,
			Completed: s.Completed,
			Failed:    s.Failed,
			CPUMean:   s.CPU.Mean,
			CPUStd:    s.CPU.Std,
			CPUBest:   s.CPU.Best,
			NMean:     s.Archive.Mean,
		})
	}

	return out.Success(res, func(w io.Writer) {
		for _, t := range res.Tables {
			fmt.Fprintf(w, "Table %s: %d instances (%d completed, %d failed) -> %s\n",
				t.Name, t.Rows, t.Completed, t.Failed, t.CSV)
			fmt.Fprintf(w, "  CPU mean=%.2fs std=%.2fs best=%.2fs  |N| mean=%.2f\n",
				t.CPUMean, t.CPUStd, t.CPUBest, t.NMean)
		}
	})
}
