package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/augeps/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Instance string
}

// RunListEntry is one line of the run listing.
type RunListEntry struct {
	RunID        string `json:"run_id"`
	Seq          int64  `json:"seq"`
	InstanceID   string `json:"instance_id"`
	InstanceName string `json:"instance_name"`
	Outcome      string `json:"outcome"`
	G            int    `json:"g"`
	ArchiveSize  int    `json:"archive_size"`
	MemoSize     int    `json:"memo_size"`
	Elapsed      string `json:"elapsed"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show recorded runs",
		Long: `List the runs recorded in a database, or show one run with its archive
and infeasibility memo.

Example:
  augeps show --db runs.db
  augeps show --db runs.db --instance <instance-id>
  augeps show --db runs.db 0192f1c4-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "only list runs of this instance ID")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if len(args) == 1 {
		detail, err := st.ReadRun(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return out.Fail(ExitCommandError, CodeNotFound, fmt.Sprintf("run %s not found", args[0]), nil)
		}
		if err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to read run", err)
		}
		view := detailView(detail)
		return out.SuccessRun(view.RunID, view, func(w io.Writer) {
			writeRunText(w, view)
		})
	}

	runs, err := st.ListRuns(cmd.Context(), opts.Instance)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to list runs", err)
	}
	entries := make([]RunListEntry, len(runs))
	for i, r := range runs {
		entries[i] = RunListEntry{
			RunID:        r.ID,
			Seq:          r.Seq,
			InstanceID:   r.InstanceID,
			InstanceName: r.InstanceName,
			Outcome:      string(r.Kind),
			G:            r.G,
			ArchiveSize:  r.Metrics.ArchiveSize,
			MemoSize:     r.Metrics.MemoSize,
			Elapsed:      roundMillis(r.Elapsed),
		}
	}

	return out.Success(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%4d  %s  %-9s g=%-3d |N|=%-3d |I|=%-3d %10s  %s\n",
				e.Seq, e.RunID, e.Outcome, e.G, e.ArchiveSize, e.MemoSize, e.Elapsed, e.InstanceName)
		}
	})
}
