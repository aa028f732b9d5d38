package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/store"
)

// MetricsView is the JSON form of ir.Metrics. Durations are strings.
type MetricsView struct {
	GridPoints        int    `json:"grid_points"`
	ArchiveSize       int    `json:"archive_size"`
	MemoSize          int    `json:"memo_size"`
	SkippedDominated  int    `json:"skipped_dominated"`
	SkippedInfeasible int    `json:"skipped_infeasible"`
	Solved            int    `json:"solved"`
	ProvenInfeasible  int    `json:"proven_infeasible"`
	Discarded         int    `json:"discarded"`
	Unproven          int    `json:"unproven"`
	SolvedTime        string `json:"solved_time"`
	InfeasibleTime    string `json:"infeasible_time"`
	DiscardedTime     string `json:"discarded_time"`
}

// PointView is one archived solution.
type PointView struct {
	Z        []float64 `json:"z"`
	ZBounded []float64 `json:"z_bounded"`
	Eps      []float64 `json:"eps"`
	Grid     []int     `json:"grid"`
	Status   string    `json:"status"`
	Proven   bool      `json:"proven"`
}

// RunView is a run as printed by the run and show commands.
type RunView struct {
	RunID        string       `json:"run_id"`
	InstanceID   string       `json:"instance_id"`
	InstanceName string       `json:"instance_name,omitempty"`
	Outcome      string       `json:"outcome"`
	Reason       string       `json:"reason,omitempty"`
	G            int          `json:"g"`
	Ideal        []float64    `json:"ideal,omitempty"`
	Nadir        []float64    `json:"nadir,omitempty"`
	Archive      []PointView  `json:"archive,omitempty"`
	Infeasible   [][]float64  `json:"infeasible,omitempty"`
	Metrics      *MetricsView `json:"metrics,omitempty"`
	Elapsed      string       `json:"elapsed"`
}

func metricsView(m ir.Metrics) *MetricsView {
	return &MetricsView{
		GridPoints:        m.GridPoints,
		ArchiveSize:       m.ArchiveSize,
		MemoSize:          m.MemoSize,
		SkippedDominated:  m.SkippedDominated,
		SkippedInfeasible: m.SkippedInfeasible,
		Solved:            m.Solved,
		ProvenInfeasible:  m.ProvenInfeasible,
		Discarded:         m.Discarded,
		Unproven:          m.Unproven,
		SolvedTime:        m.SolvedTime.String(),
		InfeasibleTime:    m.InfeasibleTime.String(),
		DiscardedTime:     m.DiscardedTime.String(),
	}
}

func pointViews(points []ir.SolutionPoint) []PointView {
	out := make([]PointView, len(points))
	for i, p := range points {
		out[i] = PointView{
			Z:        p.Z,
			ZBounded: p.ZBounded,
			Eps:      p.Eps,
			Grid:     p.Grid,
			Status:   p.Status.String(),
			Proven:   p.Proven,
		}
	}
	return out
}

func epsViews(vs []ir.EpsilonVector) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func reportView(meta store.RunMeta, r *engine.Report) RunView {
	return RunView{
		RunID:        r.RunID,
		InstanceID:   meta.InstanceID,
		InstanceName: meta.InstanceName,
		Outcome:      string(ir.OutcomeCompleted),
		G:            r.G,
		Ideal:        r.IdealNadir.Ideal,
		Nadir:        r.IdealNadir.Nadir,
		Archive:      pointViews(r.Enum.Archive),
		Infeasible:   epsViews(r.Enum.Infeasible),
		Metrics:      metricsView(r.Enum.Metrics),
		Elapsed:      r.Elapsed.String(),
	}
}

func detailView(d *store.RunDetail) RunView {
	v := RunView{
		RunID:        d.Run.ID,
		InstanceID:   d.Run.InstanceID,
		InstanceName: d.Run.InstanceName,
		Outcome:      string(d.Run.Kind),
		Reason:       d.Run.Reason,
		G:            d.Run.G,
		Ideal:        d.Run.Ideal,
		Nadir:        d.Run.Nadir,
		Archive:      pointViews(d.Archive),
		Infeasible:   epsViews(d.Infeasible),
		Elapsed:      d.Run.Elapsed.String(),
	}
	if d.Run.Kind == ir.OutcomeCompleted {
		v.Metrics = metricsView(d.Run.Metrics)
	}
	return v
}

func writeRunText(w io.Writer, v RunView) {
	fmt.Fprintf(w, "Run %s (%s)\n", v.RunID, v.Outcome)
	name := v.InstanceName
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "  instance: %s %s\n", name, v.InstanceID)
	if v.Reason != "" {
		fmt.Fprintf(w, "  reason:   %s\n", v.Reason)
		return
	}
	fmt.Fprintf(w, "  g:        %d\n", v.G)
	fmt.Fprintf(w, "  ideal:    %s\n", formatFloats(v.Ideal))
	fmt.Fprintf(w, "  nadir:    %s\n", formatFloats(v.Nadir))
	fmt.Fprintf(w, "  elapsed:  %s\n", v.Elapsed)

	fmt.Fprintf(w, "\nArchive (|N|=%d):\n", len(v.Archive))
	for i, p := range v.Archive {
		mark := ""
		if !p.Proven {
			mark = " (unproven)"
		}
		fmt.Fprintf(w, "  %3d  v=(%s)  %-10s z=%s%s\n",
			i+1, formatInts(p.Grid), p.Status, formatFloats(p.Z), mark)
	}

	if len(v.Infeasible) > 0 {
		fmt.Fprintf(w, "\nInfeasible ε-vectors (|I|=%d):\n", len(v.Infeasible))
		for _, eps := range v.Infeasible {
			fmt.Fprintf(w, "  %s\n", formatFloats(eps))
		}
	}

	if m := v.Metrics; m != nil {
		fmt.Fprintf(w, "\nGrid points: %d  skip^N=%d  skip^I=%d  solved=%d  infeasible=%d  discarded=%d  unproven=%d\n",
			m.GridPoints, m.SkippedDominated, m.SkippedInfeasible,
			m.Solved, m.ProvenInfeasible, m.Discarded, m.Unproven)
		fmt.Fprintf(w, "time^N=%s  time^I=%s  discarded=%s\n",
			m.SolvedTime, m.InfeasibleTime, m.DiscardedTime)
	}
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func roundMillis(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
