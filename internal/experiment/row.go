package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/roach88/augeps/internal/instance"
	"github.com/roach88/augeps/internal/ir"
)

// Row is the result of one instance.
type Row struct {
	N          int
	Seed       int64
	RunID      string
	InstanceID string
	Size       instance.Size
	Knobs      instance.Knobs

	Outcome ir.Outcome

	// G is g*, or -1 when the pipeline failed.
	G       int
	Metrics ir.Metrics

	// CPU is the wall time of the whole pipeline, failures included.
	CPU time.Duration
}

// Failed reports whether the pipeline did not complete.
func (r Row) Failed() bool { return !r.Outcome.IsCompleted() }

// Columns are the CSV header, in table order.
var Columns = []string{
	"N",
	"p(n_i.n_j.n_t.n_k.n_ell.n_p.n_q)",
	"d",
	"u_i",
	"e_ijt",
	"c_i",
	"lik",
	"mkp",
	"v_i",
	"h_i",
	"r_iq",
	"t_iq",
	"|N|",
	"|I|",
	"skip^N",
	"skip^I",
	"time^N",
	"time^I",
	"g",
	"CPU(seconds)",
}

// Record renders the row in Columns order. Durations are whole seconds.
func (r Row) Record() []string {
	s, k, m := r.Size, r.Knobs, r.Metrics
	return []string{
		strconv.Itoa(r.N),
		fmt.Sprintf("p(%d.%d.%d.%d.%d.%d.%d)", s.Members, s.Defences, s.Roles, s.Days, s.Slots, s.Rooms, s.Subjects),
		strconv.Itoa(s.D),
		"[0.7, 0.3]",
		strconv.Itoa(k.FixedRoles),
		strconv.Itoa((s.Members + 1) / 2),
		formatLik(k.PLik0),
		formatMkp(k.PMkp0),
		formatPattern(k.PV21),
		formatPattern(k.PH21),
		strconv.Itoa(k.RiqPerMember),
		strconv.Itoa(k.TiqPerDefence),
		strconv.Itoa(m.ArchiveSize),
		strconv.Itoa(m.MemoSize),
		strconv.Itoa(m.SkippedDominated),
		strconv.Itoa(m.SkippedInfeasible),
		seconds(m.SolvedTime),
		seconds(m.InfeasibleTime),
		strconv.Itoa(r.G),
		seconds(r.CPU),
	}
}

// formatLik renders [p(lik=0), p(lik=1), p(lik=2)]; the two non-zero states
// share the remaining mass.
func formatLik(p0 float64) string {
	p1 := (1 - p0) / 2
	return fmt.Sprintf("[%.2f, %.2f, %.2f]", p0, p1, p1)
}

func formatMkp(p0 float64) string {
	return fmt.Sprintf("[%.2f, %.2f]", p0, 1-p0)
}

// formatPattern renders [p([1]), p([2,1])].
func formatPattern(p21 float64) string {
	return fmt.Sprintf("[%.1f, %.1f]", 1-p21, p21)
}

func seconds(d time.Duration) string {
	return strconv.FormatInt(int64(math.Round(d.Seconds())), 10)
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path, creating parent directories.
func WriteCSVFile(path string, rows []Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, rows)
}
