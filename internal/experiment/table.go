package experiment

import (
	"errors"
	"fmt"

	"github.com/roach88/augeps/internal/instance"
)

// Table describes one scalability table.
type Table struct {
	// Name labels the table in logs and file names, e.g. "C.1".
	Name string

	Size instance.Size

	// Blocks are run in order; each knob row of a block is repeated Reps
	// times.
	Blocks [][]instance.Knobs
	Reps   int

	SeedStart int64

	// FirstID is the N of the first instance.
	FirstID int
}

// Validate checks that the table describes at least one instance.
func (t Table) Validate() error {
	if err := t.Size.Validate(); err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	if t.Reps <= 0 {
		return fmt.Errorf("table %s: reps must be > 0 (got %d)", t.Name, t.Reps)
	}
	if len(t.jobs()) == 0 {
		return fmt.Errorf("table %s: no knob rows", t.Name)
	}
	for b, block := range t.Blocks {
		for i, k := range block {
			if err := k.Validate(t.Size); err != nil {
				return fmt.Errorf("table %s: block %d row %d: %w", t.Name, b, i, err)
			}
		}
	}
	return nil
}

// PaperTable returns the paper layout for a size: both knob grids, two
// repetitions each, instance numbering continuing across sizes.
func PaperTable(size instance.Size, seedStart int64) (Table, error) {
	first := map[string]int{"small": 1, "medium": 33, "large": 65}
	suffix := map[string]string{"small": "C.1", "medium": "C.2", "large": "C.3"}
	id, ok := first[size.Name]
	if !ok {
		return Table{}, errors.New("paper tables exist for small, medium and large only")
	}
	return Table{
		Name:      suffix[size.Name],
		Size:      size,
		Blocks:    [][]instance.Knobs{instance.GridFixed2, instance.GridFixed1},
		Reps:      2,
		SeedStart: seedStart,
		FirstID:   id,
	}, nil
}

type job struct {
	pos   int
	n     int
	seed  int64
	knobs instance.Knobs
}

func (t Table) jobs() []job {
	var out []job
	for _, block := range t.Blocks {
		for _, k := range block {
			for rep := 0; rep < t.Reps; rep++ {
				pos := len(out)
				out = append(out, job{
					pos:   pos,
					n:     t.FirstID + pos,
					seed:  t.SeedStart + int64(pos),
					knobs: k,
				})
			}
		}
	}
	return out
}

// instanceName is unique within a table and names the saved instance file.
func (t Table) instanceName(j job) string {
	return fmt.Sprintf("%s_N%d_seed%d_roles%d_plik%.2f_pmkp%.2f_pv%.1f_ph%.1f",
		t.Size.Name, j.n, j.seed, j.knobs.FixedRoles,
		j.knobs.PLik0, j.knobs.PMkp0, j.knobs.PV21, j.knobs.PH21)
}
