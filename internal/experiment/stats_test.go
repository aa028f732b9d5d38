package experiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/augeps/internal/instance"
	"github.com/roach88/augeps/internal/ir"
)

func TestCalcStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Stats
	}{
		{"empty", nil, Stats{}},
		{"single", []float64{4}, Stats{N: 1, Best: 4, Mean: 4}},
		{"sample std", []float64{2, 4, 6}, Stats{N: 3, Best: 2, Mean: 4, Std: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calcStats(tt.values)
			assert.Equal(t, tt.want.N, got.N)
			assert.InDelta(t, tt.want.Best, got.Best, 1e-12)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-12)
		})
	}
}

func TestSummarize_SkipsFailedRows(t *testing.T) {
	rows := []Row{
		{Outcome: ir.Completed(ir.Metrics{}), CPU: 2 * time.Second, Metrics: ir.Metrics{ArchiveSize: 3}},
		{Outcome: ir.Failed("boom"), CPU: 100 * time.Second, G: -1},
		{Outcome: ir.Completed(ir.Metrics{}), CPU: 4 * time.Second, Metrics: ir.Metrics{ArchiveSize: 5}},
	}

	s := Summarize(rows)
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3.0, s.CPU.Mean)
	assert.Equal(t, 2.0, s.CPU.Best)
	assert.Equal(t, 4.0, s.Archive.Mean)
	assert.Equal(t, 106*time.Second, TotalCPU(rows))
}

func TestRecord_Formatting(t *testing.T) {
	row := Row{
		N:     65,
		Size:  instance.Large,
		Knobs: instance.NewKnobs(2, 0.78, 0.8, 0.7, 0.8),
		G:     40,
		CPU:   1500 * time.Millisecond,
		Metrics: ir.Metrics{
			ArchiveSize:    12,
			SolvedTime:     2499 * time.Millisecond,
			InfeasibleTime: 500 * time.Millisecond,
		},
	}
	rec := row.Record()
	assert.Len(t, rec, len(Columns))
	assert.Equal(t, "p(50.40.3.15.16.3.15)", rec[1])
	assert.Equal(t, "25", rec[5])
	assert.Equal(t, "[0.78, 0.11, 0.11]", rec[6])
	assert.Equal(t, "[0.80, 0.20]", rec[7])
	assert.Equal(t, "[0.7, 0.3]", rec[8])
	assert.Equal(t, "[0.8, 0.2]", rec[9])
	assert.Equal(t, "12", rec[12])
	assert.Equal(t, "2", rec[16])
	assert.Equal(t, "1", rec[17])
	assert.Equal(t, "40", rec[18])
	assert.Equal(t, "2", rec[19])
}
