package experiment

import (
	"math"
	"time"
)

// Stats summarizes a sample: count, best (minimum), mean and sample standard
// deviation.
type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

func calcStats(values []float64) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}
	best, sum := values[0], 0.0
	for _, v := range values {
		best = math.Min(best, v)
		sum += v
	}
	s.Best = best
	s.Mean = sum / float64(s.N)

	if s.N >= 2 {
		variance := 0.0
		for _, v := range values {
			d := v - s.Mean
			variance += d * d
		}
		s.Std = math.Sqrt(variance / float64(s.N-1))
	}
	return s
}

// Summary aggregates a table over its completed rows.
type Summary struct {
	Rows      int
	Completed int
	Failed    int

	// CPU is in seconds; Archive is |N|.
	CPU     Stats
	Archive Stats
}

// Summarize computes per-table statistics. Failed rows are counted but
// excluded from CPU and |N| statistics.
func Summarize(rows []Row) Summary {
	sum := Summary{Rows: len(rows)}
	var cpu, archive []float64
	for _, r := range rows {
		if r.Failed() {
			sum.Failed++
			continue
		}
		sum.Completed++
		cpu = append(cpu, r.CPU.Seconds())
		archive = append(archive, float64(r.Metrics.ArchiveSize))
	}
	sum.CPU = calcStats(cpu)
	sum.Archive = calcStats(archive)
	return sum
}

// TotalCPU is the summed wall time over all rows.
func TotalCPU(rows []Row) time.Duration {
	var d time.Duration
	for _, r := range rows {
		d += r.CPU
	}
	return d
}
