package instance

import (
	"fmt"
	"math"
	"math/rand"
)

// warmup is the number of discarded transitions before each day.
const warmup = 40

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// likDiagonal returns p(α|α) for member availability states 0, 1, 2.
func likDiagonal(pLik0 float64) ([]float64, error) {
	switch {
	case near(pLik0, 0.78):
		return []float64{0.95, 0.7, 0.7}, nil
	case near(pLik0, 0.82):
		return []float64{0.95, 0.63, 0.63}, nil
	case near(pLik0, 0.86):
		return []float64{0.95, 0.55, 0.55}, nil
	default:
		return nil, fmt.Errorf("p_lik0 must be one of 0.78, 0.82, 0.86 (got %g)", pLik0)
	}
}

// mkpDiagonal returns p(α|α) for room availability states 0, 1.
func mkpDiagonal(pMkp0 float64) ([]float64, error) {
	switch {
	case near(pMkp0, 0.8):
		return []float64{0.95, 0.7}, nil
	case near(pMkp0, 0.86):
		return []float64{0.95, 0.8}, nil
	default:
		return nil, fmt.Errorf("p_mkp0 must be one of 0.8, 0.86 (got %g)", pMkp0)
	}
}

// markov is an availability chain over base states 0..n-1. Entering state 0
// passes through d-1 forced zero states first, encoded as -1, -2, ...
type markov struct {
	rows   [][]float64
	forced int
}

// newMarkov spreads the leaving mass 1 - p(α|α) over the other states in
// proportion to their own diagonal probabilities.
func newMarkov(diag []float64, d int) *markov {
	var sum float64
	for _, p := range diag {
		sum += p
	}
	rows := make([][]float64, len(diag))
	for a := range diag {
		row := make([]float64, len(diag))
		var total float64
		for b := range diag {
			if a == b {
				row[b] = diag[a]
			} else {
				row[b] = diag[b] / sum * (1 - diag[a])
			}
			total += row[b]
		}
		for b := range row {
			row[b] /= total
		}
		rows[a] = row
	}
	return &markov{rows: rows, forced: max(d-1, 0)}
}

func (m *markov) step(rng *rand.Rand, cur int) int {
	if cur < 0 {
		next := cur - 1
		if -next > m.forced {
			return 0
		}
		return next
	}
	u := rng.Float64()
	var acc float64
	row := m.rows[cur]
	for b, p := range row {
		acc += p
		if u <= acc {
			return m.enter(cur, b)
		}
	}
	return m.enter(cur, len(row)-1)
}

func (m *markov) enter(cur, next int) int {
	if next == 0 && cur != 0 && m.forced > 0 {
		return -1
	}
	return next
}

// sample returns an availability matrix [day][slot]. Every day restarts
// from state 0 and runs the warm-up first.
func (m *markov) sample(rng *rand.Rand, days, slots int) [][]int {
	out := make([][]int, days)
	for k := range out {
		state := 0
		for i := 0; i < warmup; i++ {
			state = m.step(rng, state)
		}
		row := make([]int, slots)
		for l := range row {
			state = m.step(rng, state)
			row[l] = max(state, 0)
		}
		out[k] = row
	}
	return out
}
