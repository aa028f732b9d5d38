package pareto

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/augeps/internal/ir"
)

func TestMemoCovers(t *testing.T) {
	m := NewInfeasibleMemo(2)
	require.NoError(t, m.Add(ir.EpsilonVector{20, 0}))

	tests := []struct {
		name string
		eps  ir.EpsilonVector
		want bool
	}{
		{"same vector", ir.EpsilonVector{20, 0}, true},
		{"tighter", ir.EpsilonVector{20, 20}, true},
		{"looser in one", ir.EpsilonVector{0, 20}, false},
		{"looser everywhere", ir.EpsilonVector{0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Covers(tt.eps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoAddCopies(t *testing.T) {
	m := NewInfeasibleMemo(1)
	eps := ir.EpsilonVector{3}
	require.NoError(t, m.Add(eps))
	eps[0] = 100

	assert.Equal(t, []ir.EpsilonVector{{3}}, m.Vectors())
	assert.Equal(t, 1, m.Len())
}

func TestMemoLengthChecks(t *testing.T) {
	m := NewInfeasibleMemo(2)
	assert.ErrorIs(t, m.Add(ir.EpsilonVector{1}), ErrLengthMismatch)
	_, err := m.Covers(ir.EpsilonVector{1, 2, 3})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestMemoMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		dim := 1 + rng.Intn(3)
		m := NewInfeasibleMemo(dim)
		eps1 := ir.EpsilonVector(randomVector(rng, dim, 5))
		require.NoError(t, m.Add(eps1))

		eps2 := eps1.Clone()
		for j := range eps2 {
			eps2[j] += float64(rng.Intn(3))
		}

		got, err := m.Covers(eps2)
		require.NoError(t, err)
		assert.True(t, got, "eps2=%v >= eps1=%v must be skipped", eps2, eps1)
	}
}
