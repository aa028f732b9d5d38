package engine

import (
	"math"

	"github.com/roach88/augeps/internal/ir"
)

// SafeExponent picks E such that 10^-E * M < 1, where M is the sum over all
// objectives of max(|lb|, |ub|).
//
// Adding 10^-E times the sum of the other objectives to an integral primary
// objective then never changes which integer value is optimal; it only breaks
// ties between solutions with the same primary value.
//
// Returns 1 when M <= 0, otherwise floor(log10(M)) + 2.
func SafeExponent(bounds []ir.Bound) int {
	var m float64
	for _, b := range bounds {
		m += math.Max(math.Abs(b.LB), math.Abs(b.UB))
	}
	if m <= 0 {
		return 1
	}
	return int(math.Floor(math.Log10(m))) + 2
}

// PerturbationWeight returns 10^-e.
func PerturbationWeight(e int) float64 {
	return math.Pow(10, -float64(e))
}
