package pareto

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when two compared vectors differ in length.
var ErrLengthMismatch = errors.New("pareto: vector length mismatch")

func checkLengths(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	return nil
}

// Dominates reports whether a strictly dominates b: a_i >= b_i for every i and
// a_i > b_i for at least one i. The relation is irreflexive and asymmetric.
func Dominates(a, b []float64) (bool, error) {
	if err := checkLengths(a, b); err != nil {
		return false, err
	}
	return dominates(a, b), nil
}

// Covers reports whether a_i >= b_i for every i (weak, componentwise order).
func Covers(a, b []float64) (bool, error) {
	if err := checkLengths(a, b); err != nil {
		return false, err
	}
	return covers(a, b), nil
}

func dominates(a, b []float64) bool {
	strict := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			strict = true
		}
	}
	return strict
}

func covers(a, b []float64) bool {
	for i := range a {
		if a[i] < b[i] {
			return false
		}
	}
	return true
}
