// Package instance models synthetic committee-scheduling instances.
//
// An instance schedules thesis defences: every defence needs a committee of
// Roles members and a (day, slot, room). The generator samples member and
// room availability with a two-state-plus-forced-zero Markov chain, draws
// eligibility and subject data, and then builds a finite pool of candidate
// schedules with a randomized greedy constructor. Each candidate carries the
// number of defences it schedules and its seven objective values in
// maximize-form:
//
//	z1 workload fairness      -Σ u_i load_i²
//	z2 subject coverage        covered subjects / total subjects
//	z3 suitability             Σ shared subjects between member and defence
//	z4 non-consecutive slots  -Σ u_i v_i (load_i - 1 - consecutive pairs_i)
//	z5 slot preference        -Σ u_i (2 - lik_i(k, ℓ))
//	z6 committee days         -Σ u_i days_i²
//	z7 room changes           -Σ u_i h_i changes_i
//
// The candidate pool is what the exhaustive oracle in oracle/enum optimizes
// over.
package instance
