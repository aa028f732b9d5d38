// Package enum is an exhaustive oracle over an instance's candidate pool.
//
// The feasible region of a model with cardinality g is the set of candidates
// scheduling exactly g defences (any number under oracle.FreeCardinality),
// further restricted by the ε-constraints z_j >= eps_j. Solving scans the pool
// and keeps the best admissible candidate; the first one wins ties, so
// results are deterministic.
//
// Time limits are honored cooperatively: the deadline is checked every
// CheckEvery candidates and an expired scan returns TIME_LIMIT with whatever
// incumbent it has.
package enum
