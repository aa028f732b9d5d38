// Package store provides SQLite-backed persistence for enumeration runs.
//
// The store records one row per pipeline run plus its final archive and
// infeasibility memo:
//   - runs: outcome, g*, ideal/nadir/payoff, metrics, instance and config fingerprints
//   - solutions: the non-dominated archive N, in archive order
//   - infeasible: the proven-infeasible ε-vectors I, in insertion order
//
// Runs are ordered by seq, a store-assigned insertion counter, never by wall
// time. Vectors are stored as canonical JSON (internal/ir) so identical runs
// produce byte-identical rows.
//
// Writes are idempotent: writing a run ID twice keeps the first record.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
