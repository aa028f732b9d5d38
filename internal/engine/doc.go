// Package engine implements the augmented ε-constraint enumeration core.
//
// ARCHITECTURE:
//
// Pipeline (RunTwoStage):
//  1. Stage 1: MaximizeCardinality fixes g*, the maximum number of scheduled
//     items. Every later model is defined relative to g*.
//  2. EstimateIdealNadir issues one anchor solve per objective
//     (z_i + 10^-E * sum of the others) and reads the ideal point off the
//     payoff-table diagonal and the approximate nadir off its column minima.
//  3. Enumerate walks the ε-grid between nadir and ideal with an odometer,
//     pruning with the non-dominated archive and the infeasibility memo, and
//     solving the augmented ε-constraint model at every remaining point.
//
// Single-Threaded Enumeration:
// One goroutine drives a run. The archive, the memo and the metrics are owned
// by the run and never shared, so no locking is involved. The only blocking
// point is the oracle call; the driver never preempts it and relies on the
// time limit it passes in.
//
// Time Budgets:
// Enumeration runs either with a fixed per-solve limit or with a total budget
// that is re-divided before every solve by the points still to be processed
// (BudgetAllocator). Budget mode wins when both are configured.
//
// Failure Model:
//   - Invalid configuration fails with *ConfigError before any solve.
//   - Stage 1 and anchor solves without a usable result fail with
//     *PipelineError.
//   - INFEASIBLE and no-incumbent outcomes inside the grid are expected and
//     never fail the run.
//   - Oracle errors propagate unchanged; skipping an instance is the batch
//     runner's decision.
package engine
