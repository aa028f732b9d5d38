// Package harness runs enumeration scenarios against a scripted oracle.
//
// A scenario fixes the oracle's answers (Stage 1, one anchor per objective,
// and one result per ε-vector of the grid) together with a pipeline
// configuration, runs the full two-stage pipeline and checks the outcome.
//
// # Scenario Format
//
//	name: one_solution_then_infeasible
//	description: "first grid point solves, the rest are infeasible"
//	objectives: 3
//	config:
//	  bounded: [2, 3]
//	  primary: 1
//	  steps: [1, 1]
//	  total_budget: 12s
//	stage1: {status: OPTIMAL, z: [4], elapsed: 1s}
//	anchors:
//	  - {status: OPTIMAL, z: [10, 0, 0], elapsed: 1s}
//	  - {status: OPTIMAL, z: [0, 20, 0], elapsed: 1s}
//	  - {status: OPTIMAL, z: [0, 0, 20], elapsed: 1s}
//	grid:
//	  default: {status: INFEASIBLE, elapsed: 1s}
//	  points:
//	    "0,0": {status: OPTIMAL, z: [5, 10, 10], elapsed: 2s}
//	expect:
//	  outcome: completed
//	  g: 4
//	  archive: [[5, 10, 10]]
//	  infeasible: [[20, 0], [0, 20]]
//	  visits: [SOLVED, SOLVED, SOLVED, SKIPPED_INFEASIBLE]
//	  metrics: {skipped_infeasible: 1}
//
// Grid points are keyed by their ε-vector, formatted as in testutil.EpsKey.
// Points without an entry get grid.default.
//
// # Expectations
//
// Every expectation is optional; unset fields are not checked. Archive,
// infeasible, visit and limit lists are compared in order with go-cmp.
// Metrics are a subset match by name. A run that leaves a model open
// always fails.
//
// # Deterministic Testing
//
// Scenarios run on a fake clock advanced only by the scripted elapsed times,
// so time limits, budgets and durations in traces are exact. Run IDs are
// fixed per scenario. Traces are compared against golden files with
// RunWithGolden.
package harness
