// Package oracle defines the contract between the enumeration core and the
// optimization engine that actually solves a model.
//
// A Problem is the model builder for one instance: it reports the number of
// objectives, supplies conservative objective bounds, and opens Subproblems.
// A Subproblem is one model over the feasible region with a fixed cardinality
// and objective. Its ε-constraint right-hand sides and time limit may be
// changed between solves; whether the implementation reuses internal
// structure across solves is its own concern, each Solve is logically
// independent.
//
// Solve blocks. The core never preempts a solve; it passes a time Limit and
// relies on the implementation to honor it and report the best it has.
package oracle
