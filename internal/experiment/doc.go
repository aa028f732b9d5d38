// Package experiment runs scalability tables: batches of generated instances
// pushed through the two-stage pipeline, one row per instance.
//
// A Table fixes a size preset, a list of knob blocks and a repetition count.
// Instance N of a table uses seed SeedStart+N-FirstID, so a table is
// reproducible from its definition alone.
//
// A pipeline failure (Stage 1 or an anchor not solved properly) does not stop
// the table: the row is recorded as failed with g = -1 and zero counts. Other
// errors abort the table unless Runner.SkipErrors is set. Configuration errors
// and cancellation always abort.
//
// Instances run one at a time unless Runner.Parallel > 1. Each instance still
// runs its own single-threaded pipeline; rows are returned in table order
// regardless of completion order.
package experiment
