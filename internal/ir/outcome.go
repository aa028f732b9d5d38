package ir

import "fmt"

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind string

const (
	// OutcomeCompleted means the pipeline ran to the end of the grid.
	OutcomeCompleted OutcomeKind = "completed"

	// OutcomeFailed means the pipeline stopped on an unrecoverable error.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of running the pipeline on one instance:
// either Completed(metrics) or Failed(reason).
//
// The zero value is not a valid outcome; use Completed or Failed.
type Outcome struct {
	kind    OutcomeKind
	metrics Metrics
	reason  string
}

// Completed builds the successful variant.
func Completed(m Metrics) Outcome {
	return Outcome{kind: OutcomeCompleted, metrics: m}
}

// Failed builds the failure variant.
func Failed(reason string) Outcome {
	return Outcome{kind: OutcomeFailed, reason: reason}
}

// Kind returns the variant tag.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// IsCompleted reports whether o is the Completed variant.
func (o Outcome) IsCompleted() bool { return o.kind == OutcomeCompleted }

// Metrics returns the metrics of a Completed outcome. ok is false for Failed.
func (o Outcome) Metrics() (m Metrics, ok bool) {
	if o.kind != OutcomeCompleted {
		return Metrics{}, false
	}
	return o.metrics, true
}

// Reason returns the failure reason of a Failed outcome. ok is false for
// Completed.
func (o Outcome) Reason() (reason string, ok bool) {
	if o.kind != OutcomeFailed {
		return "", false
	}
	return o.reason, true
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o.kind {
	case OutcomeCompleted:
		return fmt.Sprintf("completed(|N|=%d |I|=%d)", o.metrics.ArchiveSize, o.metrics.MemoSize)
	case OutcomeFailed:
		return fmt.Sprintf("failed(%s)", o.reason)
	default:
		return "invalid outcome"
	}
}
