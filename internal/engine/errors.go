package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/augeps/internal/ir"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeBadVectorLength indicates an ideal, nadir or bound vector whose
	// length is not n_z.
	ErrCodeBadVectorLength ConfigErrorCode = "BAD_VECTOR_LENGTH"

	// ErrCodePrimaryOutOfRange indicates a fully-considered objective outside 1..n_z.
	ErrCodePrimaryOutOfRange ConfigErrorCode = "PRIMARY_OUT_OF_RANGE"

	// ErrCodeBoundedOutOfRange indicates a bounded objective outside 1..n_z.
	ErrCodeBoundedOutOfRange ConfigErrorCode = "BOUNDED_OUT_OF_RANGE"

	// ErrCodeBoundedOverlapsPrimary indicates the fully-considered objective
	// is also listed as bounded.
	ErrCodeBoundedOverlapsPrimary ConfigErrorCode = "BOUNDED_OVERLAPS_PRIMARY"

	// ErrCodeDuplicateBounded indicates a bounded objective listed twice.
	ErrCodeDuplicateBounded ConfigErrorCode = "DUPLICATE_BOUNDED"

	// ErrCodeStepsLengthMismatch indicates len(steps) != len(bounded).
	ErrCodeStepsLengthMismatch ConfigErrorCode = "STEPS_LENGTH_MISMATCH"

	// ErrCodeNegativeSteps indicates a negative step count.
	ErrCodeNegativeSteps ConfigErrorCode = "NEGATIVE_STEPS"

	// ErrCodeNegativeTimeLimit indicates a negative limit or budget.
	ErrCodeNegativeTimeLimit ConfigErrorCode = "NEGATIVE_TIME_LIMIT"
)

// ConfigError is returned for invalid configuration. It is always raised
// before the first oracle call.
type ConfigError struct {
	Code    ConfigErrorCode
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("config %s: %s", e.Code, e.Message)
}

func newConfigError(code ConfigErrorCode, field, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError returns true if err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Stage names a pipeline stage.
type Stage string

const (
	StageCardinality Stage = "stage1"
	StageIdealNadir  Stage = "ideal_nadir"
)

// PipelineError reports a Stage 1 or anchor solve that produced neither an
// optimum nor a time-limited incumbent. The pipeline cannot continue without
// g* or a complete payoff table.
type PipelineError struct {
	Stage Stage

	// Anchor is the 1-based objective of a failed anchor solve, 0 otherwise.
	Anchor int

	Status     ir.Status
	Incumbents int
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Anchor > 0 {
		return fmt.Sprintf("%s: anchor z%d not solved properly (status=%s, incumbents=%d)",
			e.Stage, e.Anchor, e.Status, e.Incumbents)
	}
	return fmt.Sprintf("%s: not solved properly (status=%s, incumbents=%d)",
		e.Stage, e.Status, e.Incumbents)
}

// IsPipelineError returns true if err is or wraps a *PipelineError.
func IsPipelineError(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe)
}
