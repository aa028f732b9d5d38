package engine

import (
	"log/slog"

	"github.com/roach88/augeps/internal/oracle"
)

// Observer receives a notification around every oracle call. It is used for
// progress reporting only and never influences control flow.
//
// An observer's lifetime is one pipeline run.
type Observer interface {
	OnSolveStart(label string)
	OnSolveEnd(label string, res oracle.Result, err error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) OnSolveStart(string) {}
func (NopObserver) OnSolveEnd(string, oracle.Result, error) {}

// LogObserver numbers solves within a run and logs them.
type LogObserver struct {
	logger *slog.Logger
	count  int
}

// NewLogObserver creates a LogObserver. A nil logger uses slog.Default().
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

// OnSolveStart implements Observer.
func (o *LogObserver) OnSolveStart(label string) {
	o.count++
	o.logger.Info("solve started", "solve", o.count, "label", label)
}

// OnSolveEnd implements Observer.
func (o *LogObserver) OnSolveEnd(label string, res oracle.Result, err error) {
	if err != nil {
		o.logger.Error("solve failed", "solve", o.count, "label", label, "error", err)
		return
	}
	o.logger.Info("solve finished",
		"solve", o.count,
		"label", label,
		"status", res.Status.String(),
		"incumbents", res.Incumbents,
		"elapsed", res.Elapsed,
	)
}

// Count returns the number of solves started so far.
func (o *LogObserver) Count() int {
	return o.count
}
