package harness

import (
	"context"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
	"github.com/roach88/augeps/internal/testutil"
)

// Result is the outcome of running one scenario.
type Result struct {
	Scenario string

	// Report is nil when the pipeline failed.
	Report  *engine.Report
	Err     error
	Outcome ir.Outcome

	// Solves counts oracle calls seen by the observer.
	Solves int

	// LiveModels counts models the pipeline left open.
	LiveModels int

	Pass     bool
	Failures []string
}

// Run executes a scenario and checks its expectations. The returned error
// is reserved for scenarios that cannot run; expectation mismatches are
// reported in Result.Failures.
func Run(s *Scenario) (*Result, error) {
	if err := validateScenario(s); err != nil {
		return nil, err
	}

	clock := testutil.NewFakeClock()
	p := s.problem(clock)
	obs := &countingObserver{}

	report, err := engine.RunTwoStage(context.Background(), p, s.Config.pipeline(),
		engine.WithClock(clock),
		engine.WithObserver(obs),
		engine.WithRunIDGenerator(testutil.NewFixedIDGenerator("scenario-"+s.Name)),
	)

	res := &Result{
		Scenario:   s.Name,
		Report:     report,
		Err:        err,
		Outcome:    engine.OutcomeOf(report, err),
		Solves:     obs.solves,
		LiveModels: p.Live(),
	}
	res.Failures = check(s.Expect, res)
	res.Pass = len(res.Failures) == 0
	return res, nil
}

type countingObserver struct {
	solves int
}

func (o *countingObserver) OnSolveStart(string) { o.solves++ }
func (o *countingObserver) OnSolveEnd(string, oracle.Result, error) {}
