package harness

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/ir"
)

// Trace renders a result as JSON lines: one run header, one event per
// visited grid point, the final archive, the infeasibility memo, and the
// metrics. Every line is canonical JSON so traces diff byte-for-byte.
func Trace(res *Result) ([]byte, error) {
	var buf bytes.Buffer
	emit := func(event map[string]any) error {
		line, err := ir.MarshalCanonical(event)
		if err != nil {
			return fmt.Errorf("marshal %v event: %w", event["type"], err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
		return nil
	}

	r := res.Report
	if r == nil {
		reason, _ := res.Outcome.Reason()
		if err := emit(map[string]any{
			"type":     "run",
			"scenario": res.Scenario,
			"outcome":  string(res.Outcome.Kind()),
			"reason":   reason,
			"solves":   res.Solves,
		}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	events := []map[string]any{{
		"type":        "run",
		"scenario":    res.Scenario,
		"outcome":     string(res.Outcome.Kind()),
		"g":           r.G,
		"ideal":       r.IdealNadir.Ideal,
		"nadir":       r.IdealNadir.Nadir,
		"solves":      res.Solves,
		"stage1_time": r.Stage1Time.String(),
		"ideal_time":  r.IdealTime.String(),
		"enum_time":   r.EnumTime.String(),
		"elapsed":     r.Elapsed.String(),
	}}

	for i, v := range r.Enum.Visits {
		events = append(events, visitEvent(i, v))
	}
	for i, p := range r.Enum.Archive {
		events = append(events, map[string]any{
			"type":      "archive",
			"pos":       i,
			"z":         p.Z,
			"z_bounded": p.ZBounded,
			"eps":       p.Eps,
			"grid":      p.Grid,
			"status":    p.Status.String(),
			"proven":    p.Proven,
		})
	}
	for i, eps := range r.Enum.Infeasible {
		events = append(events, map[string]any{
			"type": "infeasible",
			"pos":  i,
			"eps":  eps,
		})
	}

	m := r.Enum.Metrics
	metrics := map[string]any{
		"type":            "metrics",
		"solved_time":     m.SolvedTime.String(),
		"infeasible_time": m.InfeasibleTime.String(),
		"discarded_time":  m.DiscardedTime.String(),
	}
	for name, n := range metricsByName(m) {
		metrics[name] = n
	}
	events = append(events, metrics)

	for _, e := range events {
		if err := emit(e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func visitEvent(seq int, v engine.Visit) map[string]any {
	event := map[string]any{
		"type":  "visit",
		"seq":   seq,
		"grid":  v.Grid,
		"eps":   v.Eps,
		"state": string(v.State),
	}
	if v.State == engine.VisitSolved {
		event["status"] = v.Status.String()
		event["limit"] = v.Limit.String()
		event["elapsed"] = v.Elapsed.String()
		event["accepted"] = v.Accepted
	}
	return event
}

// RunWithGolden runs a scenario, fails the test on unmet expectations and
// compares its trace with testdata/golden/<name>.golden.
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	res, err := Run(s)
	if err != nil {
		t.Fatalf("run scenario %q: %v", s.Name, err)
	}
	for _, f := range res.Failures {
		t.Errorf("%s: %s", s.Name, f)
	}
	AssertGolden(t, s.Name, res)
	return res
}

// AssertGolden compares a result's trace with its golden file. Run the
// tests with -update to rewrite the golden files.
func AssertGolden(t *testing.T, name string, res *Result) {
	t.Helper()

	trace, err := Trace(res)
	if err != nil {
		t.Fatalf("trace %q: %v", name, err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, trace)
}
