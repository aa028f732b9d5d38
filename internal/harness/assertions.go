package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/augeps/internal/engine"
)

// check compares a result with its expectation and returns one message per
// mismatch.
func check(want Expectation, res *Result) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	if res.LiveModels != 0 {
		fail("%d model(s) left open", res.LiveModels)
	}
	if got := res.Outcome.Kind(); got != want.Outcome {
		fail("outcome: got %s, want %s (err: %v)", got, want.Outcome, res.Err)
	}
	if want.ReasonContains != "" {
		reason, _ := res.Outcome.Reason()
		if !strings.Contains(reason, want.ReasonContains) {
			fail("reason: %q does not contain %q", reason, want.ReasonContains)
		}
	}
	if want.Solves != nil && *want.Solves != res.Solves {
		fail("solves: got %d, want %d", res.Solves, *want.Solves)
	}

	r := res.Report
	if r == nil {
		if want.G != nil || want.Archive != nil || want.Infeasible != nil ||
			want.Visits != nil || want.Limits != nil || want.Metrics != nil {
			fail("run produced no report to check")
		}
		return failures
	}

	if want.G != nil && *want.G != r.G {
		fail("g: got %d, want %d", r.G, *want.G)
	}

	if want.Archive != nil {
		got := make([][]float64, len(r.Enum.Archive))
		for i, p := range r.Enum.Archive {
			got[i] = p.Z
		}
		if diff := cmp.Diff(want.Archive, got, cmpopts.EquateEmpty()); diff != "" {
			fail("archive mismatch (-want +got):\n%s", diff)
		}
	}

	if want.Infeasible != nil {
		got := make([][]float64, len(r.Enum.Infeasible))
		for i, eps := range r.Enum.Infeasible {
			got[i] = eps
		}
		if diff := cmp.Diff(want.Infeasible, got, cmpopts.EquateEmpty()); diff != "" {
			fail("infeasible mismatch (-want +got):\n%s", diff)
		}
	}

	if want.Visits != nil {
		got := make([]engine.VisitState, len(r.Enum.Visits))
		for i, v := range r.Enum.Visits {
			got[i] = v.State
		}
		if diff := cmp.Diff(want.Visits, got); diff != "" {
			fail("visits mismatch (-want +got):\n%s", diff)
		}
	}

	if want.Limits != nil {
		var got []string
		for _, v := range r.Enum.Visits {
			if v.State == engine.VisitSolved {
				got = append(got, v.Limit.String())
			}
		}
		if diff := cmp.Diff(want.Limits, got, cmpopts.EquateEmpty()); diff != "" {
			fail("limits mismatch (-want +got):\n%s", diff)
		}
	}

	if want.Metrics != nil {
		all := metricsByName(r.Enum.Metrics)
		got := make(map[string]int, len(want.Metrics))
		for name := range want.Metrics {
			got[name] = all[name]
		}
		if diff := cmp.Diff(want.Metrics, got); diff != "" {
			fail("metrics mismatch (-want +got):\n%s", diff)
		}
	}

	return failures
}
