package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
	"github.com/roach88/augeps/internal/testutil"
)

// twoBoundedSetup returns n_z = 3 with z1 fully considered and z2, z3
// bounded on [0, 20].
func twoBoundedSetup(steps ...int) (ir.IdealNadir, EnumConfig) {
	in := ir.IdealNadir{
		Ideal: ir.ObjectiveVector{10, 20, 20},
		Nadir: ir.ObjectiveVector{0, 0, 0},
	}
	cfg := EnumConfig{Bounded: []int{2, 3}, Primary: 1, Steps: steps}
	return in, cfg
}

func scriptByEps(results map[string]oracle.Result, fallback oracle.Result) func(ir.EpsilonVector) (oracle.Result, error) {
	return func(eps ir.EpsilonVector) (oracle.Result, error) {
		if res, ok := results[testutil.EpsKey(eps)]; ok {
			return res, nil
		}
		return fallback, nil
	}
}

func states(visits []Visit) []VisitState {
	out := make([]VisitState, len(visits))
	for i, v := range visits {
		out[i] = v.State
	}
	return out
}

func TestEnumerate_OneSolutionThenInfeasible(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid: scriptByEps(map[string]oracle.Result{
			"0,0": testutil.Optimal(5, 10, 10),
		}, testutil.Infeasible()),
	}
	in, cfg := twoBoundedSetup(1, 1)

	res, err := Enumerate(context.Background(), p, 4, in, cfg)
	require.NoError(t, err)

	grids := make([]ir.GridIndex, len(res.Visits))
	for i, v := range res.Visits {
		grids[i] = v.Grid
	}
	assert.Equal(t, []ir.GridIndex{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, grids)
	assert.Equal(t, []VisitState{VisitSolved, VisitSolved, VisitSolved, VisitSkippedInfeasible}, states(res.Visits))

	m := res.Metrics
	assert.Equal(t, 4, m.GridPoints)
	assert.Equal(t, 1, m.ArchiveSize)
	assert.Equal(t, 2, m.MemoSize)
	assert.Equal(t, 1, m.SkippedInfeasible)
	assert.Equal(t, 3, m.MemoSize+m.SkippedInfeasible, "every point after the first is infeasible")
	assert.Equal(t, 0, m.SkippedDominated)
	assert.Equal(t, 1, m.Solved)
	assert.Equal(t, 2, m.ProvenInfeasible)

	require.Len(t, res.Archive, 1)
	sp := res.Archive[0]
	assert.Equal(t, ir.ObjectiveVector{10, 10}, sp.ZBounded)
	assert.Equal(t, ir.ObjectiveVector{5, 10, 10}, sp.Z)
	assert.True(t, sp.Proven)
	assert.Equal(t, ir.StatusOptimal, sp.Status)

	assert.Equal(t, []ir.EpsilonVector{{20, 0}, {0, 20}}, res.Infeasible)

	require.Len(t, p.Requests, 1, "one augmented model per run")
	assert.Equal(t, []int{1, 2}, p.Requests[0].Bounded)
	assert.Equal(t, 4, p.Requests[0].Cardinality)
	assert.Equal(t, 0, p.Live())
}

func TestEnumerate_SkipsCoveredPoints(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid:       scriptByEps(nil, testutil.Optimal(5, 20, 20)),
	}
	in, cfg := twoBoundedSetup(2, 2)

	res, err := Enumerate(context.Background(), p, 4, in, cfg)
	require.NoError(t, err)

	assert.Equal(t, 9, res.Metrics.GridPoints)
	assert.Equal(t, 1, res.Metrics.Solved)
	assert.Equal(t, 8, res.Metrics.SkippedDominated)
	assert.Len(t, p.Epsilons, 1)
}

func TestEnumerate_TimeLimitIncumbents(t *testing.T) {
	for _, accept := range []bool{false, true} {
		t.Run(map[bool]string{false: "rejected", true: "accepted"}[accept], func(t *testing.T) {
			p := &testutil.ScriptedProblem{
				Objectives: 3,
				Grid: scriptByEps(map[string]oracle.Result{
					"0,0": testutil.TimeLimited(5, 8, 8),
				}, testutil.TimeLimited()),
			}
			in, cfg := twoBoundedSetup(1, 1)
			cfg.AcceptTimeLimitIncumbent = accept

			res, err := Enumerate(context.Background(), p, 4, in, cfg)
			require.NoError(t, err)

			m := res.Metrics
			assert.Equal(t, 0, m.MemoSize, "time-limited solves never prove infeasibility")
			assert.Equal(t, 0, m.SkippedInfeasible)
			if accept {
				require.Len(t, res.Archive, 1)
				assert.False(t, res.Archive[0].Proven)
				assert.Equal(t, 1, m.Solved)
				assert.Equal(t, 1, m.Unproven)
				assert.Equal(t, 3, m.Discarded)
			} else {
				assert.Empty(t, res.Archive)
				assert.Equal(t, 0, m.Solved)
				assert.Equal(t, 4, m.Discarded)
			}
		})
	}
}

func TestEnumerate_DiscardsOther(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid:       scriptByEps(nil, oracle.Result{Status: ir.StatusOther}),
	}
	in, cfg := twoBoundedSetup(1, 1)

	res, err := Enumerate(context.Background(), p, 4, in, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Metrics.Discarded)
	assert.Empty(t, res.Archive)
	assert.Empty(t, res.Infeasible)
}

func TestEnumerate_TimeLimitModes(t *testing.T) {
	tests := []struct {
		name        string
		total       time.Duration
		perIter     time.Duration
		wantBounded bool
		want        time.Duration
	}{
		{"no limit", 0, 0, false, 0},
		{"fixed", 0, 3 * time.Second, true, 3 * time.Second},
		{"budget wins", 8 * time.Second, 3 * time.Second, true, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &testutil.ScriptedProblem{
				Objectives: 3,
				Clock:      testutil.NewFakeClock(),
				Grid:       scriptByEps(nil, testutil.TimeLimited()),
			}
			in, cfg := twoBoundedSetup(1, 1)
			cfg.TotalBudget = tt.total
			cfg.PerIterationLimit = tt.perIter

			_, err := Enumerate(context.Background(), p, 4, in, cfg, WithClock(p.Clock))
			require.NoError(t, err)

			require.Len(t, p.Limits, 4)
			d, bounded := p.Limits[0].Duration()
			assert.Equal(t, tt.wantBounded, bounded)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestEnumerate_DynamicBudget(t *testing.T) {
	clock := testutil.NewFakeClock()
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Clock:      clock,
		Grid:       scriptByEps(nil, testutil.Took(testutil.TimeLimited(), time.Second)),
	}
	in, cfg := twoBoundedSetup(1, 1)
	cfg.TotalBudget = 8 * time.Second

	res, err := Enumerate(context.Background(), p, 4, in, cfg, WithClock(clock))
	require.NoError(t, err)

	want := []time.Duration{2 * time.Second, 7 * time.Second / 3, 3 * time.Second, 5 * time.Second}
	require.Len(t, p.Limits, len(want))
	for i, l := range p.Limits {
		d, bounded := l.Duration()
		assert.True(t, bounded)
		assert.Equal(t, want[i], d, "solve %d", i+1)
	}
	assert.Equal(t, 4*time.Second, res.Metrics.DiscardedTime)
}

func TestEnumerate_LogsRemainingBudget(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	clock := testutil.NewFakeClock()
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Clock:      clock,
		Grid:       scriptByEps(nil, testutil.Took(testutil.TimeLimited(), time.Second)),
	}
	in, cfg := twoBoundedSetup(1, 1)
	cfg.TotalBudget = 8 * time.Second

	_, err := Enumerate(context.Background(), p, 4, in, cfg, WithClock(clock))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="enumeration complete"`)
	assert.Contains(t, buf.String(), "budget_remaining=4s")
}

func TestEnumerate_FixedLimitOmitsRemainingBudget(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid:       scriptByEps(nil, testutil.Infeasible()),
	}
	in, cfg := twoBoundedSetup(1, 1)

	_, err := Enumerate(context.Background(), p, 4, in, cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="enumeration complete"`)
	assert.NotContains(t, buf.String(), "budget_remaining")
}

func TestEnumerate_ExhaustedBudgetStaysBounded(t *testing.T) {
	clock := testutil.NewFakeClock()
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Clock:      clock,
		Grid:       scriptByEps(nil, testutil.Took(testutil.TimeLimited(), 5*time.Second)),
	}
	in, cfg := twoBoundedSetup(1, 1)
	cfg.TotalBudget = time.Second

	_, err := Enumerate(context.Background(), p, 4, in, cfg, WithClock(clock))
	require.NoError(t, err)

	d, bounded := p.Limits[3].Duration()
	assert.True(t, bounded, "a spent budget must not turn into no limit")
	assert.Equal(t, time.Duration(0), d)
}

func TestEnumerate_InfeasibleTimeAccounting(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid: scriptByEps(map[string]oracle.Result{
			"0,0": testutil.Took(testutil.Optimal(5, 10, 10), 2*time.Second),
		}, testutil.Took(testutil.Infeasible(), 3*time.Second)),
	}
	in, cfg := twoBoundedSetup(1, 1)

	res, err := Enumerate(context.Background(), p, 4, in, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, res.Metrics.SolvedTime)
	assert.Equal(t, 6*time.Second, res.Metrics.InfeasibleTime)
}

func TestEnumerate_DebugIIS(t *testing.T) {
	dir := t.TempDir()
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		IISErr:     errors.New("no IIS today"),
		Grid: scriptByEps(map[string]oracle.Result{
			"0,0": testutil.Optimal(5, 10, 10),
		}, testutil.Infeasible()),
	}
	in, cfg := twoBoundedSetup(1, 1)
	cfg.DebugIIS = true
	cfg.IISDir = dir

	res, err := Enumerate(context.Background(), p, 4, in, cfg)
	require.NoError(t, err, "IIS export failures never abort the run")
	assert.Equal(t, 2, res.Metrics.ProvenInfeasible)
	assert.Equal(t, []string{
		filepath.Join(dir, "iis_v_1_0.yaml"),
		filepath.Join(dir, "iis_v_0_1.yaml"),
	}, p.IISPaths)
}

func TestEnumerate_OracleErrorPropagates(t *testing.T) {
	boom := errors.New("solver crashed")
	calls := 0
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid: func(ir.EpsilonVector) (oracle.Result, error) {
			calls++
			if calls == 2 {
				return oracle.Result{}, boom
			}
			return testutil.TimeLimited(), nil
		},
	}
	in, cfg := twoBoundedSetup(2, 2)

	res, err := Enumerate(context.Background(), p, 4, in, cfg)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, p.Live(), "model closed on error")
}

func TestEnumerate_OptimalWithoutObjectives(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid:       scriptByEps(nil, oracle.Result{Status: ir.StatusOptimal}),
	}
	in, cfg := twoBoundedSetup(1, 1)

	_, err := Enumerate(context.Background(), p, 4, in, cfg)
	assert.Error(t, err)
}

func TestEnumerate_WrongObjectiveCount(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid:       scriptByEps(nil, testutil.Optimal(5, 10)),
	}
	in, cfg := twoBoundedSetup(1, 1)

	_, err := Enumerate(context.Background(), p, 4, in, cfg)
	assert.Error(t, err)
}

func TestEnumerate_CancelledContext(t *testing.T) {
	p := &testutil.ScriptedProblem{Objectives: 3, Grid: scriptByEps(nil, testutil.Infeasible())}
	in, cfg := twoBoundedSetup(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Enumerate(ctx, p, 4, in, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.Epsilons)
	assert.Equal(t, 0, p.Live())
}

func TestEnumerate_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EnumConfig, *ir.IdealNadir)
		code   ConfigErrorCode
	}{
		{"primary out of range", func(c *EnumConfig, _ *ir.IdealNadir) { c.Primary = 4 }, ErrCodePrimaryOutOfRange},
		{"bounded out of range", func(c *EnumConfig, _ *ir.IdealNadir) { c.Bounded = []int{0, 3} }, ErrCodeBoundedOutOfRange},
		{"bounded overlaps primary", func(c *EnumConfig, _ *ir.IdealNadir) { c.Bounded = []int{1, 3} }, ErrCodeBoundedOverlapsPrimary},
		{"duplicate bounded", func(c *EnumConfig, _ *ir.IdealNadir) { c.Bounded = []int{3, 3} }, ErrCodeDuplicateBounded},
		{"steps length", func(c *EnumConfig, _ *ir.IdealNadir) { c.Steps = []int{1} }, ErrCodeStepsLengthMismatch},
		{"negative steps", func(c *EnumConfig, _ *ir.IdealNadir) { c.Steps = []int{1, -1} }, ErrCodeNegativeSteps},
		{"negative budget", func(c *EnumConfig, _ *ir.IdealNadir) { c.TotalBudget = -time.Second }, ErrCodeNegativeTimeLimit},
		{"negative limit", func(c *EnumConfig, _ *ir.IdealNadir) { c.PerIterationLimit = -time.Second }, ErrCodeNegativeTimeLimit},
		{"short ideal", func(_ *EnumConfig, in *ir.IdealNadir) { in.Ideal = in.Ideal[:2] }, ErrCodeBadVectorLength},
		{"long nadir", func(_ *EnumConfig, in *ir.IdealNadir) { in.Nadir = append(in.Nadir, 0) }, ErrCodeBadVectorLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &testutil.ScriptedProblem{Objectives: 3, Grid: scriptByEps(nil, testutil.Infeasible())}
			in, cfg := twoBoundedSetup(1, 1)
			tt.mutate(&cfg, &in)

			_, err := Enumerate(context.Background(), p, 4, in, cfg)
			require.Error(t, err)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, 0, p.Opened, "config errors come before any model")
		})
	}
}

type recordingObserver struct {
	started []string
	ended   []ir.Status
}

func (o *recordingObserver) OnSolveStart(label string) { o.started = append(o.started, label) }

func (o *recordingObserver) OnSolveEnd(_ string, res oracle.Result, _ error) {
	o.ended = append(o.ended, res.Status)
}

func TestEnumerate_NotifiesObserver(t *testing.T) {
	p := &testutil.ScriptedProblem{
		Objectives: 3,
		Grid: scriptByEps(map[string]oracle.Result{
			"0,0": testutil.Optimal(5, 10, 10),
		}, testutil.Infeasible()),
	}
	in, cfg := twoBoundedSetup(1, 1)
	obs := &recordingObserver{}

	_, err := Enumerate(context.Background(), p, 4, in, cfg, WithObserver(obs))
	require.NoError(t, err)

	require.Len(t, obs.started, 3)
	assert.Contains(t, obs.started[1], "v=(1,0)")
	assert.Equal(t, []ir.Status{ir.StatusOptimal, ir.StatusInfeasible, ir.StatusInfeasible}, obs.ended)
}

func TestIISFileName(t *testing.T) {
	assert.Equal(t, "iis_v_0_2_1.yaml", IISFileName(ir.GridIndex{0, 2, 1}))
}
