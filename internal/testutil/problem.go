package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
)

// ScriptedProblem is a deterministic stub oracle.
//
// Stage-1 solves return Stage1, anchor solves return Anchors[primary], and
// augmented solves return Grid(eps). Every call is recorded so tests can
// assert on limits, ε-vectors and model lifetimes. When Clock is set, each
// solve advances it by the result's Elapsed.
//
// Not safe for concurrent use.
type ScriptedProblem struct {
	Objectives int
	Bounds     []ir.Bound
	Clock      *FakeClock

	Stage1  oracle.Result
	Anchors []oracle.Result
	Grid    func(eps ir.EpsilonVector) (oracle.Result, error)

	// OpenErr fails every Open. IISErr fails every IIS export.
	OpenErr error
	IISErr  error

	Requests []oracle.ModelRequest
	Limits   []oracle.Limit
	Epsilons []ir.EpsilonVector
	IISPaths []string
	Opened   int
	Closed   int
}

var _ oracle.Problem = (*ScriptedProblem)(nil)

// NumObjectives implements oracle.Problem.
func (p *ScriptedProblem) NumObjectives() int { return p.Objectives }

// ObjectiveBounds implements oracle.Problem. Without scripted bounds every
// objective is bounded by [-10, 0].
func (p *ScriptedProblem) ObjectiveBounds() ([]ir.Bound, error) {
	if p.Bounds != nil {
		return p.Bounds, nil
	}
	out := make([]ir.Bound, p.Objectives)
	for i := range out {
		out[i] = ir.Bound{LB: -10, UB: 0}
	}
	return out, nil
}

// Open implements oracle.Problem.
func (p *ScriptedProblem) Open(_ context.Context, req oracle.ModelRequest) (oracle.Subproblem, error) {
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	p.Opened++
	p.Requests = append(p.Requests, req)
	return &scriptedModel{p: p, req: req}, nil
}

// Live returns the number of models opened and not yet closed.
func (p *ScriptedProblem) Live() int { return p.Opened - p.Closed }

type scriptedModel struct {
	p      *ScriptedProblem
	req    oracle.ModelRequest
	eps    ir.EpsilonVector
	limit  oracle.Limit
	closed bool
}

func (m *scriptedModel) SetEpsilon(eps ir.EpsilonVector) error {
	if len(eps) != len(m.req.Bounded) {
		return fmt.Errorf("scripted model %s: got %d epsilons for %d bounded objectives",
			m.req.Name, len(eps), len(m.req.Bounded))
	}
	m.eps = eps.Clone()
	return nil
}

func (m *scriptedModel) SetTimeLimit(limit oracle.Limit) { m.limit = limit }

func (m *scriptedModel) Solve(context.Context) (oracle.Result, error) {
	if m.closed {
		return oracle.Result{}, errors.New("scripted model: solve after close")
	}
	m.p.Limits = append(m.p.Limits, m.limit)

	var (
		res oracle.Result
		err error
	)
	switch obj := m.req.Objective.(type) {
	case oracle.Count:
		res = m.p.Stage1
	case oracle.Anchor:
		if obj.Primary >= len(m.p.Anchors) {
			return oracle.Result{}, fmt.Errorf("scripted model: no anchor result for z%d", obj.Primary+1)
		}
		res = m.p.Anchors[obj.Primary]
	case oracle.Augmented:
		m.p.Epsilons = append(m.p.Epsilons, m.eps.Clone())
		if m.p.Grid == nil {
			return oracle.Result{}, errors.New("scripted model: no grid script")
		}
		res, err = m.p.Grid(m.eps)
	default:
		return oracle.Result{}, fmt.Errorf("scripted model: unsupported objective %T", obj)
	}
	if err != nil {
		return oracle.Result{}, err
	}
	if m.p.Clock != nil {
		m.p.Clock.Advance(res.Elapsed)
	}
	res.Objectives = res.Objectives.Clone()
	return res, nil
}

func (m *scriptedModel) ExportIIS(path string) error {
	m.p.IISPaths = append(m.p.IISPaths, path)
	return m.p.IISErr
}

func (m *scriptedModel) Close() error {
	if m.closed {
		return errors.New("scripted model: closed twice")
	}
	m.closed = true
	m.p.Closed++
	return nil
}

// Optimal returns an OPTIMAL result with one incumbent.
func Optimal(z ...float64) oracle.Result {
	return oracle.Result{Status: ir.StatusOptimal, Objectives: z, Value: first(z), Incumbents: 1}
}

// TimeLimited returns a TIME_LIMIT result, with an incumbent when z is given.
func TimeLimited(z ...float64) oracle.Result {
	if len(z) == 0 {
		return oracle.Result{Status: ir.StatusTimeLimit}
	}
	return oracle.Result{Status: ir.StatusTimeLimit, Objectives: z, Value: first(z), Incumbents: 1}
}

// Infeasible returns an INFEASIBLE result.
func Infeasible() oracle.Result {
	return oracle.Result{Status: ir.StatusInfeasible}
}

// Took returns res with Elapsed set to d.
func Took(res oracle.Result, d time.Duration) oracle.Result {
	res.Elapsed = d
	return res
}

// EpsKey renders an ε-vector as "a,b,..." using the shortest float form.
func EpsKey(eps ir.EpsilonVector) string {
	parts := make([]string, len(eps))
	for i, e := range eps {
		parts[i] = strconv.FormatFloat(e, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func first(z []float64) float64 {
	if len(z) == 0 {
		return 0
	}
	return z[0]
}
