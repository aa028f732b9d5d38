package enum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/augeps/internal/instance"
	"github.com/roach88/augeps/internal/ir"
	"github.com/roach88/augeps/internal/oracle"
)

// DefaultCheckEvery is how many candidates are scanned between deadline checks.
const DefaultCheckEvery = 64

// Tolerance absorbs rounding in ε-constraint checks and objective ties.
const Tolerance = 1e-9

// Problem implements oracle.Problem over one instance.
type Problem struct {
	inst       *instance.Instance
	now        func() time.Time
	checkEvery int
}

var _ oracle.Problem = (*Problem)(nil)

// Option configures a Problem.
type Option func(*Problem)

// WithNow replaces time.Now, typically with a fake clock's Now.
func WithNow(now func() time.Time) Option {
	return func(p *Problem) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCheckEvery sets how many candidates are scanned between deadline checks.
func WithCheckEvery(n int) Option {
	return func(p *Problem) {
		if n > 0 {
			p.checkEvery = n
		}
	}
}

// New creates an oracle for inst.
func New(inst *instance.Instance, opts ...Option) *Problem {
	p := &Problem{inst: inst, now: time.Now, checkEvery: DefaultCheckEvery}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NumObjectives implements oracle.Problem.
func (p *Problem) NumObjectives() int { return instance.NumObjectives }

// ObjectiveBounds implements oracle.Problem.
func (p *Problem) ObjectiveBounds() ([]ir.Bound, error) {
	return p.inst.Bounds(), nil
}

// Open implements oracle.Problem.
func (p *Problem) Open(_ context.Context, req oracle.ModelRequest) (oracle.Subproblem, error) {
	if req.Objective == nil {
		return nil, fmt.Errorf("open %s: no objective", req.Name)
	}
	for _, j := range req.Bounded {
		if j < 0 || j >= instance.NumObjectives {
			return nil, fmt.Errorf("open %s: bounded objective index %d out of range", req.Name, j)
		}
	}
	if req.Cardinality != oracle.FreeCardinality && req.Cardinality < 0 {
		return nil, fmt.Errorf("open %s: negative cardinality %d", req.Name, req.Cardinality)
	}
	return &Model{p: p, req: req}, nil
}

// Model is one open model. It implements oracle.Subproblem and
// oracle.IISExporter.
type Model struct {
	p      *Problem
	req    oracle.ModelRequest
	eps    ir.EpsilonVector
	limit  oracle.Limit
	closed bool
}

var (
	_ oracle.Subproblem  = (*Model)(nil)
	_ oracle.IISExporter = (*Model)(nil)
)

// ErrClosed is returned by operations on a closed model.
var ErrClosed = errors.New("enum: model closed")

// SetEpsilon implements oracle.Subproblem.
func (m *Model) SetEpsilon(eps ir.EpsilonVector) error {
	if m.closed {
		return ErrClosed
	}
	if len(eps) != len(m.req.Bounded) {
		return fmt.Errorf("enum: got %d epsilons for %d bounded objectives", len(eps), len(m.req.Bounded))
	}
	m.eps = eps.Clone()
	return nil
}

// SetTimeLimit implements oracle.Subproblem.
func (m *Model) SetTimeLimit(limit oracle.Limit) { m.limit = limit }

// Solve implements oracle.Subproblem.
func (m *Model) Solve(ctx context.Context) (oracle.Result, error) {
	if m.closed {
		return oracle.Result{}, ErrClosed
	}
	start := m.p.now()
	d, bounded := m.limit.Duration()
	deadline := start.Add(d)
	constraints := m.constraints()

	var (
		res  = oracle.Result{Status: ir.StatusInfeasible}
		best = -1
	)
	for c, cand := range m.p.inst.Candidates {
		if c%m.p.checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return oracle.Result{}, err
			}
			if bounded && !m.p.now().Before(deadline) {
				res.Status = ir.StatusTimeLimit
				break
			}
		}
		if !satisfies(constraints, cand) {
			continue
		}
		value, ok := m.req.Objective.Evaluate(cand.Z, cand.Scheduled)
		if !ok {
			continue
		}
		res.Incumbents++
		if best < 0 || value > res.Value+Tolerance {
			best = c
			res.Value = value
		}
	}

	if best >= 0 {
		res.Objectives = m.p.inst.Candidates[best].Z.Clone()
		if res.Status == ir.StatusInfeasible {
			res.Status = ir.StatusOptimal
		}
	} else {
		res.Value = 0
	}
	res.Elapsed = m.p.now().Sub(start)
	return res, nil
}

// Close implements oracle.Subproblem.
func (m *Model) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}
