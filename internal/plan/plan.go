package plan

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/experiment"
	"github.com/roach88/augeps/internal/instance"
)

//go:embed schema.cue
var schemaSrc string

// Plan is a decoded, validated experiment plan.
type Plan struct {
	Pipeline      engine.PipelineConfig
	Tables        []experiment.Table
	Parallel      int
	SkipErrors    bool
	SaveInstances bool
}

// Error is a plan error, positioned in the plan file when CUE knows where.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type rawTable struct {
	Size      string   `json:"size"`
	Grids     []string `json:"grids"`
	Reps      int      `json:"reps"`
	SeedStart int64    `json:"seed_start"`
	Name      *string  `json:"name,omitempty"`
	FirstID   *int     `json:"first_id,omitempty"`
}

type rawPlan struct {
	Primary int   `json:"primary"`
	Bounded []int `json:"bounded"`
	Steps   int   `json:"steps"`

	Stage1TimeLimit string  `json:"stage1_time_limit"`
	IdealTimeLimit  string  `json:"ideal_time_limit"`
	EpsTimeLimit    string  `json:"eps_time_limit"`
	BudgetEps       *string `json:"budget_eps,omitempty"`

	AcceptIncumbent bool   `json:"accept_incumbent"`
	DebugIIS        bool   `json:"debug_iis"`
	IISDir          string `json:"iis_dir"`

	Parallel      int  `json:"parallel"`
	SkipErrors    bool `json:"skip_errors"`
	SaveInstances bool `json:"save_instances"`

	Tables []rawTable `json:"tables"`
}

// Load reads and parses the plan at path.
func Load(path string) (*Plan, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(path, src)
}

// Parse unifies src with the plan schema and decodes the result.
func Parse(filename string, src []byte) (*Plan, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("plan schema: %w", err)
	}
	file := ctx.CompileBytes(src, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Plan")).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var raw rawPlan
	if err := v.Decode(&raw); err != nil {
		return nil, formatCUEError(err)
	}
	return raw.build()
}

func (r rawPlan) build() (*Plan, error) {
	stage1, err := parseDuration("stage1_time_limit", r.Stage1TimeLimit)
	if err != nil {
		return nil, err
	}
	ideal, err := parseDuration("ideal_time_limit", r.IdealTimeLimit)
	if err != nil {
		return nil, err
	}
	eps, err := parseDuration("eps_time_limit", r.EpsTimeLimit)
	if err != nil {
		return nil, err
	}

	steps := make([]int, len(r.Bounded))
	for i := range steps {
		steps[i] = r.Steps
	}
	p := &Plan{
		Pipeline: engine.PipelineConfig{
			Stage1TimeLimit: stage1,
			IdealTimeLimit:  ideal,
			Enum: engine.EnumConfig{
				Bounded:                  r.Bounded,
				Primary:                  r.Primary,
				Steps:                    steps,
				PerIterationLimit:        eps,
				AcceptTimeLimitIncumbent: r.AcceptIncumbent,
				DebugIIS:                 r.DebugIIS,
				IISDir:                   r.IISDir,
			},
		},
		Parallel:      r.Parallel,
		SkipErrors:    r.SkipErrors,
		SaveInstances: r.SaveInstances,
	}
	if r.BudgetEps != nil {
		budget, err := parseDuration("budget_eps", *r.BudgetEps)
		if err != nil {
			return nil, err
		}
		p.Pipeline.Enum.TotalBudget = budget
	}
	if err := p.Pipeline.Validate(instance.NumObjectives); err != nil {
		return nil, &Error{Field: "pipeline", Message: err.Error()}
	}

	for i, rt := range r.Tables {
		t, err := rt.build()
		if err != nil {
			return nil, &Error{Field: fmt.Sprintf("tables.%d", i), Message: err.Error()}
		}
		p.Tables = append(p.Tables, t)
	}
	return p, nil
}

func (rt rawTable) build() (experiment.Table, error) {
	size, err := instance.SizeByName(rt.Size)
	if err != nil {
		return experiment.Table{}, err
	}
	t, err := experiment.PaperTable(size, rt.SeedStart)
	if err != nil {
		return experiment.Table{}, err
	}
	t.Reps = rt.Reps
	t.Blocks = nil
	for _, name := range rt.Grids {
		grid, err := instance.GridByName(name)
		if err != nil {
			return experiment.Table{}, err
		}
		t.Blocks = append(t.Blocks, grid)
	}
	if rt.Name != nil {
		t.Name = *rt.Name
	}
	if rt.FirstID != nil {
		t.FirstID = *rt.FirstID
	}
	return t, t.Validate()
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &Error{Field: field, Message: err.Error()}
	}
	if d < 0 {
		return 0, &Error{Field: field, Message: fmt.Sprintf("must not be negative (got %s)", s)}
	}
	return d, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &Error{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
