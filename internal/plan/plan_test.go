package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/augeps/internal/engine"
	"github.com/roach88/augeps/internal/instance"
)

func TestParse_Defaults(t *testing.T) {
	p, err := Parse("min.cue", []byte(`tables: [{size: "small"}]`))
	require.NoError(t, err)

	want := engine.EnumConfig{
		Bounded:           []int{3, 4},
		Primary:           1,
		Steps:             []int{5, 5},
		PerIterationLimit: 60 * time.Second,
		IISDir:            engine.DefaultIISDir,
	}
	assert.Equal(t, want, p.Pipeline.Enum)
	assert.False(t, p.Pipeline.Enum.AcceptTimeLimitIncumbent, "unproven incumbents are opt-in")
	assert.Equal(t, 60*time.Second, p.Pipeline.Stage1TimeLimit)
	assert.Equal(t, 60*time.Second, p.Pipeline.IdealTimeLimit)
	assert.Equal(t, 1, p.Parallel)
	assert.False(t, p.SkipErrors)
	assert.False(t, p.SaveInstances)

	require.Len(t, p.Tables, 1)
	tab := p.Tables[0]
	assert.Equal(t, "C.1", tab.Name)
	assert.Equal(t, instance.Small, tab.Size)
	assert.Equal(t, 2, tab.Reps)
	assert.Equal(t, int64(1), tab.SeedStart)
	assert.Equal(t, 1, tab.FirstID)
	require.Len(t, tab.Blocks, 2)
	assert.Equal(t, instance.GridFixed2, tab.Blocks[0])
	assert.Equal(t, instance.GridFixed1, tab.Blocks[1])
}

func TestLoad_File(t *testing.T) {
	p, err := Load("testdata/paper.cue")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, p.Pipeline.Stage1TimeLimit)
	assert.Equal(t, 17*time.Minute+8*time.Second, p.Pipeline.IdealTimeLimit)
	assert.Equal(t, 12*time.Hour, p.Pipeline.Enum.TotalBudget)
	assert.True(t, p.Pipeline.Enum.BudgetMode())
	assert.Equal(t, 2, p.Parallel)

	require.Len(t, p.Tables, 2)
	large := p.Tables[1]
	assert.Equal(t, "C.3-fixed1", large.Name)
	assert.Equal(t, 65, large.FirstID)
	assert.Equal(t, int64(2001), large.SeedStart)
	assert.Equal(t, 1, large.Reps)
	require.Len(t, large.Blocks, 1)
	assert.Equal(t, instance.GridFixed1, large.Blocks[0])
}

func TestParse_Overrides(t *testing.T) {
	src := `
bounded: [2, 5, 6]
primary: 3
steps: 2
accept_incumbent: true
debug_iis: true
iis_dir: "out/iis"
skip_errors: true
save_instances: true
tables: [{size: "medium", first_id: 100, reps: 1, grids: ["fixed2"]}]
`
	p, err := Parse("over.cue", []byte(src))
	require.NoError(t, err)

	e := p.Pipeline.Enum
	assert.Equal(t, []int{2, 5, 6}, e.Bounded)
	assert.Equal(t, 3, e.Primary)
	assert.Equal(t, []int{2, 2, 2}, e.Steps)
	assert.True(t, e.AcceptTimeLimitIncumbent)
	assert.True(t, e.DebugIIS)
	assert.Equal(t, "out/iis", e.IISDir)
	assert.True(t, p.SkipErrors)
	assert.True(t, p.SaveInstances)
	assert.Equal(t, 100, p.Tables[0].FirstID)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", `tables: [{size: "small"}], bogus: 1`},
		{"unknown table field", `tables: [{size: "small", colour: "red"}]`},
		{"unknown size", `tables: [{size: "huge"}]`},
		{"unknown grid", `tables: [{size: "small", grids: ["fixed3"]}]`},
		{"no tables", `tables: []`},
		{"missing tables", `steps: 3`},
		{"zero reps", `tables: [{size: "small", reps: 0}]`},
		{"zero parallel", `parallel: 0, tables: [{size: "small"}]`},
		{"negative steps", `steps: -1, tables: [{size: "small"}]`},
		{"syntax", `tables: [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.cue", []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestParse_SemanticErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"bad duration", `stage1_time_limit: "soon", tables: [{size: "small"}]`, "stage1_time_limit"},
		{"negative budget", `budget_eps: "-1h", tables: [{size: "small"}]`, "budget_eps"},
		{"primary is bounded", `primary: 3, tables: [{size: "small"}]`, "pipeline"},
		{"objective out of range", `bounded: [8], tables: [{size: "small"}]`, "pipeline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.cue", []byte(tt.src))
			var perr *Error
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.field, perr.Field)
		})
	}
}

func TestError_Format(t *testing.T) {
	err := &Error{Field: "steps", Message: "must be >= 0"}
	assert.Equal(t, "steps: must be >= 0", err.Error())
}
