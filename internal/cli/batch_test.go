package cli

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/augeps/internal/experiment"
)

const smallPlan = `
steps:            1
eps_time_limit:   "30s"
save_instances:   true
tables: [
	{size: "small", grids: ["fixed1"], reps: 1, seed_start: 5, name: "tiny"},
]
`

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.cue")
	require.NoError(t, os.WriteFile(planPath, []byte(smallPlan), 0o644))
	outDir := filepath.Join(dir, "results")
	db := filepath.Join(dir, "runs.db")

	out, err := execute(t, NewBatchCommand(&RootOptions{Format: "json"}),
		planPath, "--out", outDir, "--db", db, "--parallel", "2")
	require.NoError(t, err)

	resp, res := decode[BatchResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, res.Tables, 1)
	table := res.Tables[0]
	assert.Equal(t, "tiny", table.Name)
	assert.Equal(t, 8, table.Rows)
	assert.Equal(t, 8, table.Completed)
	assert.Zero(t, table.Failed)

	f, err := os.Open(table.CSV)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 9)
	assert.Equal(t, experiment.Columns, records[0])

	instances, err := filepath.Glob(filepath.Join(outDir, "instances", "*.yaml"))
	require.NoError(t, err)
	assert.Len(t, instances, 8)

	out, err = execute(t, NewShowCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)
	_, runs := decode[[]RunListEntry](t, out)
	assert.Len(t, runs, 8)
}

func TestBatchCommand_InvalidPlan(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.cue")
	require.NoError(t, os.WriteFile(planPath, []byte(`tables: []`), 0o644))

	_, err := execute(t, NewBatchCommand(&RootOptions{Format: "text"}), planPath, "--out", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid plan")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
