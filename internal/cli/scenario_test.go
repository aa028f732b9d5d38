package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const failingScenario = `name: wrong_g
description: "expects the wrong cardinality"
objectives: 2
config:
  bounded: [2]
  primary: 1
  steps: [1]
stage1: {status: OPTIMAL, z: [3]}
anchors:
  - {status: OPTIMAL, z: [5, 0]}
  - {status: OPTIMAL, z: [0, 8]}
grid:
  default: {status: OPTIMAL, z: [4, 8]}
expect:
  outcome: completed
  g: 2
`

func TestScenarioCommand_HarnessScenarios(t *testing.T) {
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "json"}), harnessScenarios)
	require.NoError(t, err)

	resp, summary := decode[ScenarioSummary](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Passed)
	for _, s := range summary.Scenarios {
		assert.True(t, s.Pass, "%s: %v", s.Name, s.Errors)
	}
}

func TestScenarioCommand_Filter(t *testing.T) {
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), harnessScenarios, "--filter", "budget_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ budget_one_solution")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestScenarioCommand_Failure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_g.yaml"), []byte(failingScenario), 0o644))

	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_g")
	assert.Contains(t, out, "g: got 3, want 2")
}

func TestScenarioCommand_UpdateThenCompare(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src, err := os.ReadFile(filepath.Join(harnessScenarios, "budget_one_solution.yaml"))
	require.NoError(t, err)
	path := filepath.Join(dir, "budget_one_solution.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	_, err = execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), path, "--update")
	require.NoError(t, err)

	golden := filepath.Join(root, "golden", "budget_one_solution.golden")
	got, err := os.ReadFile(golden)
	require.NoError(t, err)
	want, err := os.ReadFile("../harness/testdata/golden/budget_one_solution.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestScenarioCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [\n"), 0o644))

	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestScenarioCommand_MissingPath(t *testing.T) {
	_, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("testdata", "golden", "a.golden"),
		goldenFilePath(filepath.Join("testdata", "scenarios", "a.yaml")))
}
