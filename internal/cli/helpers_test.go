package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/augeps/internal/instance"
)

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decode parses a JSON envelope whose data has type T.
func decode[T any](t *testing.T, out string) (Response, T) {
	t.Helper()
	var env struct {
		Response
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env.Response, env.Data
}

// writeInstance saves a small instance and returns its path.
func writeInstance(t *testing.T) string {
	t.Helper()
	inst, err := instance.Generate(instance.Small, instance.GridFixed2[0], 1)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "inst.yaml")
	require.NoError(t, instance.Save(path, inst))
	return path
}
