package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/augeps/internal/ir"
)

func TestWriteReport_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	r := testReport("run-1")

	require.NoError(t, s.WriteReport(ctx, testMeta("run-1"), r))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", got.Run.ID)
	assert.Equal(t, int64(1), got.Run.Seq)
	assert.Equal(t, "inst-1", got.Run.InstanceID)
	assert.Equal(t, "small", got.Run.InstanceName)
	assert.Equal(t, "cfg-1", got.Run.ConfigHash)
	assert.Equal(t, ir.OutcomeCompleted, got.Run.Kind)
	assert.Equal(t, 12, got.Run.G)
	assert.Equal(t, r.IdealNadir.Ideal, got.Run.Ideal)
	assert.Equal(t, r.IdealNadir.Nadir, got.Run.Nadir)
	assert.Equal(t, r.IdealNadir.Payoff, got.Run.Payoff)
	assert.Equal(t, r.Enum.Metrics, got.Run.Metrics)
	assert.Equal(t, r.Elapsed, got.Run.Elapsed)
	assert.Equal(t, ir.EngineVersion, got.Run.EngineVersion)

	assert.Equal(t, r.Enum.Archive, got.Archive)
	assert.Equal(t, r.Enum.Infeasible, got.Infeasible)

	m, ok := got.Run.Outcome().Metrics()
	require.True(t, ok)
	assert.Equal(t, 2, m.ArchiveSize)
}

func TestWriteReport_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteReport(ctx, testMeta("run-1"), testReport("run-1")))

	second := testReport("run-1")
	second.G = 99
	require.NoError(t, s.WriteReport(ctx, testMeta("run-1"), second))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Run.G, "first write wins")
	assert.Len(t, got.Archive, 2, "archive not duplicated")

	runs, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteReport_EmptyArchive(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	r := testReport("run-1")
	r.Enum.Archive = nil
	r.Enum.Infeasible = nil

	require.NoError(t, s.WriteReport(ctx, testMeta("run-1"), r))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, got.Archive)
	assert.Empty(t, got.Infeasible)
}

func TestWriteReport_Rejects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.WriteReport(ctx, RunMeta{InstanceID: "x"}, testReport(""))
	assert.ErrorContains(t, err, "run ID is required")

	err = s.WriteReport(ctx, RunMeta{RunID: "r"}, testReport("r"))
	assert.ErrorContains(t, err, "instance ID is required")

	r := testReport("r")
	r.Enum = nil
	err = s.WriteReport(ctx, testMeta("r"), r)
	assert.ErrorContains(t, err, "no enumeration result")
}

func TestWriteFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteFailure(ctx, testMeta("run-f"), "stage1: not solved properly"))

	got, err := s.ReadRun(ctx, "run-f")
	require.NoError(t, err)
	assert.Equal(t, ir.OutcomeFailed, got.Run.Kind)
	assert.Equal(t, -1, got.Run.G)
	assert.Empty(t, got.Run.Ideal)
	assert.Empty(t, got.Run.Payoff)
	assert.Empty(t, got.Archive)

	reason, ok := got.Run.Outcome().Reason()
	require.True(t, ok)
	assert.Equal(t, "stage1: not solved properly", reason)
}

func TestListRuns_OrderAndFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	other := testMeta("run-b")
	other.InstanceID = "inst-2"

	require.NoError(t, s.WriteReport(ctx, testMeta("run-c"), testReport("run-c")))
	require.NoError(t, s.WriteFailure(ctx, other, "boom"))
	require.NoError(t, s.WriteReport(ctx, testMeta("run-a"), testReport("run-a")))

	runs, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"run-c", "run-b", "run-a"}, runIDs(runs), "insertion order, not ID order")
	assert.Equal(t, []int64{1, 2, 3}, []int64{runs[0].Seq, runs[1].Seq, runs[2].Seq})

	runs, err = s.ListRuns(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-c", "run-a"}, runIDs(runs))
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Cascades(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteReport(ctx, testMeta("run-1"), testReport("run-1")))

	_, err := s.db.Exec("DELETE FROM runs WHERE id = 'run-1'")
	require.NoError(t, err)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM solutions").Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM infeasible").Scan(&n))
	assert.Zero(t, n)
}

func runIDs(runs []RunRecord) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
