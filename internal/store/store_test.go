package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqharness/internal/trace"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(scenario string, pass bool) *Run {
	return &Run{
		Scenario: scenario,
		Pass:     pass,
		Path:     "/",
		Errors:   []string{},
		Events: []trace.Event{
			{Seq: 1, Type: trace.TypeMount, Detail: "*app.App /"},
			{Seq: 2, Type: trace.TypeRequest, Method: "GET", Path: "/v1/projects"},
			{Seq: 3, Type: trace.TypeResponse, Request: 1, Outcome: trace.OutcomeData, Status: 200, Body: "[]"},
		},
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"user_version": "1",
	} {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteRun(context.Background(), testRun("a", true)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	run := testRun("empty_state", false)
	run.Errors = []string{"UNUSED_RESPONSE: 1 declared response(s) never consumed"}
	require.NoError(t, s.WriteRun(ctx, run))

	id, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, int64(1), run.Seq)

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestWriteRun_SeqIncrements(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	for i := 0; i < 3; i++ {
		run := testRun("a", true)
		require.NoError(t, s.WriteRun(ctx, run))
		assert.Equal(t, int64(i+1), run.Seq)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	_, err := createTestStore(t).ReadRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.WriteRun(ctx, testRun("a", true)))
	require.NoError(t, s.WriteRun(ctx, testRun("b", false)))
	require.NoError(t, s.WriteRun(ctx, testRun("a", false)))

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{all[0].Scenario, all[1].Scenario, all[2].Scenario})
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].Seq, all[1].Seq, all[2].Seq})
	assert.Empty(t, all[0].Events)

	onlyA, err := s.ListRuns(ctx, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.True(t, onlyA[0].Pass)
	assert.False(t, onlyA[1].Pass)
}

func TestLatestRun(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.LatestRun(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.WriteRun(ctx, testRun("a", true)))
	second := testRun("a", false)
	require.NoError(t, s.WriteRun(ctx, second))

	got, err := s.LatestRun(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Len(t, got.Events, 3)
}
