package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/livebuild/internal/config"
	"git.home.luguber.info/inful/livebuild/internal/deploy"
	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/pipeline"
)

func TestStore_RecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	for i, outcome := range []string{"success", "failed", "warning"} {
		require.NoError(t, store.Record(t.Context(), Run{
			ID:       "run-" + outcome,
			Mode:     "geode",
			Special:  i == 1,
			Outcome:  outcome,
			Started:  base.Add(time.Duration(i) * time.Minute),
			Duration: 1500 * time.Millisecond,
			Stages:   []Stage{{Name: "build", Result: "success", DurationMS: 1200}},
		}))
	}

	runs, err := store.Recent(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-warning", runs[0].ID)
	assert.Equal(t, "run-failed", runs[1].ID)
	assert.True(t, runs[1].Special)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.True(t, base.Add(2*time.Minute).Equal(runs[0].Started))
	require.Len(t, runs[0].Stages, 1)
	assert.Equal(t, int64(1200), runs[0].Stages[0].DurationMS)
}

func TestStore_DuplicateRunID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	run := Run{ID: "dup", Mode: "debug", Outcome: "success", Started: time.Now()}
	require.NoError(t, store.Record(t.Context(), run))
	err = store.Record(t.Context(), run)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryHistory))
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(t.Context(), Run{ID: "a", Mode: "debug", Outcome: "success", Started: time.Now()}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	runs, err := store.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Stages)
}

func TestFromReport(t *testing.T) {
	cfg := &config.Config{Mode: config.ModeRelease, Special: true}
	r := pipeline.NewReport("id-1", cfg)
	r.Commit = "abc123"
	r.Branch = "main"
	r.Stages = []pipeline.StageReport{
		{Name: pipeline.StageBuild, Result: pipeline.StageResultFatal, Duration: 2 * time.Second, ExitCode: 101, Error: "build failed"},
	}
	r.Deployment = &deploy.Deployment{SHA256: "deadbeef"}
	r.Finish()

	run := FromReport(r)
	assert.Equal(t, "id-1", run.ID)
	assert.Equal(t, "release", run.Mode)
	assert.True(t, run.Special)
	assert.Equal(t, "abc123", run.Commit)
	assert.Equal(t, "main", run.Branch)
	assert.Equal(t, "deadbeef", run.Artifact)
	require.Len(t, run.Stages, 1)
	assert.Equal(t, Stage{Name: "build", Result: "fatal", DurationMS: 2000, ExitCode: 101, Error: "build failed"}, run.Stages[0])
}
