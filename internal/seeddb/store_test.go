package seeddb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/trackseed/internal/seeding"
	"github.com/banshee-data/trackseed/internal/timeutil"
	"github.com/banshee-data/trackseed/internal/trajectory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "seeds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.MigrateUp())
	return s
}

func testSeed(simTrackID int, detID uint32) seeding.TrajectorySeed {
	var errs [trajectory.PackedErrors]float32
	for i := range errs {
		errs[i] = float32(i) + 0.5
	}
	return seeding.TrajectorySeed{
		Hits: []seeding.RecHit{
			{DetID: detID, SimTrackID: simTrackID, LocalX: 0.25, LocalY: -1.5, ErrXX: 1e-4, ErrYY: 2e-4},
			{DetID: detID + 100, SimTrackID: simTrackID, LocalX: 1, LocalY: 2},
		},
		State: trajectory.StateOnDet{
			Parameters: trajectory.LocalParameters{QbP: -0.8, DxDz: 0.1, DyDz: 0.5, X: 0.25, Y: -1.5, PzSign: 1},
			Errors:     errs,
			DetID:      detID,
			Side:       trajectory.AtCenterOfSurface,
		},
		Direction:  seeding.AlongMomentum,
		SimTrackID: simTrackID,
		Curvature:  -0.0042,
	}
}

func testOutput() *seeding.Output {
	return &seeding.Output{Collections: []seeding.SeedCollection{
		{Algorithm: "triplets", Seeds: []seeding.TrajectorySeed{testSeed(3, 101)}},
		{Algorithm: "pairs", Seeds: []seeding.TrajectorySeed{testSeed(1, 102), testSeed(2, 201)}},
		{Algorithm: "empty"},
	}}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.MigrateUp())

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestMigrateDown(t *testing.T) {
	s := setupTestStore(t)
	runID, err := s.BeginRun("abc")
	require.NoError(t, err)

	// Down to 1: the curvature column goes, seeds written before stay readable
	// by the version 1 schema.
	require.NoError(t, s.MigrateDown())
	version, _, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	_, err = s.SeedsForEvent(runID, 1)
	assert.ErrorContains(t, err, "curvature")

	require.NoError(t, s.MigrateUp())
	require.NoError(t, s.SaveEvent(runID, 1, testOutput()))
	seeds, err := s.SeedsForEvent(runID, 1)
	require.NoError(t, err)
	require.Len(t, seeds, 3)
	assert.Equal(t, -0.0042, seeds[0].Seed.Curvature)

	require.NoError(t, s.MigrateDown())
	require.NoError(t, s.MigrateDown())
	version, _, err = s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	_, err = s.BeginRun("def")
	assert.Error(t, err, "tables are gone")
}

func TestSaveEvent_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	runID, err := s.BeginRun("cafef00d")
	require.NoError(t, err)

	out := testOutput()
	require.NoError(t, s.SaveEvent(runID, 7, out))
	require.NoError(t, s.SaveEvent(runID, 8, &seeding.Output{}))

	stored, err := s.SeedsForEvent(runID, 7)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	want := []StoredSeed{
		{EventID: 7, Algorithm: "triplets", AlgoIndex: 0, Seed: out.Collections[0].Seeds[0]},
		{EventID: 7, Algorithm: "pairs", AlgoIndex: 1, Seed: out.Collections[1].Seeds[0]},
		{EventID: 7, Algorithm: "pairs", AlgoIndex: 1, Seed: out.Collections[1].Seeds[1]},
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Errorf("stored seeds mismatch (-want +got):\n%s", diff)
	}

	none, err := s.SeedsForEvent(runID, 8)
	require.NoError(t, err)
	assert.Empty(t, none)

	counts, err := s.CountSeeds(runID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"triplets": 1, "pairs": 2}, counts)
}

func TestRunLifecycle(t *testing.T) {
	s := setupTestStore(t)
	runID, err := s.BeginRun("cafef00d")
	require.NoError(t, err)

	info, err := s.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, "cafef00d", info.ConfigHash)
	assert.True(t, info.FinishedAt.IsZero())

	require.NoError(t, s.SaveEvent(runID, 1, testOutput()))
	require.NoError(t, s.SaveEvent(runID, 2, testOutput()))
	require.NoError(t, s.FinishRun(runID))

	info, err = s.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Events)
	assert.Equal(t, 6, info.Seeds)
	assert.False(t, info.FinishedAt.Before(info.StartedAt))

	assert.ErrorIs(t, s.SaveEvent(runID, 3, testOutput()), ErrUnknownRun)
	assert.ErrorIs(t, s.FinishRun(runID), ErrUnknownRun)

	seeds, err := s.SeedsForEvent(runID, 3)
	require.NoError(t, err)
	assert.Empty(t, seeds, "rejected event leaves nothing behind")
}

func TestRunTimestamps(t *testing.T) {
	s := setupTestStore(t)
	start := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	s.SetClock(clock)

	runID, err := s.BeginRun("h")
	require.NoError(t, err)
	clock.Advance(42 * time.Second)
	require.NoError(t, s.FinishRun(runID))

	info, err := s.Run(runID)
	require.NoError(t, err)
	assert.True(t, info.StartedAt.Equal(start), "started %v", info.StartedAt)
	assert.Equal(t, 42*time.Second, info.FinishedAt.Sub(info.StartedAt))
}

func TestUnknownRun(t *testing.T) {
	s := setupTestStore(t)
	assert.ErrorIs(t, s.SaveEvent("nope", 1, testOutput()), ErrUnknownRun)
	_, err := s.Run("nope")
	assert.ErrorIs(t, err, ErrUnknownRun)
}

func TestRunsAreSeparate(t *testing.T) {
	s := setupTestStore(t)
	a, err := s.BeginRun("a")
	require.NoError(t, err)
	b, err := s.BeginRun("b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	require.NoError(t, s.SaveEvent(a, 1, testOutput()))
	counts, err := s.CountSeeds(b)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestDecodeErrors_RejectsShortBlob(t *testing.T) {
	_, err := decodeErrors(make([]byte, 10))
	assert.Error(t, err)
}
