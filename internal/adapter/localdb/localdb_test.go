package localdb

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodylog/internal/domain"
	"bodylog/internal/store"
)

var t0 = time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	now := t0
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), store.MemoryPath, WithClock(stepClock()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// writeLegacyFile creates a generation-1 file holding the given legacy
// entries and settings.
func writeLegacyFile(t *testing.T, entries []legacyEntry, settings map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	d := &DB{now: stepClock(), log: logrus.NewEntry(logrus.New())}
	s, err := store.Open(context.Background(), path, store.Options{Generation: 1, Upgrades: d.upgrades()})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Update(context.Background(), func(tx *store.Tx) error {
		for _, e := range entries {
			b, _ := json.Marshal(e)
			if err := tx.Put(collLegacyEntries, e.Date, "", b); err != nil {
				return err
			}
		}
		for k, v := range settings {
			b, _ := json.Marshal(map[string]any{"key": k, "value": v})
			if err := tx.Put(collLegacySettings, k, "", b); err != nil {
				return err
			}
		}
		return nil
	}))
	return path
}

func TestOpen_FreshInstallHasDefaultProfile(t *testing.T) {
	db := newTestDB(t)
	assert.Equal(t, CurrentGeneration, db.Generation())

	profiles, err := db.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, domain.DefaultProfileID, profiles[0].ID)
	assert.Equal(t, domain.DefaultActivity, profiles[0].Activity)
	assert.Nil(t, profiles[0].HeightCm)
}

func TestEntries_OrderedDescendingAndIsolated(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, e := range []domain.Entry{
		{ProfileID: "default", Date: "2026-01-02", Weight: 81},
		{ProfileID: "default", Date: "2026-01-10", Weight: 80},
		{ProfileID: "other", Date: "2026-01-05", Weight: 60},
		{ProfileID: "default", Date: "2025-12-31", Weight: 82},
	} {
		require.NoError(t, db.SaveEntry(ctx, e))
	}

	entries, err := db.ListEntries(ctx, "default")
	require.NoError(t, err)
	var dates []string
	for _, e := range entries {
		dates = append(dates, e.Date)
		assert.Equal(t, "default", e.ProfileID)
	}
	assert.Equal(t, []string{"2026-01-10", "2026-01-02", "2025-12-31"}, dates)

	other, err := db.ListEntries(ctx, "other")
	require.NoError(t, err)
	require.Len(t, other, 1)

	none, err := db.ListEntries(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveEntry_SameDayReplaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveEntry(ctx, domain.Entry{ProfileID: "default", Date: "2026-01-10", Weight: 80, Note: "first"}))
	require.NoError(t, db.SaveEntry(ctx, domain.Entry{ProfileID: "default", Date: "2026-01-10", Weight: 79.5, Note: "second", WaistCm: ptr(90.0)}))

	entries, err := db.ListEntries(ctx, "default")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 79.5, entries[0].Weight)
	assert.Equal(t, "second", entries[0].Note)
	require.NotNil(t, entries[0].WaistCm)
	assert.Equal(t, 90.0, *entries[0].WaistCm)
}

func TestDeleteEntry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	e := domain.Entry{ProfileID: "default", Date: "2026-01-10", Weight: 80}
	require.NoError(t, db.SaveEntry(ctx, e))

	require.NoError(t, db.DeleteEntry(ctx, e.Key()))
	require.NoError(t, db.DeleteEntry(ctx, e.Key()))

	entries, err := db.ListEntries(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteProfile_CascadesEntries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p, err := db.SaveProfile(ctx, domain.Profile{ID: "ana", Name: "Ana", Activity: 1.2})
	require.NoError(t, err)
	for _, d := range []string{"2026-01-01", "2026-01-02", "2026-01-03"} {
		require.NoError(t, db.SaveEntry(ctx, domain.Entry{ProfileID: p.ID, Date: d, Weight: 60}))
	}
	require.NoError(t, db.SaveEntry(ctx, domain.Entry{ProfileID: "default", Date: "2026-01-01", Weight: 80}))

	require.NoError(t, db.DeleteProfile(ctx, p.ID))

	got, err := db.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := db.ListEntries(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	kept, err := db.ListEntries(ctx, "default")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestSaveProfile_Timestamps(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.SaveProfile(ctx, domain.Profile{ID: "b", Name: "B"})
	require.NoError(t, err)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	first.Name = "Bea"
	first.CreatedAt = time.Time{}
	second, err := db.SaveProfile(ctx, first)
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.Equal(first.UpdatedAt), "created_at must be kept from the stored record")
	assert.True(t, second.UpdatedAt.After(second.CreatedAt))

	stored, err := db.GetProfile(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Bea", stored.Name)
	assert.True(t, stored.UpdatedAt.Equal(second.UpdatedAt))

	profiles, err := db.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, domain.DefaultProfileID, profiles[0].ID, "default was created first")
	assert.Equal(t, "b", profiles[1].ID)
}

func TestClearAll_ResetsToFirstInstall(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.SaveProfile(ctx, domain.Profile{ID: "x", Name: "X"})
	require.NoError(t, err)
	require.NoError(t, db.SaveEntry(ctx, domain.Entry{ProfileID: "x", Date: "2026-01-01", Weight: 70}))
	require.NoError(t, db.SaveEntry(ctx, domain.Entry{ProfileID: "default", Date: "2026-01-01", Weight: 70}))
	require.NoError(t, db.DeleteProfile(ctx, domain.DefaultProfileID))

	require.NoError(t, db.ClearAll(ctx))

	profiles, err := db.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, domain.DefaultProfileID, profiles[0].ID)
	for _, id := range []string{"x", "default"} {
		entries, err := db.ListEntries(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestUpgrade_FromGenerationOne(t *testing.T) {
	path := writeLegacyFile(t,
		[]legacyEntry{
			{Date: "2025-06-01", Weight: 90, Note: "start", WaistCm: ptr(100.0)},
			{Date: "2025-06-08", Weight: 89, BodyFatPct: ptr(28.0)},
		},
		map[string]any{"height_cm": 180, "goal_kg": nil},
	)

	db, err := Open(context.Background(), path, WithClock(stepClock()))
	require.NoError(t, err)
	defer db.Close()

	p, err := db.GetProfile(context.Background(), domain.DefaultProfileID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.HeightCm)
	assert.Equal(t, 180.0, *p.HeightCm)
	assert.Nil(t, p.GoalKg, "null legacy goal keeps the template value")

	entries, err := db.ListEntries(context.Background(), domain.DefaultProfileID)
	require.NoError(t, err)
	want := []domain.Entry{
		{ProfileID: "default", Date: "2025-06-08", Weight: 89, BodyFatPct: ptr(28.0)},
		{ProfileID: "default", Date: "2025-06-01", Weight: 90, Note: "start", WaistCm: ptr(100.0)},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("migrated entries mismatch (-want +got):\n%s", diff)
	}
}

func TestUpgrade_IgnoresNonNumericSettings(t *testing.T) {
	path := writeLegacyFile(t, nil, map[string]any{"height_cm": "tall", "goal_kg": 75.5})

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	p, err := db.GetProfile(context.Background(), domain.DefaultProfileID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.HeightCm)
	require.NotNil(t, p.GoalKg)
	assert.Equal(t, 75.5, *p.GoalKg)
}

func TestUpgrade_IsIdempotent(t *testing.T) {
	path := writeLegacyFile(t,
		[]legacyEntry{{Date: "2025-06-01", Weight: 90}, {Date: "2025-06-02", Weight: 89.4, Note: "x"}},
		nil,
	)
	d := &DB{now: stepClock(), log: logrus.NewEntry(logrus.New())}
	s, err := store.Open(context.Background(), path, store.Options{Generation: 3, Upgrades: d.upgrades()})
	require.NoError(t, err)
	defer s.Close()

	snapshot := func() map[string]string {
		out := map[string]string{}
		require.NoError(t, s.View(context.Background(), func(tx *store.Tx) error {
			for rec, err := range tx.Scan(collEntries, "") {
				if err != nil {
					return err
				}
				out[rec.Key+"@"+rec.Index] = string(rec.Value)
			}
			return nil
		}))
		return out
	}
	once := snapshot()
	require.Len(t, once, 2)

	require.NoError(t, s.Update(context.Background(), func(tx *store.Tx) error {
		return d.introduceProfiles(context.Background(), tx)
	}))
	if diff := cmp.Diff(once, snapshot()); diff != "" {
		t.Errorf("second upgrade changed entries2 (-once +twice):\n%s", diff)
	}

	require.NoError(t, s.View(context.Background(), func(tx *store.Tx) error {
		n, err := tx.Count(collProfiles)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		has, err := tx.HasCollection(collLegacyEntries)
		require.NoError(t, err)
		assert.True(t, has, "legacy collections are kept")
		return nil
	}))
}

func TestOpen_FailsOnNewerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	s, err := store.Open(context.Background(), path, store.Options{Generation: CurrentGeneration + 1})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), path)
	assert.ErrorIs(t, err, store.ErrOpen)
	assert.ErrorIs(t, err, store.ErrNewerGeneration)
}
