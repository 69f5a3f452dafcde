package memory

import (
	"context"
	"testing"
	"time"

	"bodylog/internal/domain"
)

func TestNew_HasDefaultProfile(t *testing.T) {
	db := New()
	profiles, err := db.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != domain.DefaultProfileID {
		t.Fatalf("expected only the default profile, got %+v", profiles)
	}
}

func TestEntryRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	for _, e := range []domain.Entry{
		{ProfileID: "default", Date: "2026-01-01", Weight: 81},
		{ProfileID: "default", Date: "2026-01-03", Weight: 80},
		{ProfileID: "default", Date: "2026-01-03", Weight: 79.8},
		{ProfileID: "other", Date: "2026-01-02", Weight: 60},
	} {
		if err := db.SaveEntry(ctx, e); err != nil {
			t.Fatalf("SaveEntry: %v", err)
		}
	}

	entries, err := db.ListEntries(ctx, "default")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-01-03" || entries[0].Weight != 79.8 {
		t.Errorf("expected the replaced entry first, got %+v", entries[0])
	}

	if err := db.DeleteEntry(ctx, domain.EntryKey("default", "2026-01-01")); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	entries, _ = db.ListEntries(ctx, "default")
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after delete, got %d", len(entries))
	}

	if err := db.DeleteProfile(ctx, "other"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	entries, _ = db.ListEntries(ctx, "other")
	if len(entries) != 0 {
		t.Errorf("expected cascade delete, got %d entries", len(entries))
	}
}

func TestProfileRepository(t *testing.T) {
	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	db := NewWithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	ctx := context.Background()

	p, err := db.SaveProfile(ctx, domain.Profile{ID: "ana", Name: "Ana"})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	created := p.CreatedAt

	p.Name = "Ana Maria"
	p.CreatedAt = time.Time{}
	p, err = db.SaveProfile(ctx, p)
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if !p.CreatedAt.Equal(created) {
		t.Errorf("created_at changed: %v -> %v", created, p.CreatedAt)
	}
	if !p.UpdatedAt.After(created) {
		t.Errorf("updated_at not refreshed: %v", p.UpdatedAt)
	}

	got, _ := db.GetProfile(ctx, "ana")
	if got == nil || got.Name != "Ana Maria" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	missing, err := db.GetProfile(ctx, "nobody")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for a missing profile, got %v, %v", missing, err)
	}

	profiles, _ := db.ListProfiles(ctx)
	if len(profiles) != 2 || profiles[0].ID != domain.DefaultProfileID {
		t.Errorf("expected default first, got %+v", profiles)
	}

	_ = db.SaveEntry(ctx, domain.Entry{ProfileID: "ana", Date: "2026-01-01", Weight: 60})
	if err := db.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	profiles, _ = db.ListProfiles(ctx)
	if len(profiles) != 1 || profiles[0].ID != domain.DefaultProfileID {
		t.Errorf("expected only default after ClearAll, got %+v", profiles)
	}
	entries, _ := db.ListEntries(ctx, "ana")
	if len(entries) != 0 {
		t.Errorf("expected no entries after ClearAll, got %d", len(entries))
	}
}

func TestSessionRepository(t *testing.T) {
	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	db := NewWithClock(func() time.Time { return now })
	repo := db.NewSessionRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, "live", "ua", now.Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, "stale", "ua", now.Add(-time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s, err := repo.GetByToken(ctx, "live")
	if err != nil || s == nil || s.UserAgent != "ua" {
		t.Fatalf("expected live session, got %+v, %v", s, err)
	}
	s, _ = repo.GetByToken(ctx, "stale")
	if s != nil {
		t.Error("expected expired session to be hidden")
	}

	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	s, _ = repo.GetByToken(ctx, "live")
	if s != nil {
		t.Error("expected session to be deleted")
	}
}
