package app_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"bodylog/internal/app"
	"bodylog/internal/domain"
)

func TestRecord_Validation(t *testing.T) {
	svc := app.NewEntryService(&mockRepo{
		saveEntryFn: func(context.Context, domain.Entry) error {
			t.Fatal("invalid entry must not be saved")
			return nil
		},
	})

	tests := []struct {
		name  string
		entry domain.Entry
	}{
		{"zero weight", domain.Entry{ProfileID: "default", Date: "2026-01-15", Weight: 0}},
		{"negative weight", domain.Entry{ProfileID: "default", Date: "2026-01-15", Weight: -5}},
		{"nan weight", domain.Entry{ProfileID: "default", Date: "2026-01-15", Weight: math.NaN()}},
		{"bad date", domain.Entry{ProfileID: "default", Date: "15/01/2026", Weight: 80}},
		{"no profile", domain.Entry{Date: "2026-01-15", Weight: 80}},
		{"waist out of range", domain.Entry{ProfileID: "default", Date: "2026-01-15", Weight: 80, WaistCm: ptr(5.0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.entry, domain.Kilograms)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRecord_Success(t *testing.T) {
	var saved domain.Entry
	svc := app.NewEntryService(&mockRepo{
		saveEntryFn: func(_ context.Context, e domain.Entry) error {
			saved = e
			return nil
		},
	})
	got, err := svc.Record(context.Background(), domain.Entry{
		ProfileID: "default",
		Date:      "2026-01-15",
		Weight:    176.37,
		Workout:   ptr("  "),
		Note:      "  after run ",
	}, domain.Pounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Weight-80) > 0.01 {
		t.Errorf("expected weight converted to ~80 kg, got %v", got.Weight)
	}
	if got.Workout != nil {
		t.Errorf("expected blank workout to be cleared, got %q", *got.Workout)
	}
	if got.Note != "after run" {
		t.Errorf("expected trimmed note, got %q", got.Note)
	}
	if saved.Key() != "default|2026-01-15" {
		t.Errorf("unexpected key %q", saved.Key())
	}
}

func TestRecord_DefaultsToToday(t *testing.T) {
	svc := app.NewEntryService(&mockRepo{})
	got, err := svc.Record(context.Background(), domain.Entry{ProfileID: "default", Weight: 80}, domain.Kilograms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Date == "" {
		t.Fatal("expected today's date")
	}
}

func TestRecord_UnknownProfile(t *testing.T) {
	svc := app.NewEntryService(&mockRepo{
		getProfileFn: func(context.Context, string) (*domain.Profile, error) { return nil, nil },
	})
	_, err := svc.Record(context.Background(), domain.Entry{ProfileID: "ghost", Date: "2026-01-15", Weight: 80}, domain.Kilograms)
	if !errors.Is(err, app.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestRecord_RepoError(t *testing.T) {
	svc := app.NewEntryService(&mockRepo{
		saveEntryFn: func(context.Context, domain.Entry) error { return errors.New("db down") },
	})
	_, err := svc.Record(context.Background(), domain.Entry{ProfileID: "default", Date: "2026-01-15", Weight: 80}, domain.Kilograms)
	if err == nil {
		t.Fatal("expected error from repo")
	}
}

func TestListAndDelete(t *testing.T) {
	var deletedKey string
	svc := app.NewEntryService(&mockRepo{
		listEntriesFn: func(_ context.Context, pid string) ([]domain.Entry, error) {
			return []domain.Entry{
				{ProfileID: pid, Date: "2026-01-03"},
				{ProfileID: pid, Date: "2026-01-02"},
				{ProfileID: pid, Date: "2026-01-01"},
			}, nil
		},
		deleteEntryFn: func(_ context.Context, key string) error {
			deletedKey = key
			return nil
		},
	})

	got, err := svc.List(context.Background(), "ana", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2026-01-03" {
		t.Errorf("unexpected entries: %+v", got)
	}

	if err := svc.Delete(context.Background(), "ana", "2026-01-02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedKey != "ana|2026-01-02" {
		t.Errorf("unexpected key %q", deletedKey)
	}
	if err := svc.Delete(context.Background(), "ana", "yesterday"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
