package app

import (
	"context"
	"strings"
	"time"

	"bodylog/internal/domain"
)

// EntryService encapsulates the daily logging use cases.
type EntryService struct {
	repo domain.Repository
	now  func() time.Time
}

// NewEntryService creates an EntryService backed by the given repository.
func NewEntryService(repo domain.Repository) *EntryService {
	return &EntryService{repo: repo, now: time.Now}
}

// Record validates e and stores it, replacing any entry the profile already
// has for that day. The weight is given in unit and stored in kilograms. An
// empty date means today.
func (s *EntryService) Record(ctx context.Context, e domain.Entry, unit domain.Unit) (domain.Entry, error) {
	if e.Date == "" {
		e.Date = domain.Today(s.now())
	}
	e.Weight = domain.ConvertWeight(e.Weight, unit, domain.Kilograms)
	e.Note = strings.TrimSpace(e.Note)
	if e.Workout != nil {
		if w := strings.TrimSpace(*e.Workout); w == "" {
			e.Workout = nil
		} else {
			e.Workout = &w
		}
	}
	if err := domain.ValidateEntry(e); err != nil {
		return domain.Entry{}, err
	}
	p, err := s.repo.GetProfile(ctx, e.ProfileID)
	if err != nil {
		return domain.Entry{}, err
	}
	if p == nil {
		return domain.Entry{}, ErrProfileNotFound
	}
	if err := s.repo.SaveEntry(ctx, e); err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

// List returns the profile's entries, most recent first, limited to limit
// when limit is positive.
func (s *EntryService) List(ctx context.Context, profileID string, limit int) ([]domain.Entry, error) {
	entries, err := s.repo.ListEntries(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Delete removes the profile's entry for date.
func (s *EntryService) Delete(ctx context.Context, profileID, date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return &domain.ValidationError{Field: "date", Reason: "must be a YYYY-MM-DD calendar day"}
	}
	return s.repo.DeleteEntry(ctx, domain.EntryKey(profileID, date))
}
