package app

import (
	"context"

	"bodylog/internal/analytics"
	"bodylog/internal/domain"
)

// StatsService computes the dashboard statistics of a profile.
type StatsService struct {
	repo domain.Repository
}

// NewStatsService creates a StatsService backed by the given repository.
func NewStatsService(repo domain.Repository) *StatsService {
	return &StatsService{repo: repo}
}

// Summary loads the profile and its entries and summarizes them.
func (s *StatsService) Summary(ctx context.Context, profileID string) (analytics.Summary, error) {
	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return analytics.Summary{}, err
	}
	if p == nil {
		return analytics.Summary{}, ErrProfileNotFound
	}
	entries, err := s.repo.ListEntries(ctx, profileID)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(*p, entries), nil
}
