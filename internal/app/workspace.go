package app

import (
	"context"

	"bodylog/internal/domain"
)

// Workspace is the explicit handle every caller passes around: the open
// repository and the profile currently selected.
type Workspace struct {
	Repo          domain.Repository
	ActiveProfile string
}

// ProfileID returns the active profile, falling back to the default one.
func (w Workspace) ProfileID() string {
	if w.ActiveProfile == "" {
		return domain.DefaultProfileID
	}
	return w.ActiveProfile
}

// Profile loads the active profile.
func (w Workspace) Profile(ctx context.Context) (domain.Profile, error) {
	p, err := w.Repo.GetProfile(ctx, w.ProfileID())
	if err != nil {
		return domain.Profile{}, err
	}
	if p == nil {
		return domain.Profile{}, ErrProfileNotFound
	}
	return *p, nil
}

// Entries lists the active profile's entries, most recent first.
func (w Workspace) Entries(ctx context.Context) ([]domain.Entry, error) {
	return w.Repo.ListEntries(ctx, w.ProfileID())
}
