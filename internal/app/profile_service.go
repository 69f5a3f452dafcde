package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"bodylog/internal/domain"
)

// ProfileService encapsulates profile management use cases.
type ProfileService struct {
	repo  domain.ProfileRepository
	newID func() string
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(repo domain.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo, newID: uuid.NewString}
}

// List returns every profile ordered by creation time.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.ListProfiles(ctx)
}

// Get returns the profile with the given id or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, id string) (domain.Profile, error) {
	p, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if p == nil {
		return domain.Profile{}, ErrProfileNotFound
	}
	return *p, nil
}

// Create stores p under a freshly generated id. Timestamps are assigned by
// the repository.
func (s *ProfileService) Create(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.ID = s.newID()
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt, p.UpdatedAt = time.Time{}, time.Time{}
	if p.Activity == 0 {
		p.Activity = domain.DefaultActivity
	}
	if err := domain.ValidateProfile(p); err != nil {
		return domain.Profile{}, err
	}
	return s.repo.SaveProfile(ctx, p)
}

// Update replaces an existing profile. The stored creation time is kept.
func (s *ProfileService) Update(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := domain.ValidateProfile(p); err != nil {
		return domain.Profile{}, err
	}
	existing, err := s.Get(ctx, p.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	p.CreatedAt = existing.CreatedAt
	return s.repo.SaveProfile(ctx, p)
}

// Delete removes a profile and its entries. The default profile can only be
// reset through a wipe.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if id == domain.DefaultProfileID {
		return &domain.ValidationError{Field: "id", Reason: "the default profile cannot be deleted"}
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteProfile(ctx, id)
}
