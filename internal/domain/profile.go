// Package domain contains the core business entities, repository ports and
// the validation rules shared by every adapter.
package domain

import (
	"context"
	"time"
)

// DefaultProfileID identifies the profile that always exists after the
// store is initialized.
const DefaultProfileID = "default"

// DefaultActivity is the TDEE multiplier used when a profile does not set one.
const DefaultActivity = 1.55

// MaxNameLength bounds Profile.Name, counted in characters.
const MaxNameLength = 40

// Sex selects the BMR constant. The zero value means unspecified.
type Sex string

const (
	SexMale        Sex = "M"
	SexFemale      Sex = "F"
	SexUnspecified Sex = ""
)

// Profile is one tracked individual.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Age           *int      `json:"age"`
	Sex           Sex       `json:"sex"`
	Gender        string    `json:"gender"`
	Race          string    `json:"race"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	HeightCm      *float64  `json:"height_cm"`
	GoalKg        *float64  `json:"goal_kg"`
	Activity      float64   `json:"activity"`
	TrainingStyle string    `json:"training_style"`
	TrainingDays  [7]bool   `json:"training_days"` // index 0 is Sunday
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewDefaultProfile returns the template used for the "default" profile,
// both on first initialization and after a full wipe.
func NewDefaultProfile(now time.Time) Profile {
	now = now.UTC()
	return Profile{
		ID:        DefaultProfileID,
		Name:      "Perfil",
		Activity:  DefaultActivity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActivityFactor returns the profile multiplier, falling back to
// DefaultActivity when unset.
func (p Profile) ActivityFactor() float64 {
	if p.Activity == 0 {
		return DefaultActivity
	}
	return p.Activity
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	// ListProfiles returns every profile ordered by CreatedAt ascending.
	ListProfiles(ctx context.Context) ([]Profile, error)
	// GetProfile returns nil, nil when the profile does not exist.
	GetProfile(ctx context.Context, id string) (*Profile, error)
	SaveProfile(ctx context.Context, p Profile) (Profile, error)
	// DeleteProfile removes the profile and all of its entries atomically.
	DeleteProfile(ctx context.Context, id string) error
}

// Repository is the full persistence port used by the application layer.
type Repository interface {
	ProfileRepository
	EntryRepository
	// ClearAll empties profiles and entries, then recreates the default profile.
	ClearAll(ctx context.Context) error
}
