package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for Entry.Date. Lexical order of
// these strings equals chronological order.
const DateLayout = "2006-01-02"

// Entry is one dated measurement for one profile.
type Entry struct {
	ProfileID  string   `json:"profileId"`
	Date       string   `json:"date"`
	Weight     float64  `json:"weight"`
	WaistCm    *float64 `json:"waist_cm"`
	BodyFatPct *float64 `json:"bodyfat_pct"`
	Workout    *string  `json:"workout"`
	WorkoutMin *float64 `json:"workout_min"`
	Note       string   `json:"note"`
}

// Key returns the composite storage key of the entry.
func (e Entry) Key() string {
	return EntryKey(e.ProfileID, e.Date)
}

// EntryKey builds the composite key "profileID|date".
func EntryKey(profileID, date string) string {
	return profileID + "|" + date
}

// ParseEntryKey splits a composite key built by EntryKey.
func ParseEntryKey(key string) (profileID, date string, err error) {
	i := strings.LastIndexByte(key, '|')
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("malformed entry key %q", key)
	}
	return key[:i], key[i+1:], nil
}

// Today returns the local calendar day of t in DateLayout.
func Today(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// EntryRepository is the port for entry persistence.
type EntryRepository interface {
	// ListEntries returns the entries of a profile, most recent date first.
	ListEntries(ctx context.Context, profileID string) ([]Entry, error)
	// SaveEntry upserts by (ProfileID, Date); the last write wins. The caller
	// must make sure the profile exists: only some backends enforce it.
	SaveEntry(ctx context.Context, e Entry) error
	// DeleteEntry removes one entry by composite key. Missing keys are not an error.
	DeleteEntry(ctx context.Context, key string) error
}
