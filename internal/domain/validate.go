package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports an out-of-range or missing field. Repositories never
// return it; services validate before calling them.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkRange(field string, v *float64, lo, hi float64) error {
	if v == nil {
		return nil
	}
	if !finite(*v) || *v < lo || *v > hi {
		return invalid(field, "must be between %g and %g", lo, hi)
	}
	return nil
}

// ValidateEntry checks an entry before it is saved.
func ValidateEntry(e Entry) error {
	if strings.TrimSpace(e.ProfileID) == "" {
		return invalid("profileId", "is required")
	}
	if strings.Contains(e.ProfileID, "|") {
		return invalid("profileId", "must not contain '|'")
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return invalid("date", "must be a YYYY-MM-DD calendar day")
	}
	if !finite(e.Weight) || e.Weight <= 0 {
		return invalid("weight", "must be a positive number")
	}
	if err := checkRange("waist_cm", e.WaistCm, 30, 200); err != nil {
		return err
	}
	if err := checkRange("bodyfat_pct", e.BodyFatPct, 1, 80); err != nil {
		return err
	}
	return checkRange("workout_min", e.WorkoutMin, 0, 600)
}

// ValidateProfile checks a profile before it is saved.
func ValidateProfile(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return invalid("name", "must be at most %d characters", MaxNameLength)
	}
	switch p.Sex {
	case SexMale, SexFemale, SexUnspecified:
	default:
		return invalid("sex", "must be M, F or empty")
	}
	if p.Age != nil && (*p.Age < 1 || *p.Age > 130) {
		return invalid("age", "must be between 1 and 130")
	}
	if err := checkRange("height_cm", p.HeightCm, 80, 250); err != nil {
		return err
	}
	if err := checkRange("goal_kg", p.GoalKg, 20, 400); err != nil {
		return err
	}
	if !finite(p.Activity) || p.Activity < 0 {
		return invalid("activity", "must be a positive multiplier")
	}
	return nil
}
