package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bodylog/internal/analytics"
	"bodylog/internal/domain"
)

// BackupVersion is the version written by ExportJSON.
const BackupVersion = 3

// Backup is the JSON export document.
type Backup struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Profiles   []domain.Profile `json:"profiles"`
	Entries    []domain.Entry   `json:"entries"`
}

// ImportReport counts what ImportJSON wrote and what it dropped. Entries is
// the number of distinct (profile, day) rows stored.
type ImportReport struct {
	Profiles int `json:"profiles"`
	Entries  int `json:"entries"`
	Skipped  int `json:"skipped"`
}

// CSVHeader is the first row written by ExportCSV.
var CSVHeader = []string{"date", "weight_kg", "waist_cm", "bodyfat_pct", "workout", "workout_min", "note"}

// BackupService exports and restores the whole repository.
type BackupService struct {
	repo domain.Repository
	now  func() time.Time
	log  *logrus.Entry
}

// NewBackupService creates a BackupService backed by the given repository.
func NewBackupService(repo domain.Repository) *BackupService {
	return &BackupService{
		repo: repo,
		now:  time.Now,
		log:  logrus.WithField("component", "backup"),
	}
}

// Snapshot collects every profile and every entry, entries in chronological
// order.
func (s *BackupService) Snapshot(ctx context.Context) (Backup, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return Backup{}, err
	}
	entries := []domain.Entry{}
	for _, p := range profiles {
		list, err := s.repo.ListEntries(ctx, p.ID)
		if err != nil {
			return Backup{}, err
		}
		entries = append(entries, list...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ProfileID < entries[j].ProfileID
	})
	return Backup{
		Version:    BackupVersion,
		ExportedAt: s.now().UTC(),
		Profiles:   profiles,
		Entries:    entries,
	}, nil
}

// ExportJSON writes the indented backup document to w.
func (s *BackupService) ExportJSON(ctx context.Context, w io.Writer) error {
	b, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ExportCSV writes one profile's entries as CSV, oldest first.
func (s *BackupService) ExportCSV(ctx context.Context, w io.Writer, profileID string) error {
	entries, err := s.repo.ListEntries(ctx, profileID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range analytics.Chronological(entries) {
		workout := ""
		if e.Workout != nil {
			workout = *e.Workout
		}
		row := []string{
			e.Date,
			formatNumber(&e.Weight),
			formatNumber(e.WaistCm),
			formatNumber(e.BodyFatPct),
			workout,
			formatNumber(e.WorkoutMin),
			e.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ImportJSON replaces the whole repository with the backup read from r.
// Records that cannot be repaired are skipped and counted. Version 2
// documents (settings plus entries without a profile) are restored onto
// the default profile.
func (s *BackupService) ImportJSON(ctx context.Context, r io.Reader) (ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportReport{}, err
	}
	var doc importDoc
	if err := json.Unmarshal(bytes.TrimSpace(raw), &doc); err != nil {
		return ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc.Entries == nil && doc.Profiles == nil {
		return ImportReport{}, fmt.Errorf("%w: no profiles or entries", ErrInvalidBackup)
	}
	settings, hasSettings := doc.settings()
	legacy := doc.Profiles == nil && hasSettings

	if err := s.repo.ClearAll(ctx); err != nil {
		return ImportReport{}, err
	}

	var rep ImportReport
	known := map[string]bool{domain.DefaultProfileID: true}

	if legacy {
		p := domain.NewDefaultProfile(s.now())
		p.HeightCm = settings.HeightCm.ptr()
		p.GoalKg = settings.GoalKg.ptr()
		if domain.ValidateProfile(p) != nil {
			p.HeightCm, p.GoalKg = nil, nil
		}
		if _, err := s.repo.SaveProfile(ctx, p); err != nil {
			return rep, err
		}
		rep.Profiles++
	}
	for _, rec := range doc.Profiles {
		var ip importProfile
		if err := json.Unmarshal(rec, &ip); err != nil {
			rep.Skipped++
			continue
		}
		p, ok := ip.profile()
		if !ok {
			rep.Skipped++
			continue
		}
		if _, err := s.repo.SaveProfile(ctx, p); err != nil {
			return rep, err
		}
		known[p.ID] = true
		rep.Profiles++
	}

	// Entries counts stored rows; a later record for the same day replaces
	// the earlier one.
	written := map[string]bool{}
	for _, rec := range doc.Entries {
		var ie importEntry
		if err := json.Unmarshal(rec, &ie); err != nil {
			rep.Skipped++
			continue
		}
		if legacy {
			ie.ProfileID = domain.DefaultProfileID
		}
		e, ok := ie.entry()
		if !ok || !known[e.ProfileID] {
			rep.Skipped++
			continue
		}
		if err := s.repo.SaveEntry(ctx, e); err != nil {
			return rep, err
		}
		written[e.Key()] = true
	}
	rep.Entries = len(written)

	s.log.WithFields(logrus.Fields{
		"profiles": rep.Profiles,
		"entries":  rep.Entries,
		"skipped":  rep.Skipped,
		"legacy":   legacy,
	}).Info("backup imported")
	return rep, nil
}

// Wipe deletes every profile and entry and recreates the default profile.
func (s *BackupService) Wipe(ctx context.Context) error {
	if err := s.repo.ClearAll(ctx); err != nil {
		return err
	}
	s.log.Warn("all data wiped")
	return nil
}

// number decodes a JSON number, a numeric string using either ',' or '.' as
// the decimal separator, or null. Anything else decodes as no value.
type number struct {
	v   float64
	set bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	*n = number{}
	if string(bytes.TrimSpace(b)) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.v, n.set = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		n.v, n.set = f, true
	}
	return nil
}

func (n number) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.v
	return &v
}

// importDoc holds the records undecoded so that one malformed record is
// skipped on its own instead of failing the whole document.
type importDoc struct {
	Version  number            `json:"version"`
	Settings json.RawMessage   `json:"settings"`
	Profiles []json.RawMessage `json:"profiles"`
	Entries  []json.RawMessage `json:"entries"`
}

// settings decodes the legacy settings object. It reports false when the
// document has none.
func (d importDoc) settings() (importSettings, bool) {
	var st importSettings
	if len(d.Settings) == 0 || string(d.Settings) == "null" {
		return st, false
	}
	if err := json.Unmarshal(d.Settings, &st); err != nil {
		return importSettings{}, true
	}
	return st, true
}

type importSettings struct {
	HeightCm number `json:"height_cm"`
	GoalKg   number `json:"goal_kg"`
}

type importProfile struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Age           number     `json:"age"`
	Sex           domain.Sex `json:"sex"`
	Gender        string     `json:"gender"`
	Race          string     `json:"race"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	HeightCm      number     `json:"height_cm"`
	GoalKg        number     `json:"goal_kg"`
	Activity      number     `json:"activity"`
	TrainingStyle string     `json:"training_style"`
	TrainingDays  [7]bool    `json:"training_days"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// profile converts the record, dropping optional fields that fail
// validation. It reports false when the record has no usable id or name.
func (ip importProfile) profile() (domain.Profile, bool) {
	p := domain.Profile{
		ID:            strings.TrimSpace(ip.ID),
		Name:          strings.TrimSpace(ip.Name),
		Sex:           ip.Sex,
		Gender:        ip.Gender,
		Race:          ip.Race,
		Phone:         ip.Phone,
		Address:       ip.Address,
		HeightCm:      ip.HeightCm.ptr(),
		GoalKg:        ip.GoalKg.ptr(),
		Activity:      ip.Activity.v,
		TrainingStyle: ip.TrainingStyle,
		TrainingDays:  ip.TrainingDays,
		CreatedAt:     ip.CreatedAt,
		UpdatedAt:     ip.UpdatedAt,
	}
	if ip.Age.set {
		age := int(math.Round(ip.Age.v))
		p.Age = &age
	}
	if p.ID == "" {
		return p, false
	}
	return repair(p, domain.ValidateProfile, func(p *domain.Profile, field string) bool {
		switch field {
		case "age":
			p.Age = nil
		case "sex":
			p.Sex = domain.SexUnspecified
		case "height_cm":
			p.HeightCm = nil
		case "goal_kg":
			p.GoalKg = nil
		case "activity":
			p.Activity = domain.DefaultActivity
		default:
			return false
		}
		return true
	})
}

type importEntry struct {
	ProfileID  string  `json:"profileId"`
	Date       string  `json:"date"`
	Weight     number  `json:"weight"`
	WaistCm    number  `json:"waist_cm"`
	BodyFatPct number  `json:"bodyfat_pct"`
	Workout    *string `json:"workout"`
	WorkoutMin number  `json:"workout_min"`
	Note       *string `json:"note"`
}

// entry converts the record, dropping optional measures that fail
// validation. It reports false when date, profile or weight is unusable.
func (ie importEntry) entry() (domain.Entry, bool) {
	e := domain.Entry{
		ProfileID:  strings.TrimSpace(ie.ProfileID),
		Date:       strings.TrimSpace(ie.Date),
		Weight:     ie.Weight.v,
		WaistCm:    ie.WaistCm.ptr(),
		BodyFatPct: ie.BodyFatPct.ptr(),
		Workout:    ie.Workout,
		WorkoutMin: ie.WorkoutMin.ptr(),
	}
	if ie.Note != nil {
		e.Note = *ie.Note
	}
	if !ie.Weight.set {
		return e, false
	}
	return repair(e, domain.ValidateEntry, func(e *domain.Entry, field string) bool {
		switch field {
		case "waist_cm":
			e.WaistCm = nil
		case "bodyfat_pct":
			e.BodyFatPct = nil
		case "workout_min":
			e.WorkoutMin = nil
		default:
			return false
		}
		return true
	})
}

// repair validates v and, while the failing field is one drop can clear,
// clears it and tries again.
func repair[T any](v T, validate func(T) error, drop func(*T, string) bool) (T, bool) {
	for {
		err := validate(v)
		if err == nil {
			return v, true
		}
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || !drop(&v, ve.Field) {
			return v, false
		}
	}
}
