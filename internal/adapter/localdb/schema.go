package localdb

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"bodylog/internal/domain"
	"bodylog/internal/store"
)

// CurrentGeneration is the schema generation this package reads and writes.
//
//	1: entries keyed by date, settings keyed by name (single user)
//	2: same layout as 1
//	3: profiles + entries2 keyed by "profileId|date", indexed by profile
const CurrentGeneration = 3

// legacyEntry is an entries record from generations 1 and 2.
type legacyEntry struct {
	Date       string   `json:"date"`
	Weight     float64  `json:"weight"`
	Note       string   `json:"note"`
	WaistCm    *float64 `json:"waist_cm"`
	BodyFatPct *float64 `json:"bodyfat_pct"`
}

// legacySetting is a settings record from generations 1 and 2.
type legacySetting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (d *DB) upgrades() []store.Upgrade {
	return []store.Upgrade{
		{To: 1, Name: "entries and settings", Apply: createLegacyCollections},
		{To: 2, Name: "no layout change", Apply: func(context.Context, *store.Tx) error { return nil }},
		{To: 3, Name: "profiles", Apply: d.introduceProfiles},
	}
}

func createLegacyCollections(_ context.Context, tx *store.Tx) error {
	if err := tx.CreateCollection(collLegacyEntries); err != nil {
		return err
	}
	return tx.CreateCollection(collLegacySettings)
}

// introduceProfiles creates the default profile and copies every legacy entry
// under it. Destination keys depend only on (profile, date), so running it
// again rewrites the same records.
func (d *DB) introduceProfiles(ctx context.Context, tx *store.Tx) error {
	if err := tx.CreateCollection(collProfiles); err != nil {
		return err
	}
	if err := tx.CreateCollection(collEntries); err != nil {
		return err
	}

	p := domain.NewDefaultProfile(d.now())
	if err := mergeLegacySettings(tx, &p); err != nil {
		return err
	}
	if err := putProfile(tx, p); err != nil {
		return err
	}

	has, err := tx.HasCollection(collLegacyEntries)
	if err != nil || !has {
		return err
	}
	copied := 0
	for rec, err := range tx.Scan(collLegacyEntries, "") {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		old, err := decode[legacyEntry](collLegacyEntries, rec.Key, rec.Value)
		if err != nil {
			return err
		}
		if old.Date == "" {
			old.Date = rec.Key
		}
		e := domain.Entry{
			ProfileID:  domain.DefaultProfileID,
			Date:       old.Date,
			Weight:     old.Weight,
			WaistCm:    old.WaistCm,
			BodyFatPct: old.BodyFatPct,
			Note:       old.Note,
		}
		if err := putEntry(tx, e); err != nil {
			return err
		}
		copied++
	}
	d.log.WithField("entries", copied).Info("legacy entries copied to default profile")
	return nil
}

// mergeLegacySettings copies height_cm and goal_kg onto p when the legacy
// settings hold a positive number for them.
func mergeLegacySettings(tx *store.Tx, p *domain.Profile) error {
	has, err := tx.HasCollection(collLegacySettings)
	if err != nil || !has {
		return err
	}
	for key, dst := range map[string]**float64{"height_cm": &p.HeightCm, "goal_kg": &p.GoalKg} {
		raw, err := tx.Get(collLegacySettings, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		s, err := decode[legacySetting](collLegacySettings, key, raw)
		if err != nil {
			return err
		}
		var v float64
		if json.Unmarshal(s.Value, &v) != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		*dst = &v
	}
	return nil
}
