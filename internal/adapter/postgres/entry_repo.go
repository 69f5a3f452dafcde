package postgres

import (
	"context"
	"database/sql"

	"bodylog/internal/domain"
)

// ListEntries returns the profile's entries, most recent first.
func (d *DB) ListEntries(ctx context.Context, profileID string) ([]domain.Entry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT profile_id, day, weight, waist_cm, bodyfat_pct, workout, workout_min, note FROM entries WHERE profile_id = $1 ORDER BY day DESC;",
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Entry{}
	for rows.Next() {
		var (
			e                     domain.Entry
			waist, bf, workoutMin sql.NullFloat64
			workout               sql.NullString
		)
		if err := rows.Scan(&e.ProfileID, &e.Date, &e.Weight, &waist, &bf, &workout, &workoutMin, &e.Note); err != nil {
			return nil, err
		}
		e.WaistCm = floatPtr(waist)
		e.BodyFatPct = floatPtr(bf)
		e.Workout = stringPtr(workout)
		e.WorkoutMin = floatPtr(workoutMin)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveEntry upserts e by (profile, day).
func (d *DB) SaveEntry(ctx context.Context, e domain.Entry) error {
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO entries (profile_id, day, weight, waist_cm, bodyfat_pct, workout, workout_min, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (profile_id, day) DO UPDATE SET
			weight = EXCLUDED.weight, waist_cm = EXCLUDED.waist_cm, bodyfat_pct = EXCLUDED.bodyfat_pct,
			workout = EXCLUDED.workout, workout_min = EXCLUDED.workout_min, note = EXCLUDED.note;`,
		e.ProfileID, e.Date, e.Weight, nullFloat(e.WaistCm), nullFloat(e.BodyFatPct),
		nullString(e.Workout), nullFloat(e.WorkoutMin), e.Note,
	)
	return err
}

// DeleteEntry removes one entry by composite key.
func (d *DB) DeleteEntry(ctx context.Context, key string) error {
	profileID, day, err := domain.ParseEntryKey(key)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, "DELETE FROM entries WHERE profile_id = $1 AND day = $2;", profileID, day)
	return err
}
