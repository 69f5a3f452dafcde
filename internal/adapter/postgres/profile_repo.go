package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"bodylog/internal/domain"
)

const profileColumns = "id, name, age, sex, gender, race, phone, address, height_cm, goal_kg, activity, training_style, training_days, created_at, updated_at"

const insertProfileSQL = "INSERT INTO profiles (" + profileColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)"

func profileArgs(p domain.Profile) []any {
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}
	return []any{
		p.ID, p.Name, age, string(p.Sex), p.Gender, p.Race, p.Phone, p.Address,
		nullFloat(p.HeightCm), nullFloat(p.GoalKg), p.Activity, p.TrainingStyle,
		pq.BoolArray(p.TrainingDays[:]), p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (domain.Profile, error) {
	var (
		p         domain.Profile
		sex       string
		age       sql.NullInt64
		height    sql.NullFloat64
		goal      sql.NullFloat64
		trainDays pq.BoolArray
	)
	err := row.Scan(&p.ID, &p.Name, &age, &sex, &p.Gender, &p.Race, &p.Phone, &p.Address,
		&height, &goal, &p.Activity, &p.TrainingStyle, &trainDays, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Sex = domain.Sex(sex)
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	p.HeightCm = floatPtr(height)
	p.GoalKg = floatPtr(goal)
	copy(p.TrainingDays[:], trainDays)
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return p, nil
}

// ListProfiles returns every profile ordered by creation time.
func (d *DB) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+profileColumns+" FROM profiles ORDER BY created_at, id;")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProfile returns the profile with the given id, or nil if absent.
func (d *DB) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1;", id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile upserts p. CreatedAt is kept from the stored row when the
// caller leaves it zero.
func (d *DB) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return domain.Profile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := d.now().UTC()
	if p.CreatedAt.IsZero() {
		var created time.Time
		err := tx.QueryRowContext(ctx, "SELECT created_at FROM profiles WHERE id = $1 FOR UPDATE;", p.ID).Scan(&created)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			p.CreatedAt = now
		case err != nil:
			return domain.Profile{}, err
		default:
			p.CreatedAt = created.UTC()
		}
	}
	p.UpdatedAt = now
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}

	_, err = tx.ExecContext(ctx, insertProfileSQL+`
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, age = EXCLUDED.age, sex = EXCLUDED.sex, gender = EXCLUDED.gender,
			race = EXCLUDED.race, phone = EXCLUDED.phone, address = EXCLUDED.address,
			height_cm = EXCLUDED.height_cm, goal_kg = EXCLUDED.goal_kg, activity = EXCLUDED.activity,
			training_style = EXCLUDED.training_style, training_days = EXCLUDED.training_days,
			created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at;`,
		profileArgs(p)...,
	)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// DeleteProfile removes the profile; its entries go with it through the
// foreign key.
func (d *DB) DeleteProfile(ctx context.Context, id string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1;", id)
	return err
}

// ClearAll empties every table and recreates the default profile.
func (d *DB) ClearAll(ctx context.Context) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries;"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM profiles;"); err != nil {
		return err
	}
	if err := insertDefaultProfile(ctx, tx, d.now()); err != nil {
		return err
	}
	return tx.Commit()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
