// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"bodylog/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	now func() time.Time
}

var _ domain.Repository = (*DB)(nil)

// Open connects to PostgreSQL, pings, runs migrations and makes sure the
// default profile exists.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s, now: time.Now}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := d.ensureDefaultProfile(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			age INTEGER,
			sex TEXT NOT NULL DEFAULT '' CHECK(sex IN ('M','F','')),
			gender TEXT NOT NULL DEFAULT '',
			race TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			height_cm DOUBLE PRECISION,
			goal_kg DOUBLE PRECISION,
			activity DOUBLE PRECISION NOT NULL,
			training_style TEXT NOT NULL DEFAULT '',
			training_days BOOLEAN[] NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			day TEXT NOT NULL,
			weight DOUBLE PRECISION NOT NULL,
			waist_cm DOUBLE PRECISION,
			bodyfat_pct DOUBLE PRECISION,
			workout TEXT,
			workout_min DOUBLE PRECISION,
			note TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (profile_id, day)
		);`,
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_agent TEXT NOT NULL, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (d *DB) ensureDefaultProfile(ctx context.Context) error {
	return insertDefaultProfile(ctx, d.sql, d.now())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDefaultProfile(ctx context.Context, ex execer, now time.Time) error {
	p := domain.NewDefaultProfile(now)
	_, err := ex.ExecContext(ctx, insertProfileSQL+" ON CONFLICT (id) DO NOTHING;", profileArgs(p)...)
	if err != nil {
		return fmt.Errorf("ensure default profile: %w", err)
	}
	return nil
}
