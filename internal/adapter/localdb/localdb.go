// Package localdb implements the domain repositories on the embedded store.
package localdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"bodylog/internal/domain"
	"bodylog/internal/store"
)

// Collection names. The legacy ones are never removed.
const (
	collProfiles       = "profiles"
	collEntries        = "entries2"
	collLegacyEntries  = "entries"
	collLegacySettings = "settings"
)

// DB implements domain.Repository on a *store.Store.
type DB struct {
	store *store.Store
	now   func() time.Time
	log   *logrus.Entry
}

var _ domain.Repository = (*DB)(nil)

// Option configures Open.
type Option func(*DB)

// WithClock replaces time.Now for timestamps written by the repository.
func WithClock(now func() time.Time) Option {
	return func(d *DB) { d.now = now }
}

// WithLogger sets the component logger.
func WithLogger(l *logrus.Entry) Option {
	return func(d *DB) { d.log = l }
}

// Open opens the database file at path and upgrades it to CurrentGeneration.
// Any failure is a *store.OpenError; the file is left untouched by a failed
// upgrade.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	d := &DB{now: time.Now, log: logrus.WithField("component", "localdb")}
	for _, o := range opts {
		o(d)
	}
	s, err := store.Open(ctx, path, store.Options{
		Generation: CurrentGeneration,
		Upgrades:   d.upgrades(),
		Logger:     d.log.WithField("layer", "store"),
	})
	if err != nil {
		return nil, err
	}
	d.store = s
	return d, nil
}

// Close closes the underlying store.
func (d *DB) Close() error {
	return d.store.Close()
}

// Generation reports the schema generation of the open file.
func (d *DB) Generation() int {
	return d.store.Generation()
}

func decode[T any](coll, key string, raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &store.StorageError{Op: "decode", Collection: coll, Key: key, Err: err}
	}
	return v, nil
}

func encode(coll, key string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &store.StorageError{Op: "encode", Collection: coll, Key: key, Err: err}
	}
	return b, nil
}
