package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database, mostly for tests.
const MemoryPath = ":memory:"

// Upgrade moves the schema from generation To-1 to generation To.
type Upgrade struct {
	To    int
	Name  string
	Apply func(ctx context.Context, tx *Tx) error
}

// Options configures Open.
type Options struct {
	// Generation is the schema generation the caller expects. Required.
	Generation int
	// Upgrades may be given in any order. A missing step is a no-op.
	Upgrades []Upgrade
	Logger   *logrus.Entry
}

// Store is an open database handle.
type Store struct {
	db         *sql.DB
	path       string
	generation int
	log        *logrus.Entry
}

// Open opens (creating if needed) the database at path and upgrades it to
// opts.Generation. Every failure is returned as an *OpenError.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.WithField("component", "store")
	}
	if opts.Generation < 1 {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("invalid generation %d", opts.Generation)}
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &OpenError{Path: path, Err: fmt.Errorf("creating database directory: %w", err)}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("opening database: %w", err)}
	}
	// One connection: the engine serializes all transactions, and an
	// in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path, log: log.WithField("path", path)}
	if err := s.init(ctx, opts); err != nil {
		return nil, &OpenError{Path: path, Err: multierr.Append(err, db.Close())}
	}
	s.log.WithField("generation", s.generation).Info("store opened")
	return s, nil
}

func (s *Store) init(ctx context.Context, opts Options) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}

	onDisk, err := s.readGeneration(ctx)
	if err != nil {
		return err
	}
	switch {
	case onDisk > opts.Generation:
		return fmt.Errorf("%w: file has %d, want %d", ErrNewerGeneration, onDisk, opts.Generation)
	case onDisk == opts.Generation:
		s.generation = onDisk
		return nil
	}

	steps := make([]Upgrade, 0, len(opts.Upgrades))
	for _, u := range opts.Upgrades {
		if u.To > onDisk && u.To <= opts.Generation {
			steps = append(steps, u)
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].To < steps[j].To })

	err = s.Update(ctx, func(tx *Tx) error {
		for _, u := range steps {
			s.log.WithFields(logrus.Fields{"to": u.To, "upgrade": u.Name}).Info("applying upgrade")
			if err := u.Apply(ctx, tx); err != nil {
				return fmt.Errorf("upgrade to generation %d (%s): %w", u.To, u.Name, err)
			}
		}
		// user_version lives in the file header and commits with the transaction.
		if _, err := tx.tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", opts.Generation)); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"from": onDisk, "to": opts.Generation}).Info("schema upgraded")
	s.generation = opts.Generation
	return nil
}

func (s *Store) readGeneration(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading generation: %w", err)
	}
	return v, nil
}

// Generation reports the schema generation after Open.
func (s *Store) Generation() int { return s.generation }

// Path returns the database path given to Open.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error {
	s.log.Debug("closing store")
	return s.db.Close()
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, false, fn)
}

// Update runs fn in a read-write transaction. Everything fn wrote is
// committed if it returns nil and discarded otherwise.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, writable bool, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}
	tx := &Tx{tx: sqlTx, ctx: ctx, writable: writable}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return multierr.Append(err, &StorageError{Op: "rollback", Err: rbErr})
		}
		return err
	}
	if !writable {
		if err := sqlTx.Rollback(); err != nil {
			return &StorageError{Op: "rollback", Err: err}
		}
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	return nil
}
