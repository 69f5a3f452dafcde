// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bodylog/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	entries  map[string]domain.Entry
	sessions map[string]*domain.Session

	now func() time.Time
}

// New creates a new in-memory database holding only the default profile.
func New() *DB {
	return NewWithClock(time.Now)
}

// NewWithClock is New with a custom clock for timestamps.
func NewWithClock(now func() time.Time) *DB {
	db := &DB{
		profiles: make(map[string]domain.Profile),
		entries:  make(map[string]domain.Entry),
		sessions: make(map[string]*domain.Session),
		now:      now,
	}
	db.profiles[domain.DefaultProfileID] = domain.NewDefaultProfile(now())
	return db
}

// Ensure interfaces are met.
var _ domain.Repository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- ProfileRepository ---

// ListProfiles returns every profile ordered by creation time.
func (db *DB) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Profile, 0, len(db.profiles))
	for _, p := range db.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetProfile returns the profile with the given id, or nil if absent.
func (db *DB) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// SaveProfile upserts p by id, stamping its timestamps.
func (db *DB) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now().UTC()
	if p.CreatedAt.IsZero() {
		if existing, ok := db.profiles[p.ID]; ok {
			p.CreatedAt = existing.CreatedAt
		} else {
			p.CreatedAt = now
		}
	}
	p.UpdatedAt = now
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	db.profiles[p.ID] = p
	return p, nil
}

// DeleteProfile removes the profile and all of its entries.
func (db *DB) DeleteProfile(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for k, e := range db.entries {
		if e.ProfileID == id {
			delete(db.entries, k)
		}
	}
	delete(db.profiles, id)
	return nil
}

// ClearAll removes everything and recreates the default profile.
func (db *DB) ClearAll(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	clear(db.entries)
	clear(db.profiles)
	db.profiles[domain.DefaultProfileID] = domain.NewDefaultProfile(db.now())
	return nil
}

// --- EntryRepository ---

// ListEntries returns the profile's entries, most recent first.
func (db *DB) ListEntries(ctx context.Context, profileID string) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.Entry{}
	for _, e := range db.entries {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// SaveEntry upserts e by (profile, date).
func (db *DB) SaveEntry(ctx context.Context, e domain.Entry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entries[e.Key()] = e
	return nil
}

// DeleteEntry removes one entry by composite key.
func (db *DB) DeleteEntry(ctx context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.entries, key)
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, token, userAgent string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: r.db.now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if r.db.now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
