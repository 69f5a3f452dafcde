package localdb

import (
	"context"
	"errors"
	"sort"

	"bodylog/internal/domain"
	"bodylog/internal/store"
)

func putProfile(tx *store.Tx, p domain.Profile) error {
	b, err := encode(collProfiles, p.ID, p)
	if err != nil {
		return err
	}
	return tx.Put(collProfiles, p.ID, "", b)
}

func getProfile(tx *store.Tx, id string) (*domain.Profile, error) {
	raw, err := tx.Get(collProfiles, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p, err := decode[domain.Profile](collProfiles, id, raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns every profile ordered by creation time.
func (d *DB) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	var out []domain.Profile
	err := d.store.View(ctx, func(tx *store.Tx) error {
		for rec, err := range tx.Scan(collProfiles, "") {
			if err != nil {
				return err
			}
			p, err := decode[domain.Profile](collProfiles, rec.Key, rec.Value)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetProfile returns the profile with the given id, or nil if absent.
func (d *DB) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var p *domain.Profile
	err := d.store.View(ctx, func(tx *store.Tx) error {
		var err error
		p, err = getProfile(tx, id)
		return err
	})
	return p, err
}

// SaveProfile upserts p by id and refreshes UpdatedAt. CreatedAt is kept
// from the stored record when the caller leaves it zero.
func (d *DB) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	now := d.now().UTC()
	err := d.store.Update(ctx, func(tx *store.Tx) error {
		if p.CreatedAt.IsZero() {
			existing, err := getProfile(tx, p.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				p.CreatedAt = existing.CreatedAt
			} else {
				p.CreatedAt = now
			}
		}
		p.UpdatedAt = now
		if p.UpdatedAt.Before(p.CreatedAt) {
			p.UpdatedAt = p.CreatedAt
		}
		return putProfile(tx, p)
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// DeleteProfile removes the profile and every entry indexed under it in one
// transaction.
func (d *DB) DeleteProfile(ctx context.Context, id string) error {
	return d.store.Update(ctx, func(tx *store.Tx) error {
		var keys []string
		for rec, err := range tx.ScanIndex(collEntries, id) {
			if err != nil {
				return err
			}
			keys = append(keys, rec.Key)
		}
		for _, k := range keys {
			if err := tx.Delete(collEntries, k); err != nil {
				return err
			}
		}
		if err := tx.Delete(collProfiles, id); err != nil {
			return err
		}
		d.log.WithField("profile", id).WithField("entries", len(keys)).Info("profile deleted")
		return nil
	})
}

// ClearAll empties profiles and entries and recreates the default profile,
// leaving the store as a first install would. Legacy collections are kept.
func (d *DB) ClearAll(ctx context.Context) error {
	return d.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Clear(collEntries); err != nil {
			return err
		}
		if err := tx.Clear(collProfiles); err != nil {
			return err
		}
		return putProfile(tx, domain.NewDefaultProfile(d.now()))
	})
}
