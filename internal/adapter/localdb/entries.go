package localdb

import (
	"context"
	"sort"

	"bodylog/internal/domain"
	"bodylog/internal/store"
)

func putEntry(tx *store.Tx, e domain.Entry) error {
	key := e.Key()
	b, err := encode(collEntries, key, e)
	if err != nil {
		return err
	}
	return tx.Put(collEntries, key, e.ProfileID, b)
}

// ListEntries returns the entries of profileID, most recent date first.
func (d *DB) ListEntries(ctx context.Context, profileID string) ([]domain.Entry, error) {
	out := []domain.Entry{}
	err := d.store.View(ctx, func(tx *store.Tx) error {
		for rec, err := range tx.ScanIndex(collEntries, profileID) {
			if err != nil {
				return err
			}
			e, err := decode[domain.Entry](collEntries, rec.Key, rec.Value)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// SaveEntry upserts e under "profileId|date".
func (d *DB) SaveEntry(ctx context.Context, e domain.Entry) error {
	return d.store.Update(ctx, func(tx *store.Tx) error {
		return putEntry(tx, e)
	})
}

// DeleteEntry removes one entry by composite key.
func (d *DB) DeleteEntry(ctx context.Context, key string) error {
	return d.store.Update(ctx, func(tx *store.Tx) error {
		return tx.Delete(collEntries, key)
	})
}
