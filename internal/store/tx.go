package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Record is one stored key/value pair.
type Record struct {
	Key   string
	Index string
	Value []byte
}

// Tx is a transaction scope handed to View and Update callbacks. It must not
// be used after the callback returns.
type Tx struct {
	tx       *sql.Tx
	ctx      context.Context
	writable bool
}

func table(coll string) (string, error) {
	if !collectionName.MatchString(coll) {
		return "", fmt.Errorf("invalid collection name %q", coll)
	}
	return `"` + coll + `"`, nil
}

func (t *Tx) checkWrite(op, coll string) (string, error) {
	name, err := table(coll)
	if err != nil {
		return "", &StorageError{Op: op, Collection: coll, Err: err}
	}
	if !t.writable {
		return "", &StorageError{Op: op, Collection: coll, Err: ErrReadOnly}
	}
	return name, nil
}

// HasCollection reports whether coll has been created.
func (t *Tx) HasCollection(coll string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, coll,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("has-collection", coll, "", err)
	}
	return true, nil
}

// CreateCollection creates coll and its secondary index if absent.
func (t *Tx) CreateCollection(coll string) error {
	name, err := t.checkWrite("create-collection", coll)
	if err != nil {
		return err
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, idx TEXT, value TEXT NOT NULL)`, name),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "%s_idx" ON %s(idx, key)`, coll, name),
	}
	for _, stmt := range stmts {
		if _, err := t.tx.ExecContext(t.ctx, stmt); err != nil {
			return storageErr("create-collection", coll, "", err)
		}
	}
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (t *Tx) Get(coll, key string) ([]byte, error) {
	name, err := table(coll)
	if err != nil {
		return nil, &StorageError{Op: "get", Collection: coll, Key: key, Err: err}
	}
	var value string
	err = t.tx.QueryRowContext(t.ctx, `SELECT value FROM `+name+` WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", coll, key, err)
	}
	return []byte(value), nil
}

// Put stores value under key, replacing any previous record. An empty idx
// leaves the record out of the secondary index.
func (t *Tx) Put(coll, key, idx string, value []byte) error {
	name, err := t.checkWrite("put", coll)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(t.ctx,
		`INSERT INTO `+name+` (key, idx, value) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET idx = excluded.idx, value = excluded.value`,
		key, sql.NullString{String: idx, Valid: idx != ""}, string(value),
	)
	if err != nil {
		return storageErr("put", coll, key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (t *Tx) Delete(coll, key string) error {
	name, err := t.checkWrite("delete", coll)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM `+name+` WHERE key = ?`, key); err != nil {
		return storageErr("delete", coll, key, err)
	}
	return nil
}

// Clear removes every record of coll.
func (t *Tx) Clear(coll string) error {
	name, err := t.checkWrite("clear", coll)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM `+name); err != nil {
		return storageErr("clear", coll, "", err)
	}
	return nil
}

// Count returns the number of records in coll.
func (t *Tx) Count(coll string) (int, error) {
	name, err := table(coll)
	if err != nil {
		return 0, &StorageError{Op: "count", Collection: coll, Err: err}
	}
	var n int
	if err := t.tx.QueryRowContext(t.ctx, `SELECT COUNT(1) FROM `+name).Scan(&n); err != nil {
		return 0, storageErr("count", coll, "", err)
	}
	return n, nil
}

// Scan yields the records of coll whose key starts with prefix, in key
// order. An empty prefix yields the whole collection. The sequence reads
// lazily from one cursor and stops at the first error.
func (t *Tx) Scan(coll, prefix string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		name, err := table(coll)
		if err != nil {
			yield(Record{}, &StorageError{Op: "scan", Collection: coll, Err: err})
			return
		}
		rows, err := t.tx.QueryContext(t.ctx,
			`SELECT key, idx, value FROM `+name+` WHERE key >= ? ORDER BY key`, prefix)
		if err != nil {
			yield(Record{}, storageErr("scan", coll, "", err))
			return
		}
		defer rows.Close() //nolint:errcheck

		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				yield(Record{}, storageErr("scan", coll, "", err))
				return
			}
			// Keys sharing the prefix are contiguous in byte order.
			if !strings.HasPrefix(r.Key, prefix) {
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Record{}, storageErr("scan", coll, "", err))
		}
	}
}

// ScanIndex yields the records of coll whose secondary index equals idx, in
// key order.
func (t *Tx) ScanIndex(coll, idx string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		name, err := table(coll)
		if err != nil {
			yield(Record{}, &StorageError{Op: "scan-index", Collection: coll, Err: err})
			return
		}
		rows, err := t.tx.QueryContext(t.ctx,
			`SELECT key, idx, value FROM `+name+` WHERE idx = ? ORDER BY key`, idx)
		if err != nil {
			yield(Record{}, storageErr("scan-index", coll, "", err))
			return
		}
		defer rows.Close() //nolint:errcheck

		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				yield(Record{}, storageErr("scan-index", coll, "", err))
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Record{}, storageErr("scan-index", coll, "", err))
		}
	}
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		r     Record
		idx   sql.NullString
		value string
	)
	if err := rows.Scan(&r.Key, &idx, &value); err != nil {
		return Record{}, err
	}
	r.Index = idx.String
	r.Value = []byte(value)
	return r, nil
}
