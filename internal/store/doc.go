// Package store is an embedded, transactional key-value store built on
// SQLite (modernc.org/sqlite).
//
// Records live in named collections. Each collection is one table:
//
//	key   TEXT PRIMARY KEY  -- record key, scanned in byte order
//	idx   TEXT              -- optional secondary index value
//	value TEXT NOT NULL     -- JSON-encoded record
//
// The schema generation is kept in PRAGMA user_version. Open runs every
// registered Upgrade between the on-disk generation and the requested one
// inside a single transaction, so a failed upgrade leaves the file exactly as
// it was and Open returns an *OpenError.
//
// All reads and writes happen inside View or Update. The store holds a single
// connection, which serializes every transaction; callers do no locking.
package store
