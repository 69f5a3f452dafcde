package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOpen is matched by every *OpenError.
	ErrOpen = errors.New("store open failed")
	// ErrStorage is matched by every *StorageError.
	ErrStorage = errors.New("storage operation failed")
	// ErrNewerGeneration means the file was written by a newer schema than requested.
	ErrNewerGeneration = errors.New("on-disk generation is newer than requested")
	// ErrNoCollection means the named collection has not been created.
	ErrNoCollection = errors.New("no such collection")
	// ErrReadOnly is returned by write operations inside View.
	ErrReadOnly = errors.New("write in read-only transaction")
)

// OpenError reports a failure to open or upgrade the store. The store must
// not be used after it.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open store %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOpen) true.
func (e *OpenError) Is(target error) bool { return target == ErrOpen }

// StorageError reports a failed get, put, delete or scan.
type StorageError struct {
	Op         string
	Collection string
	Key        string
	Err        error
}

func (e *StorageError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Collection, e.Key, e.Err)
	case e.Collection != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) true.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op, coll, key string, err error) error {
	if isNoSuchTable(err) {
		err = fmt.Errorf("%w: %v", ErrNoCollection, err)
	}
	return &StorageError{Op: op, Collection: coll, Key: key, Err: err}
}

// isNoSuchTable checks if the error is a SQLite missing-table error.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
