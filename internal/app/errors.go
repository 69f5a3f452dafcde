// Package app holds the application services: profiles, entries, statistics,
// backups and the optional password lock.
package app

import "errors"

var (
	// ErrProfileNotFound indicates that the requested profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidBackup indicates that an import document is not a backup.
	ErrInvalidBackup = errors.New("invalid backup document")
)
