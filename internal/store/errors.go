package store

import "errors"

// Store enumeration errors.
// These are fatal for the whole run: without a readable store root there is
// nothing to migrate.
var (
	// ErrStoreNotFound is returned when the store root does not exist.
	ErrStoreNotFound = errors.New("password store not found")

	// ErrNotDirectory is returned when the store root exists but is not a
	// directory.
	ErrNotDirectory = errors.New("password store is not a directory")
)
