package model

import (
	"errors"
	"strings"
)

// EncryptedEntry errors.
var (
	// ErrEmptyEntryName is returned when the logical entry name is empty.
	ErrEmptyEntryName = errors.New("entry name cannot be empty")
	// ErrEmptyBlobPath is returned when the encrypted blob path is empty.
	ErrEmptyBlobPath = errors.New("entry blob path cannot be empty")
)

// EncryptedEntry is an immutable value object identifying one password-store
// item: its logical name and the encrypted blob file backing it.
//
// The logical name is the blob's path relative to the store root with the
// encryption suffix stripped and separators normalized to "/", so the entry
// for social/example.com/alice.gpg is named "social/example.com/alice".
// Entries are created by the store walker and discarded after processing.
type EncryptedEntry struct {
	name     string // Logical name, slash-separated
	blobPath string // Absolute path to the encrypted file
}

// NewEncryptedEntry creates a new EncryptedEntry from a logical name and the
// path of its encrypted blob. Returns an error if either is empty.
func NewEncryptedEntry(name, blobPath string) (EncryptedEntry, error) {
	if strings.TrimSpace(name) == "" {
		return EncryptedEntry{}, ErrEmptyEntryName
	}
	if strings.TrimSpace(blobPath) == "" {
		return EncryptedEntry{}, ErrEmptyBlobPath
	}
	return EncryptedEntry{name: name, blobPath: blobPath}, nil
}

// Name returns the logical, slash-separated entry name.
func (e EncryptedEntry) Name() string { return e.name }

// BlobPath returns the path of the encrypted blob file.
func (e EncryptedEntry) BlobPath() string { return e.blobPath }

// String returns the logical name. The blob path is an implementation detail
// and stays out of user-facing output.
func (e EncryptedEntry) String() string { return e.name }
