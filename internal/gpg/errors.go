package gpg

import "errors"

// Decryption errors.
// These errors separate the one fatal condition (no usable gpg binary)
// from the per-entry conditions a migration run records and survives.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. The pipeline treats a missing binary as fatal before
// any entry is touched, while a wrong passphrase or a corrupt blob only
// fails the entry it belongs to.
var (
	// ErrGPGNotFound is returned when the configured gpg binary cannot be
	// resolved in PATH. Nothing can be decrypted without it, so callers
	// should abort before enumerating the store.
	ErrGPGNotFound = errors.New("gpg binary not found in PATH")

	// ErrWrongPassphrase is returned when gpg rejects the supplied
	// passphrase or has no secret key for the entry. The entry is skipped
	// and recorded as a failure.
	ErrWrongPassphrase = errors.New("wrong or missing passphrase")

	// ErrCorruptData is returned when the blob does not contain valid
	// OpenPGP data. This typically means the file was truncated or was
	// never a pass entry in the first place.
	ErrCorruptData = errors.New("not valid OpenPGP data")

	// ErrDecryptTimeout is returned when a single gpg invocation exceeds
	// the configured timeout. A hung pinentry prompt is the usual cause.
	ErrDecryptTimeout = errors.New("decryption timed out")

	// ErrDecryptFailed is returned for gpg failures that do not match a
	// more specific category. The first stderr line is attached for
	// diagnosis; stderr never contains decrypted content.
	ErrDecryptFailed = errors.New("decryption failed")

	// ErrPresetToolNotFound is returned when gpg-preset-passphrase cannot
	// be located via gpgconf or the well-known install directories.
	// Preset is an optimization, so callers treat this as a warning.
	ErrPresetToolNotFound = errors.New("gpg-preset-passphrase not found")
)
