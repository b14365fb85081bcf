package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoStoreDir is returned when no password store directory is
	// configured. This should not happen with defaults in place; it guards
	// against an explicit empty --store flag or config entry.
	ErrNoStoreDir = errors.New("no password store specified: set --store or PASSWORD_STORE_DIR")

	// ErrNoOutputFile is returned when the output CSV path is empty.
	ErrNoOutputFile = errors.New("no output file specified: set --output")

	// ErrNoGPGBinary is returned when the gpg binary name is empty.
	// An empty name cannot be resolved via PATH.
	ErrNoGPGBinary = errors.New("no gpg binary specified: set --gpg-binary")

	// ErrInvalidTimeout is returned when the decrypt timeout is not positive.
	// A timeout of zero or negative would kill every gpg invocation
	// before it produces output.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one summary format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidUsernameLabel is returned when a configured username label
	// does not end with a colon. The colon is part of the prefix match;
	// without it "user" would claim arbitrary lines starting with "user".
	ErrInvalidUsernameLabel = errors.New("invalid username label: labels must end with a colon")
)
