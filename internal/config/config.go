package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the conventions of pass itself where one exists and pick
// secret-safe locations where it does not.
const (
	// DefaultGPGBinary is the GnuPG binary name resolved via PATH.
	// Systems with both gpg 1.x and 2.x installed can point this at
	// "gpg2" through the config file or --gpg-binary.
	DefaultGPGBinary = "gpg"

	// DefaultDecryptTimeout bounds one gpg invocation. Decrypting a single
	// small blob is fast; the generous value leaves room for an interactive
	// pinentry when no passphrase was pre-supplied.
	DefaultDecryptTimeout = 30 * time.Second

	// DefaultOutputFileName is the CSV file name used when only an output
	// directory is implied. The name matches the import dialog's
	// expectation of a Proton Pass CSV.
	DefaultOutputFileName = "protonpass.csv"

	// AppName is the application name used for XDG directory paths.
	AppName = "passmigrate"

	// storeDirName is the standard pass store directory under $HOME.
	storeDirName = ".password-store"
)

// Config holds all configuration options for a migration run.
// This struct is designed to be populated by the merge order defaults →
// config file → environment → CLI flags and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., GPGConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// StoreDir is the root of the pass store to migrate.
	// Defaults to $PASSWORD_STORE_DIR, falling back to ~/.password-store
	// exactly as pass does.
	StoreDir string

	// OutputFile is the destination CSV path. The parent directory is
	// created with 0700 permissions because the file holds every exported
	// secret in clear text until it is imported and deleted.
	OutputFile string

	// Vault is an optional vault name written into each row's vault column.
	// Empty leaves the column blank and lets the importer pick its default.
	Vault string

	// GPGBinary is the gpg executable used for decryption.
	GPGBinary string

	// Passphrase is the optional pre-supplied GPG passphrase.
	// It is never read from or written to the configuration file.
	Passphrase string

	// Keygrip is the optional keygrip of the store's decryption key, used
	// to preset the passphrase into gpg-agent before processing.
	Keygrip string

	// DecryptTimeout bounds each individual gpg invocation.
	DecryptTimeout time.Duration

	// UsernameLabels overrides the recognized username label prefixes.
	// Each label must include its trailing colon. Empty means the
	// classifier default set (username:, user:, login:).
	UsernameLabels []string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .passmigrate in the current
	// directory, the XDG config directory, and the home directory.
	ConfigFilePath string

	// JSONReport emits the run summary as JSON instead of plain text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits the run summary as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is an optional extra file that receives the summary in
	// addition to stdout. Directories are created if needed.
	ReportFile string

	// DryRun classifies every entry but writes no CSV and records no
	// history. Useful to preview failure lists before a real export.
	DryRun bool

	// NoHistory disables recording the run in the local history database.
	NoHistory bool

	// DBDir is the directory holding the run history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (paths, timeout, binary
// name). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		StoreDir:       DefaultStoreDir(),
		OutputFile:     DefaultOutputFile(),
		GPGBinary:      DefaultGPGBinary,
		DecryptTimeout: DefaultDecryptTimeout,
		DBDir:          XDGDataDir(),
	}
}

// DefaultStoreDir returns the standard pass store location under the user's
// home directory. If the home directory cannot be resolved, the relative
// name is returned and validation will surface the problem on first use.
func DefaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return storeDirName
	}
	return filepath.Join(home, storeDirName)
}

// DefaultOutputFile returns the default CSV destination inside the XDG data
// directory. The export holds every secret in clear text, so it defaults to
// a user-private location instead of the current working directory.
func DefaultOutputFile() string {
	return filepath.Join(XDGDataDir(), DefaultOutputFileName)
}

// XDGDataDir returns the XDG data directory for passmigrate.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/passmigrate
// On macOS: ~/Library/Application Support/passmigrate
// On Windows: %LOCALAPPDATA%\passmigrate
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for passmigrate.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/passmigrate
// On macOS: ~/Library/Application Support/passmigrate
// On Windows: %APPDATA%\passmigrate
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after flag parsing, before any decryption begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StoreDir) == "" {
		return ErrNoStoreDir
	}

	if strings.TrimSpace(c.OutputFile) == "" {
		return ErrNoOutputFile
	}

	if strings.TrimSpace(c.GPGBinary) == "" {
		return ErrNoGPGBinary
	}

	// Zero or negative timeout would kill every gpg invocation immediately
	if c.DecryptTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Labels without the colon would turn prefix matching into substring
	// guessing ("user" would claim "userdata backup")
	for _, label := range c.UsernameLabels {
		if !strings.HasSuffix(label, ":") {
			return ErrInvalidUsernameLabel
		}
	}

	return nil
}
