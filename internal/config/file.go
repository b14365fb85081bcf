package config

import "time"

// File represents the structure of the .passmigrate configuration file.
// Every field is optional; absent fields keep their defaults. The GPG
// passphrase has no place in this schema on purpose.
type File struct {
	// StoreDir is the pass store root to migrate.
	StoreDir string `yaml:"store_dir,omitempty"`

	// OutputFile is the destination CSV path.
	OutputFile string `yaml:"output_file,omitempty"`

	// Vault is the vault name written into each exported row.
	Vault string `yaml:"vault,omitempty"`

	// GPGBinary is the gpg executable to invoke.
	GPGBinary string `yaml:"gpg_binary,omitempty"`

	// Keygrip is the decryption key's keygrip for agent passphrase preset.
	// The keygrip identifies the key; it is not the passphrase itself.
	Keygrip string `yaml:"keygrip,omitempty"`

	// TimeoutSeconds bounds each gpg invocation, in seconds.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// UsernameLabels overrides the recognized username label prefixes.
	// Labels must include their trailing colon.
	UsernameLabels []string `yaml:"username_labels,omitempty"`

	// History enables or disables run history recording.
	// A pointer distinguishes "absent" from an explicit false.
	History *bool `yaml:"history,omitempty"`

	// DBDir is the directory holding the run history database.
	DBDir string `yaml:"db_dir,omitempty"`
}

// Apply overlays the file's values onto cfg.
// Only fields present in the file override the current values, so the
// precedence defaults < file holds regardless of which fields are set.
func (f *File) Apply(cfg *Config) {
	if f.StoreDir != "" {
		cfg.StoreDir = f.StoreDir
	}
	if f.OutputFile != "" {
		cfg.OutputFile = f.OutputFile
	}
	if f.Vault != "" {
		cfg.Vault = f.Vault
	}
	if f.GPGBinary != "" {
		cfg.GPGBinary = f.GPGBinary
	}
	if f.Keygrip != "" {
		cfg.Keygrip = f.Keygrip
	}
	if f.TimeoutSeconds > 0 {
		cfg.DecryptTimeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	if len(f.UsernameLabels) > 0 {
		cfg.UsernameLabels = f.UsernameLabels
	}
	if f.History != nil {
		cfg.NoHistory = !*f.History
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
}
