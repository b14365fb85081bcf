package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors the environment variables honored at startup.
// PASSWORD_STORE_DIR is the variable pass itself uses, so an existing pass
// setup carries over without extra flags. The passphrase and keygrip use
// the PASSMIGRATE_ prefix to avoid colliding with unrelated GPG tooling.
type envConfig struct {
	Passphrase string `env:"PASSMIGRATE_GPG_PASSPHRASE"`
	Keygrip    string `env:"PASSMIGRATE_ENCRYPTION_KEYGRIP"`
	StoreDir   string `env:"PASSWORD_STORE_DIR"`
}

// ApplyEnv overlays environment values onto cfg.
// Only variables that are set override the current values, keeping the
// precedence file < environment < flags intact.
func ApplyEnv(cfg *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if e.Passphrase != "" {
		cfg.Passphrase = e.Passphrase
	}
	if e.Keygrip != "" {
		cfg.Keygrip = e.Keygrip
	}
	if e.StoreDir != "" {
		cfg.StoreDir = e.StoreDir
	}

	return nil
}
