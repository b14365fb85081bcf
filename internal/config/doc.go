// Package config provides configuration structures and utilities for
// passmigrate. It defines the options of a migration run (store location,
// output placement, GPG invocation, report preferences) and merges them
// from defaults, the configuration file, environment variables, and CLI
// flags in that order of increasing precedence.
//
// The GPG passphrase is deliberately absent from the configuration file
// schema: it can only arrive via environment variable or flag, so a
// committed or shared .passmigrate file can never contain it.
package config
