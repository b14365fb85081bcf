// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (passphrases, decrypted fields)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// A migration run decrypts every entry of a password store, so log output is
// a leak vector that must be closed structurally rather than by convention.
// The SecureHandler automatically sanitizes:
//   - GPG material (passphrases, keygrips)
//   - Decrypted entry content (passwords, usernames, emails, notes, TOTP)
//   - Secret values detected by pattern matching (PGP armor, otpauth URIs,
//     long generated strings)
//
// Even in verbose mode, sensitive values are masked so that logs can be
// shared when reporting problems without re-reviewing every line.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("entry processed",
//	    "entry", "social/example.com/alice",
//	    "passphrase", "hunter2", // Will be sanitized to ***REDACTED***
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
