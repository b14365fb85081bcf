// Package main provides the entry point for the passmigrate CLI.
//
// passmigrate migrates a GPG-encrypted pass (password-store) hierarchy
// into a flat CSV file that Proton Pass can import. Each entry is
// decrypted with the local gpg binary, classified into login fields,
// and written as one CSV row. Decrypted payloads only ever exist in
// memory.
//
// Usage:
//
//	passmigrate export
//	passmigrate history
//
// See --help for all available options.
package main

// main is the entry point for passmigrate.
func main() {
	Execute()
}
