// Package model defines the core data structures used throughout passmigrate.
//
// This package contains the following main types:
//   - EncryptedEntry: One password-store item found by the store walker
//   - DecryptedPayload: The plaintext lines returned by the decryptor
//   - ClassifiedRecord: The field-classified form of one payload
//   - ExportRow: One row of the CSV import format
//   - ExportReport: The result of a whole migration run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (store, classify, pipeline, report) need to
// use these types, so centralizing them prevents import cycles.
//
// ExportReport is designed to be serializable to JSON for report output and
// database storage. Types carrying decrypted secrets (DecryptedPayload,
// ClassifiedRecord, ExportRow) are excluded from every serialization path
// except the CSV sink itself.
package model
