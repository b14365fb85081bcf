// Package database stores the history of export runs in SQLite.
//
// Each completed migration writes one row of run-level metadata: counts,
// timing, the output path, and the sanitized summary JSON. Decrypted
// content and classified fields are never stored here; the summary JSON
// is produced from the report type whose secret-bearing fields are
// excluded from serialization.
//
// Design decision: We use modernc.org/sqlite, a pure Go SQLite driver,
// rather than CGO-based alternatives. This keeps the build simple
// (no C toolchain required) and produces a single static binary.
package database
