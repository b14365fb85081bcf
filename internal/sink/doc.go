// Package sink writes classified records to the import CSV.
//
// The sink is the only component allowed to persist secret material, and
// it does so exactly once per run: rows are streamed into a temp file in
// the target directory and the temp file is renamed over the final path
// after the last row. A crashed or failed run therefore never leaves a
// partial or half-written export behind, only the temp file cleanup.
//
// Design decision: We create the temp file in the target directory, not
// in os.TempDir, because rename is only atomic within one filesystem.
// The directory is created 0700 and the file 0600 so the exported
// plaintext is never readable by other users, even transiently.
package sink
