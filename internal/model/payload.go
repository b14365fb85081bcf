package model

// DecryptedPayload is the plaintext of one decrypted entry as an ordered
// sequence of non-empty lines. The decryptor normalizes line endings, trims
// trailing whitespace per line, and drops blank lines before building it.
//
// A payload is owned exclusively by the pipeline invocation that requested
// it and is discarded immediately after classification. It must never be
// logged, persisted, or serialized; the only data derived from it that may
// leave the process is the classified field set written to the CSV sink.
type DecryptedPayload []string

// Empty reports whether the payload contains no lines.
func (p DecryptedPayload) Empty() bool { return len(p) == 0 }
