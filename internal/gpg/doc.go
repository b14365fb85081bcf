// Package gpg decrypts pass store entries by driving the GnuPG binary.
//
// The package exposes a small Decryptor interface so the pipeline never
// touches subprocess details, plus the GPGDecryptor implementation that
// shells out to gpg with loopback pinentry when a passphrase is supplied.
// The Agent type warms the running gpg-agent by presetting the passphrase
// for a keygrip, which turns a store-wide migration into one prompt at
// most instead of one per entry.
//
// Design decision: We drive the gpg binary instead of linking an OpenPGP
// library because the store was written by gpg and only gpg is guaranteed
// to read all of it: agent-cached keys, smartcard-backed keys, and
// whatever cipher preferences the user configured. It also keeps secret
// key material out of this process entirely.
//
// Decrypted payloads returned by this package must never be logged or
// persisted. Errors and log output carry entry names and gpg stderr text
// only, never plaintext.
package gpg
