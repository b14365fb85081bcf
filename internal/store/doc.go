// Package store enumerates the encrypted entries of a pass password store.
//
// A pass store is a directory tree with one GPG-encrypted file per entry;
// the file's path relative to the store root, minus the .gpg suffix, is the
// entry's logical name. The store also contains control files (.gpg-id) and
// dot-directories (.git, .extensions) that are not entries and are skipped.
//
// The Walker yields entries in deterministic lexical order so that two runs
// over an unchanged store visit entries identically and produce identical
// output. Enumeration failures on directories are fatal (the store cannot
// be listed completely without them); failures on individual files are
// reported per entry and skipped.
package store
