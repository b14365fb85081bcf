package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/passmigrate/internal/model"
)

// defaultSuffix is the encryption suffix of pass entry files.
const defaultSuffix = ".gpg"

// Walker enumerates encrypted entries under a store root.
// Traversal is lexical and depth-first, which makes the entry order, and
// therefore the output row order, reproducible across runs. A Walker holds
// no state between calls; Count and Walk each start from scratch.
type Walker struct {
	// root is the store directory being enumerated.
	root string

	// suffix is the encryption file suffix identifying entries.
	suffix string
}

// Option configures a Walker.
type Option func(*Walker)

// WithSuffix sets the encryption file suffix identifying entries.
// The default is ".gpg".
func WithSuffix(suffix string) Option {
	return func(w *Walker) {
		w.suffix = suffix
	}
}

// NewWalker creates a Walker over the given store root.
func NewWalker(root string, opts ...Option) *Walker {
	w := &Walker{
		root:   root,
		suffix: defaultSuffix,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WalkFunc is called once per encrypted entry in traversal order.
//
// When err is nil, entry identifies a readable candidate. When err is
// non-nil, the entry could not be enumerated (typically a permission
// failure); entry still carries its name and path so the caller can record
// a per-entry failure. Returning a non-nil error stops the walk and is
// propagated by Walk.
type WalkFunc func(entry model.EncryptedEntry, err error) error

// Count returns the number of encrypted entries under the root.
// Files that exist but cannot be enumerated still count; they will surface
// as per-entry failures during processing. Directory errors are fatal.
func (w *Walker) Count(ctx context.Context) (int, error) {
	count := 0
	err := w.Walk(ctx, func(_ model.EncryptedEntry, _ error) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Walk enumerates entries under the root in lexical order, calling fn for
// each one. Dot-directories (.git, .extensions) and dot-files (.gpg-id) are
// skipped: they belong to the store format, not to its content.
//
// An unreadable directory aborts the walk with a fatal error. An unreadable
// file is passed to fn with a non-nil error and the walk continues. The
// context is checked between entries, so cancellation takes effect at entry
// granularity.
func (w *Walker) Walk(ctx context.Context, fn WalkFunc) error {
	if err := w.validateRoot(); err != nil {
		return err
	}

	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			return w.handleWalkError(path, d, walkErr, fn)
		}

		if d.IsDir() {
			if path != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		name, ok := w.entryName(path, d.Name())
		if !ok {
			return nil
		}

		entry, err := model.NewEncryptedEntry(name, path)
		if err != nil {
			return fmt.Errorf("entry %s: %w", path, err)
		}
		return fn(entry, nil)
	})
}

// handleWalkError classifies a traversal error: directory errors are fatal,
// file errors are reported to fn as per-entry failures.
func (w *Walker) handleWalkError(path string, d fs.DirEntry, walkErr error, fn WalkFunc) error {
	if d == nil || d.IsDir() {
		return fmt.Errorf("enumerate %s: %w", path, walkErr)
	}

	name, ok := w.entryName(path, d.Name())
	if !ok {
		return nil
	}

	entry, err := model.NewEncryptedEntry(name, path)
	if err != nil {
		return fmt.Errorf("entry %s: %w", path, err)
	}
	return fn(entry, walkErr)
}

// entryName derives the logical entry name from a file path, or reports
// that the file is not an entry.
func (w *Walker) entryName(path, base string) (string, bool) {
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	if !strings.HasSuffix(base, w.suffix) || base == w.suffix {
		return "", false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}

	return filepath.ToSlash(strings.TrimSuffix(rel, w.suffix)), true
}

// validateRoot checks that the store root exists and is a directory.
func (w *Walker) validateRoot() error {
	info, err := os.Stat(w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrStoreNotFound, w.root)
		}
		return fmt.Errorf("stat %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, w.root)
	}
	return nil
}
