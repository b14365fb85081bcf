package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nao1215/passmigrate/internal/model"
)

// buildStore creates a store fixture and returns its root.
// Layout mirrors a realistic pass store including control files and
// dot-directories that must be skipped.
func buildStore(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	files := []string{
		"router.gpg",
		"social/example.com/alice.gpg",
		"social/example.com/bob.gpg",
		"work/vpn.gpg",
		".gpg-id",
		".git/entry-in-git.gpg",
		".extensions/helper.gpg",
		"notes.txt",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			t.Fatalf("mkdir fixture: %v", err)
		}
		if err := os.WriteFile(path, []byte("ciphertext"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	return root
}

// collectNames walks the store and returns entry names in traversal order.
func collectNames(t *testing.T, w *Walker) []string {
	t.Helper()

	var names []string
	err := w.Walk(context.Background(), func(entry model.EncryptedEntry, err error) error {
		if err != nil {
			t.Fatalf("unexpected per-entry error for %s: %v", entry.Name(), err)
		}
		names = append(names, entry.Name())
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
	return names
}

// TestWalkerWalk tests enumeration order, name mapping, and skip rules.
func TestWalkerWalk(t *testing.T) {
	t.Parallel()

	root := buildStore(t)
	walker := NewWalker(root)

	got := collectNames(t, walker)
	want := []string{
		"router",
		"social/example.com/alice",
		"social/example.com/bob",
		"work/vpn",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk order = %v, expected %v", got, want)
	}
}

// TestWalkerWalkDeterminism tests that two walks over an unchanged store
// yield identical sequences.
func TestWalkerWalkDeterminism(t *testing.T) {
	t.Parallel()

	root := buildStore(t)
	walker := NewWalker(root)

	first := collectNames(t, walker)
	second := collectNames(t, walker)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("walks differ: %v vs %v", first, second)
	}
}

// TestWalkerWalkBlobPaths tests that each entry carries its backing file.
func TestWalkerWalkBlobPaths(t *testing.T) {
	t.Parallel()

	root := buildStore(t)
	walker := NewWalker(root)

	err := walker.Walk(context.Background(), func(entry model.EncryptedEntry, err error) error {
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(entry.BlobPath()); statErr != nil {
			t.Errorf("blob path %s not readable: %v", entry.BlobPath(), statErr)
		}
		if filepath.Ext(entry.BlobPath()) != ".gpg" {
			t.Errorf("blob path %s does not end in .gpg", entry.BlobPath())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
}

// TestWalkerCount tests entry counting.
func TestWalkerCount(t *testing.T) {
	t.Parallel()

	t.Run("populated store", func(t *testing.T) {
		t.Parallel()

		walker := NewWalker(buildStore(t))
		count, err := walker.Count(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 4 {
			t.Errorf("Count() = %d, expected 4", count)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		walker := NewWalker(t.TempDir())
		count, err := walker.Count(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 0 {
			t.Errorf("Count() = %d, expected 0", count)
		}
	})
}

// TestWalkerRootErrors tests fatal root validation.
func TestWalkerRootErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		walker := NewWalker(filepath.Join(t.TempDir(), "absent"))
		err := walker.Walk(context.Background(), func(model.EncryptedEntry, error) error { return nil })
		if !errors.Is(err, ErrStoreNotFound) {
			t.Errorf("expected ErrStoreNotFound, got %v", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		walker := NewWalker(path)
		if err := walker.Walk(context.Background(), func(model.EncryptedEntry, error) error { return nil }); !errors.Is(err, ErrNotDirectory) {
			t.Errorf("expected ErrNotDirectory, got %v", err)
		}
	})
}

// TestWalkerCallbackError tests that a callback error stops the walk.
func TestWalkerCallbackError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("stop here")
	walker := NewWalker(buildStore(t))

	visited := 0
	err := walker.Walk(context.Background(), func(model.EncryptedEntry, error) error {
		visited++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
	if visited != 1 {
		t.Errorf("visited %d entries after error, expected 1", visited)
	}
}

// TestWalkerContextCancellation tests that cancellation stops the walk.
func TestWalkerContextCancellation(t *testing.T) {
	t.Parallel()

	walker := NewWalker(buildStore(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := walker.Walk(ctx, func(model.EncryptedEntry, error) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestWalkerCustomSuffix tests the suffix option.
func TestWalkerCustomSuffix(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, f := range []string{"alpha.age", "beta.gpg"} {
		if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	walker := NewWalker(root, WithSuffix(".age"))
	got := collectNames(t, walker)
	if !reflect.DeepEqual(got, []string{"alpha"}) {
		t.Errorf("names = %v, expected [alpha]", got)
	}
}

// TestWalkerBareSuffixFile tests that a file named exactly like the suffix
// is not an entry. Its name would be empty.
func TestWalkerBareSuffixFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gpg"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	walker := NewWalker(root)
	count, err := walker.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, expected 0", count)
	}
}
