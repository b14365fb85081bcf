package sink

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/passmigrate/internal/model"
)

// Output placement permissions. The CSV holds every password in the
// store as plaintext, so nothing may be visible to group or other.
const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// ErrNoOutputPath is returned when a sink is created without a
// destination path.
var ErrNoOutputPath = errors.New("output path must not be empty")

// Result describes a completed sink write. It carries metadata only and
// is safe to log and persist.
type Result struct {
	// Path is the final location of the CSV.
	Path string

	// Rows is the number of data rows written, excluding the header.
	Rows int

	// Bytes is the total size of the written file.
	Bytes int64

	// Checksum is the hex SHA3-256 digest of the file content. The
	// history database stores it so a later run can tell whether the
	// export on disk is still the one it produced.
	Checksum string
}

// CSVSink writes export rows to a single CSV file in the import format:
// a fixed header followed by one row per store entry. An existing file
// at the destination is replaced.
type CSVSink struct {
	// path is the final destination of the CSV.
	path string
}

// NewCSVSink creates a sink writing to the given path.
func NewCSVSink(path string) (*CSVSink, error) {
	if path == "" {
		return nil, ErrNoOutputPath
	}
	return &CSVSink{path: path}, nil
}

// Path returns the destination path.
func (s *CSVSink) Path() string {
	return s.path
}

// Write persists all rows in one shot. The header is always written,
// so an empty store still produces a valid, importable CSV. On error
// the destination is left untouched and the temp file is removed.
func (s *CSVSink) Write(rows []model.ExportRow) (*Result, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmp.Name())
	}()

	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("restrict temp file permissions: %w", err)
	}

	counter := &countingWriter{}
	hasher := sha3.New256()
	writer := csv.NewWriter(io.MultiWriter(tmp, hasher, counter))

	if err := writer.Write(model.CSVHeader()); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			_ = tmp.Close()
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return nil, fmt.Errorf("rename temp file to %s: %w", s.path, err)
	}

	return &Result{
		Path:     s.path,
		Rows:     len(rows),
		Bytes:    counter.n,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// countingWriter counts bytes passing through the CSV writer so the
// result can report the file size without a second stat call.
type countingWriter struct {
	n int64
}

// Write implements io.Writer.
func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
