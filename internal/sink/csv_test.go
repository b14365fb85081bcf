package sink

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/passmigrate/internal/model"
)

// testRows builds a realistic row set, including a note that needs CSV
// quoting to survive the round trip.
func testRows() []model.ExportRow {
	return []model.ExportRow{
		model.NewExportRow("web/github", model.ClassifiedRecord{
			Password: "hunter2",
			Username: "alice",
			Email:    "alice@example.com",
			Note:     "recovery codes printed\nstored in the safe",
		}, "Personal"),
		model.NewExportRow("router", model.ClassifiedRecord{
			Password: `pa"ss,word`,
		}, "Personal"),
	}
}

// readCSV parses the written file back into records.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open CSV: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	return records
}

// TestCSVSinkWrite tests the happy path end to end.
func TestCSVSinkWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export", "protonpass.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := testRows()
	result, err := sink.Write(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("record count = %d, expected header + 2 rows", len(records))
	}
	if !reflect.DeepEqual(records[0], model.CSVHeader()) {
		t.Errorf("header = %v, expected %v", records[0], model.CSVHeader())
	}
	if !reflect.DeepEqual(records[1], rows[0].Columns()) {
		t.Errorf("row 1 = %v, expected %v", records[1], rows[0].Columns())
	}
	if !reflect.DeepEqual(records[2], rows[1].Columns()) {
		t.Errorf("row 2 = %v, expected %v", records[2], rows[1].Columns())
	}

	if result.Rows != 2 {
		t.Errorf("result.Rows = %d, expected 2", result.Rows)
	}
	if result.Path != path {
		t.Errorf("result.Path = %s, expected %s", result.Path, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat CSV: %v", err)
	}
	if result.Bytes != info.Size() {
		t.Errorf("result.Bytes = %d, file size = %d", result.Bytes, info.Size())
	}
}

// TestCSVSinkChecksum tests that the reported checksum matches the
// digest of the bytes on disk.
func TestCSVSinkChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "protonpass.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := sink.Write(testRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	sum := sha3.Sum256(data)
	if want := hex.EncodeToString(sum[:]); result.Checksum != want {
		t.Errorf("checksum = %s, expected %s", result.Checksum, want)
	}
}

// TestCSVSinkEmptyStore tests that zero rows still produce a valid
// header-only CSV.
func TestCSVSinkEmptyStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "protonpass.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := sink.Write(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Rows != 0 {
		t.Errorf("result.Rows = %d, expected 0", result.Rows)
	}

	records := readCSV(t, path)
	if len(records) != 1 || !reflect.DeepEqual(records[0], model.CSVHeader()) {
		t.Errorf("expected header-only CSV, got %v", records)
	}
}

// TestCSVSinkPermissions tests the secret-safe placement: 0700 for the
// created directory, 0600 for the file.
func TestCSVSinkPermissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	base := t.TempDir()
	path := filepath.Join(base, "export", "protonpass.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sink.Write(testRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0o700 {
		t.Errorf("dir mode = %o, expected 0700", perm)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if perm := fileInfo.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, expected 0600", perm)
	}
}

// TestCSVSinkNoStrayFiles tests that no temp file survives a write.
func TestCSVSinkNoStrayFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewCSVSink(filepath.Join(dir, "protonpass.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sink.Write(testRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "protonpass.csv" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, expected only protonpass.csv", names)
	}
}

// TestCSVSinkOverwrite tests that a second run replaces the first
// export instead of appending to it.
func TestCSVSinkOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "protonpass.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := sink.Write(testRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := model.NewExportRow("only", model.ClassifiedRecord{Password: "p"}, "")
	if _, err := sink.Write([]model.ExportRow{row}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Errorf("record count = %d, expected header + 1 row", len(records))
	}
}

// TestCSVSinkErrors tests construction and write failures.
func TestCSVSinkErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if _, err := NewCSVSink(""); !errors.Is(err, ErrNoOutputPath) {
			t.Errorf("expected ErrNoOutputPath, got %v", err)
		}
	})

	t.Run("directory blocked by a file", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		blocker := filepath.Join(base, "export")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatalf("write blocker: %v", err)
		}

		sink, err := NewCSVSink(filepath.Join(blocker, "protonpass.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := sink.Write(testRows()); err == nil || !strings.Contains(err.Error(), "create output directory") {
			t.Errorf("expected directory creation failure, got %v", err)
		}
	})
}
