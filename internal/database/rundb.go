package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/passmigrate/internal/model"
)

// dbFileName is the SQLite file created inside the database directory.
const dbFileName = "passmigrate.db"

// defaultListLimit caps ListRuns when the caller passes no limit.
const defaultListLimit = 20

// RunDB provides SQLite-based storage for export run history.
// One row per migration run: counts, timing, output location, and the
// sanitized summary JSON.
//
// Design decision: We keep history in a single local database file under
// the user's data directory rather than one file per run. That makes
// "what did my last export look like" a single query and keeps cleanup
// trivial.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB inside the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned; the history command uses that mode so it never creates an empty
// database just to report that there is no history.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("run history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY errors entirely for this small workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the path of the SQLite database file.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per migration run. summary_json holds the sanitized report;
	-- it never contains decrypted field data.
	CREATE TABLE IF NOT EXISTS export_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		store_root TEXT NOT NULL,
		output_path TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		total_entries INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		rows_written INTEGER NOT NULL,
		checksum TEXT,
		dry_run INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON export_runs(started_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the run-level metadata stored for one export.
// It mirrors the export_runs row and is safe to print and serialize.
type RunRecord struct {
	// ID is the row identifier in the database.
	ID int64 `json:"id"`

	// RunID uniquely identifies the migration run.
	RunID string `json:"run_id"`

	// StoreRoot is the password store directory that was walked.
	StoreRoot string `json:"store_root"`

	// OutputPath is the destination CSV file.
	OutputPath string `json:"output_path"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration_ns"`

	// TotalEntries, Succeeded, and Failed are the entry counts.
	TotalEntries int `json:"total_entries"`
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`

	// RowsWritten is the number of data rows the sink wrote.
	RowsWritten int `json:"rows_written"`

	// Checksum is the hex SHA3-256 digest of the written CSV, empty for
	// dry runs.
	Checksum string `json:"checksum,omitempty"`

	// DryRun is true when no CSV was written.
	DryRun bool `json:"dry_run"`

	// Error is the fatal error message, empty for completed runs.
	Error string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// SaveRun stores the outcome of one migration run.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.ExportReport) error {
	summaryJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize run summary: %w", err)
	}

	query := `
	INSERT INTO export_runs (
		run_id, store_root, output_path, started_at, duration_ms,
		total_entries, succeeded, failed, rows_written, checksum,
		dry_run, error, summary_json
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = rdb.db.ExecContext(ctx, query,
		report.RunID,
		report.StoreRoot,
		report.OutputPath,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.Duration.Milliseconds(),
		report.TotalEntries,
		report.SucceededCount,
		report.FailedCount,
		report.RowsWritten,
		report.Checksum,
		report.DryRun,
		report.ErrorMessage,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first.
// A non-positive limit falls back to a small default.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
	SELECT id, run_id, store_root, output_path, started_at, duration_ms,
	       total_entries, succeeded, failed, rows_written, checksum,
	       dry_run, error
	FROM export_runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetRun retrieves the stored summary of one run by its run ID.
// Returns nil without error when the run is unknown.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.ExportReport, error) {
	query := `
	SELECT summary_json FROM export_runs
	WHERE run_id = ?
	`

	var summaryJSON string
	err := rdb.db.QueryRowContext(ctx, query, runID).Scan(&summaryJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.ExportReport
	if err := json.Unmarshal([]byte(summaryJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run summary: %w", err)
	}

	return &report, nil
}

// LastRun returns the most recent run record, or nil when the history
// is empty.
func (rdb *RunDB) LastRun(ctx context.Context) (*RunRecord, error) {
	records, err := rdb.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// scanRunRecord reads one export_runs row.
func scanRunRecord(rows *sql.Rows) (RunRecord, error) {
	var (
		record     RunRecord
		startedAt  string
		durationMS int64
		checksum   sql.NullString
		errMsg     sql.NullString
	)

	err := rows.Scan(
		&record.ID,
		&record.RunID,
		&record.StoreRoot,
		&record.OutputPath,
		&startedAt,
		&durationMS,
		&record.TotalEntries,
		&record.Succeeded,
		&record.Failed,
		&record.RowsWritten,
		&checksum,
		&record.DryRun,
		&errMsg,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to scan run record: %w", err)
	}

	record.StartedAt = parseTimestamp(startedAt)
	record.Duration = time.Duration(durationMS) * time.Millisecond
	record.Checksum = checksum.String
	record.Error = errMsg.String

	return record, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
