package model

import (
	"time"

	"github.com/google/uuid"
)

// ExportReport is the main result structure of a migration run.
// It is created before the pipeline starts and threaded through every step;
// steps record their findings on it rather than keeping private state.
//
// Design decision: We use a single struct rather than per-step results to
// simplify serialization and run-history storage. Rows and Error are excluded
// from JSON: Rows because serialized reports must never carry decrypted field
// data, Error because error values do not round-trip through JSON.
type ExportReport struct {
	// === Run Identity ===

	// RunID uniquely identifies this migration run.
	RunID string `json:"run_id"`

	// StoreRoot is the password store directory that was walked.
	StoreRoot string `json:"store_root"`

	// OutputPath is the destination CSV file.
	OutputPath string `json:"output_path"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration_ns"`

	// === Entry Accounting ===

	// TotalEntries is the number of encrypted entries found by enumeration.
	TotalEntries int `json:"total_entries"`

	// SucceededCount is the number of entries decrypted and classified.
	SucceededCount int `json:"succeeded"`

	// FailedCount is the number of entries that could not be processed.
	FailedCount int `json:"failed"`

	// Failures lists every failed entry with the reason it failed, in
	// processing order. The operator retries or migrates these by hand.
	Failures []EntryFailure `json:"failures,omitempty"`

	// === Output ===

	// Rows holds the serialized rows awaiting the final sink write.
	Rows []ExportRow `json:"-"` // Excluded from JSON (decrypted field data)

	// RowsWritten is the number of data rows the sink actually wrote.
	// Stays zero for dry runs.
	RowsWritten int `json:"rows_written"`

	// Checksum is the SHA3-256 checksum of the written CSV file, hex encoded.
	// Two runs over an unchanged store produce the same checksum.
	Checksum string `json:"checksum,omitempty"`

	// DryRun is true when classification ran but no CSV was written.
	DryRun bool `json:"dry_run"`

	// === Run State ===

	// PerformedStages lists the pipeline stages that actually ran.
	PerformedStages []string `json:"performed_stages,omitempty"`

	// Error contains the fatal error that stopped the run, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// EntryFailure records one entry that could not be migrated.
// Only the logical name and a short reason are kept; nothing derived from
// decrypted content belongs here.
type EntryFailure struct {
	// Name is the logical entry name.
	Name string `json:"name"`

	// Reason is a short human-readable cause ("decryption failed: ...").
	Reason string `json:"reason"`
}

// NewExportReport creates a report for a run over the given store root
// writing to the given output path.
func NewExportReport(storeRoot, outputPath string) *ExportReport {
	return &ExportReport{
		RunID:      uuid.NewString(),
		StoreRoot:  storeRoot,
		OutputPath: outputPath,
		StartedAt:  time.Now(),
	}
}

// AddRow appends a serialized row and counts the entry as succeeded.
func (r *ExportReport) AddRow(row ExportRow) {
	r.Rows = append(r.Rows, row)
	r.SucceededCount++
}

// AddFailure records a failed entry and counts it.
func (r *ExportReport) AddFailure(name, reason string) {
	r.Failures = append(r.Failures, EntryFailure{Name: name, Reason: reason})
	r.FailedCount++
}

// AddStage records that a pipeline stage ran.
func (r *ExportReport) AddStage(name string) {
	r.PerformedStages = append(r.PerformedStages, name)
}

// Finish stamps the run duration and records the fatal error, if any.
func (r *ExportReport) Finish(err error) {
	r.Duration = time.Since(r.StartedAt)
	if err != nil {
		r.Error = err
		r.ErrorMessage = err.Error()
	}
}

// HasFailures reports whether any entry failed.
func (r *ExportReport) HasFailures() bool {
	return len(r.Failures) > 0
}

// Completed reports whether the run reached the end without a fatal error.
// Per-entry failures do not affect this; they only degrade the summary.
func (r *ExportReport) Completed() bool {
	return r.Error == nil
}
