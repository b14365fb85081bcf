package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/passmigrate/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display at the end of a
// migration run.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(report *model.ExportReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ExportReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     PASSMIGRATE EXPORT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Store:     %s\n", report.StoreRoot))
	sb.WriteString(fmt.Sprintf("Output:    %s\n", report.OutputPath))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", report.Duration.Round(time.Millisecond)))

	switch {
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:    ERROR - %s\n", report.ErrorMessage))
	case report.DryRun:
		sb.WriteString("Status:    DRY RUN (no CSV written)\n")
	default:
		sb.WriteString("Status:    Complete\n")
	}

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Run ID:    %s\n", report.RunID))
		if len(report.PerformedStages) > 0 {
			sb.WriteString(fmt.Sprintf("Stages:    %s\n", strings.Join(report.PerformedStages, ", ")))
		}
	}

	sb.WriteString("\n")
}

// writeSummary writes the entry accounting section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ExportReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ENTRY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:      %d\n", report.TotalEntries))
	sb.WriteString(fmt.Sprintf("  SUCCEEDED:  %d\n", report.SucceededCount))
	sb.WriteString(fmt.Sprintf("  FAILED:     %d\n", report.FailedCount))
	sb.WriteString(fmt.Sprintf("  WRITTEN:    %d rows\n", report.RowsWritten))
	sb.WriteString("\n")

	if report.Checksum != "" {
		sb.WriteString(fmt.Sprintf("  Checksum (SHA3-256): %s\n", report.Checksum))
		sb.WriteString("\n")
	}
}

// writeFailures lists each entry that could not be migrated.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.ExportReport) {
	if !report.HasFailures() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED ENTRIES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !report.HasFailures() {
		sb.WriteString("  No failed entries\n")
	} else {
		for _, failure := range report.Failures {
			sb.WriteString(fmt.Sprintf("  [!] %s\n", failure.Name))
			sb.WriteString(fmt.Sprintf("      Reason: %s\n", failure.Reason))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by passmigrate\n")
	sb.WriteString("https://github.com/nao1215/passmigrate\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
