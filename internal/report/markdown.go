package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/passmigrate/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(report *model.ExportReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFailures(md, report)
	w.writeStages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ExportReport) {
	md.H1("Password Store Migration Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Store", "`" + report.StoreRoot + "`"},
			{"Output", "`" + report.OutputPath + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ExportReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.DryRun {
		return "📝 Dry Run (no CSV written)"
	}
	return "✅ Complete"
}

// writeSummary writes the entry accounting section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ExportReport) {
	md.H2("Entry Summary")
	md.PlainText("")

	rows := [][]string{
		{"Total entries", strconv.Itoa(report.TotalEntries)},
		{"Succeeded", strconv.Itoa(report.SucceededCount)},
		{"Failed", strconv.Itoa(report.FailedCount)},
		{"Rows written", strconv.Itoa(report.RowsWritten)},
	}
	if report.Checksum != "" {
		rows = append(rows, []string{"Checksum (SHA3-256)", "`" + report.Checksum + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.TotalEntries > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the migration outcome.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ExportReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Migration Outcome"),
		piechart.WithShowData(true),
	)

	if report.SucceededCount > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(report.SucceededCount))
	}
	if report.FailedCount > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.FailedCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ExportReport) {
	switch {
	case report.ErrorMessage != "":
		md.Cautionf(
			"The run stopped before completion: %s. The previous export, if any, was left untouched.",
			report.ErrorMessage,
		)
	case report.HasFailures():
		md.Warningf(
			"%d entr(y/ies) could not be decrypted and are missing from the CSV. Migrate them by hand or re-run after fixing the cause.",
			report.FailedCount,
		)
	case report.DryRun:
		md.Note("Dry run: entries were classified but no CSV was written.")
	default:
		md.Tip("All entries migrated. Import the CSV, then delete it: the file holds every password in plaintext.")
	}
	md.PlainText("")
}

// writeFailures writes the failed entries table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.ExportReport) {
	md.H2("Failed Entries")
	md.PlainText("")

	if !report.HasFailures() {
		md.PlainText("No failed entries.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Failures))
	for i, failure := range report.Failures {
		rows[i] = []string{
			"`" + failure.Name + "`",
			truncateString(failure.Reason, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Entry", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeStages lists the pipeline stages that ran, in order.
func (w *MarkdownWriter) writeStages(md *markdown.Markdown, report *model.ExportReport) {
	if len(report.PerformedStages) == 0 {
		return
	}

	md.H2("Pipeline Stages")
	md.PlainText("")

	titleCaser := cases.Title(language.English)
	stages := make([]string, len(report.PerformedStages))
	for i, stage := range report.PerformedStages {
		stages[i] = titleCaser.String(stage)
	}

	md.BulletList(stages...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [passmigrate](https://github.com/nao1215/passmigrate)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
