package report

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/passmigrate/internal/model"
)

// Writer defines the interface for report output.
// Implementations render a finished run summary in one format.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ExportReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes. The writers run
// concurrently: each targets an independent destination (stdout, a
// report file), and a slow file write should not delay the terminal
// summary. Every writer is attempted even when one fails; the first
// error is returned.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(report *model.ExportReport) (int, error) {
	counts := make([]int, len(m.writers))

	var g errgroup.Group
	for i, w := range m.writers {
		i, w := i, w
		g.Go(func() error {
			n, err := w.Write(report)
			counts[i] = n
			return err
		})
	}
	err := g.Wait()

	var total int
	for _, n := range counts {
		total += n
	}
	return total, err
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
