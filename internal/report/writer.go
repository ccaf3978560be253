package report

import (
	"io"

	"github.com/nao1215/iprecon/internal/model"
)

// Writer renders a processed batch.
type Writer interface {
	// Write outputs the batch to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(resp *model.Response) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the batch to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(resp *model.Response) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(resp)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// cloudCounts counts records per provider label, in first-seen order.
func cloudCounts(records []model.Record) ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	for _, r := range records {
		label := r.CloudProviderOrNone()
		if _, ok := counts[label]; !ok {
			order = append(order, label)
		}
		counts[label]++
	}
	return order, counts
}

// activeCount returns the number of active records.
func activeCount(records []model.Record) int {
	n := 0
	for _, r := range records {
		if r.Active {
			n++
		}
	}
	return n
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
