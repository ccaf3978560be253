package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/iprecon/internal/model"
)

// SimpleWriter outputs a plain-text table for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose also prints the step diagnostics of each record.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-record diagnostics.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the batch in human-readable format.
func (w *SimpleWriter) Write(resp *model.Response) (int, error) {
	var sb strings.Builder

	w.writeResults(&sb, resp)
	w.writeSummary(&sb, resp)

	return w.output.Write([]byte(sb.String()))
}

// writeResults writes the aligned result table.
func (w *SimpleWriter) writeResults(sb *strings.Builder, resp *model.Response) {
	widths := []int{len(CSVHeader[0]), len(CSVHeader[1]), len(CSVHeader[2]), len(CSVHeader[3])}
	rows := make([][]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ports := r.JoinPorts()
		if ports == "" {
			ports = "-"
		}
		row := []string{r.IP, truncateString(r.LocationOrUnknown(), 40), fmt.Sprint(r.Active), ports, r.CloudProviderOrNone()}
		for i := range widths {
			widths[i] = max(widths[i], len(row[i]))
		}
		rows = append(rows, row)
	}

	line := func(cols []string) {
		for i, c := range cols {
			if i < len(widths) {
				fmt.Fprintf(sb, "%-*s  ", widths[i], c)
				continue
			}
			sb.WriteString(c)
		}
		sb.WriteString("\n")
	}

	line(CSVHeader)
	total := 2 * len(widths)
	for _, wd := range widths {
		total += wd
	}
	sb.WriteString(strings.Repeat("-", total+len(CSVHeader[4])))
	sb.WriteString("\n")

	for i, row := range rows {
		line(row)
		if w.verbose {
			for _, e := range resp.Results[i].Errors {
				fmt.Fprintf(sb, "    ! %s\n", e)
			}
		}
	}
	sb.WriteString("\n")
}

// writeSummary writes the batch metrics and output message.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, resp *model.Response) {
	fmt.Fprintf(sb, "Addresses:     %d\n", resp.TotalIPs)
	fmt.Fprintf(sb, "Geolocated:    %.1f%%\n", resp.Metrics.SuccessRate)
	fmt.Fprintf(sb, "Active:        %d\n", activeCount(resp.Results))
	fmt.Fprintf(sb, "Avg per IP:    %.2f ms\n", resp.Metrics.AverageResponseTime)
	if resp.Message != "" {
		fmt.Fprintf(sb, "\n%s\n", resp.Message)
	}
}
