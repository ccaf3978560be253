package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/iprecon/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs a batch summary in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the batch in Markdown format.
func (w *MarkdownWriter) Write(resp *model.Response) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, resp)
	w.writeCloud(md, resp)
	w.writeResults(md, resp)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and batch metrics.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, resp *model.Response) {
	md.H1("IP Reconnaissance Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Addresses", strconv.Itoa(resp.TotalIPs)},
			{"Geolocated", fmt.Sprintf("%.1f%%", resp.Metrics.SuccessRate)},
			{"Active", strconv.Itoa(activeCount(resp.Results))},
			{"Average Time per Address", fmt.Sprintf("%.2f ms", resp.Metrics.AverageResponseTime)},
		},
	})
	md.PlainText("")

	if resp.Message != "" {
		md.PlainTextf("Output: `%s`", resp.Message)
		md.PlainText("")
	}

	w.writeAlert(md, resp)
}

// writeAlert notes how many addresses could not be geolocated.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, resp *model.Response) {
	failed := 0
	for _, r := range resp.Results {
		if !r.HasLocation() {
			failed++
		}
	}

	switch {
	case len(resp.Results) == 0:
		md.Note("The batch contained no addresses.")
	case failed == len(resp.Results):
		md.Cautionf("Geolocation failed for every address (%d).", failed)
	case failed > 0:
		md.Warningf("Geolocation failed for %d of %d address(es).", failed, len(resp.Results))
	default:
		md.Tip("Every address was geolocated.")
	}
	md.PlainText("")
}

// writeCloud writes the cloud attribution section with a pie chart.
func (w *MarkdownWriter) writeCloud(md *markdown.Markdown, resp *model.Response) {
	md.H2("Cloud Attribution")
	md.PlainText("")

	if len(resp.Results) == 0 {
		md.PlainText("No addresses processed.")
		md.PlainText("")
		return
	}

	order, counts := cloudCounts(resp.Results)

	rows := make([][]string, 0, len(order))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Cloud Provider Distribution"),
		piechart.WithShowData(true),
	)
	for _, label := range order {
		rows = append(rows, []string{label, strconv.Itoa(counts[label])})
		chart.LabelAndIntValue(label, uint64(counts[label])) //nolint:gosec // counts are positive
	}

	md.Table(markdown.TableSet{
		Header: []string{"Provider", "Addresses"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeResults writes one table row per record.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, resp *model.Response) {
	md.H2("Results")
	md.PlainText("")

	if len(resp.Results) == 0 {
		md.PlainText("No results.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(resp.Results))
	for i, r := range resp.Results {
		active := "no"
		if r.Active {
			active = "yes"
		}
		ports := r.JoinPorts()
		if ports == "" {
			ports = "-"
		}
		rows[i] = []string{
			"`" + r.IP + "`",
			truncateString(r.LocationOrUnknown(), 40),
			active,
			ports,
			r.CloudProviderOrNone(),
		}
	}

	md.Table(markdown.TableSet{
		Header: CSVHeader,
		Rows:   rows,
	})
	md.PlainText("")

	var diagnostics []string
	for _, r := range resp.Results {
		for _, e := range r.Errors {
			diagnostics = append(diagnostics, r.IP+": "+e)
		}
	}
	if len(diagnostics) > 0 {
		md.Details("Diagnostics", fmt.Sprintf("%d step error(s)", len(diagnostics)))
		md.BulletList(diagnostics...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [iprecon](https://github.com/nao1215/iprecon)*")
}
