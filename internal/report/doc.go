// Package report renders processed batches.
//
// The CSV functions produce the delimited result file that every batch is
// written to, and can read it back. The Writer implementations render a
// model.Response for people and tools:
//   - SimpleWriter: plain-text table for terminal display
//   - MarkdownWriter: Markdown summary with a cloud attribution pie chart
//   - JSONWriter: the Response as JSON, as served by the HTTP API
package report
