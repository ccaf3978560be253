// Package service turns a newline-separated list of addresses into a
// processed batch: it runs the reconnaissance pipeline, writes the CSV
// results and optionally archives the run. The CLI and the HTTP API share it.
package service
