// Package database archives processed batches in SQLite.
//
// Every batch run can be stored with its metrics, output path and records,
// and listed or re-exported later. The archive is a log of runs: records
// are kept per batch and are never merged or deduplicated across batches.
//
// The database is a single file opened through modernc.org/sqlite, a
// CGO-free driver, with WAL journaling enabled by default.
package database
