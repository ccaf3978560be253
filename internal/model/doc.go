// Package model defines the core data structures used throughout iprecon.
//
// This package contains the following main types:
//   - Address: A raw input string paired with its parsed IP, if any
//   - Record: The immutable reconnaissance result for one address
//   - BatchMetrics: Aggregate success/failure/timing figures for a batch
//   - Response: The structured report returned to request/response callers
//
// The models are kept in their own package so the pipeline, report, database
// and server packages can share them without import cycles. All types are
// serializable to JSON for report output and database storage.
package model
