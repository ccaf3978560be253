// Package pipeline turns one address into one reconnaissance record and
// fans a batch of addresses out over concurrent pipelines.
//
// A Pipeline is made of lanes. Steps inside a lane run in order and can
// depend on each other (the port scan only runs when the liveness step
// marked the host active); separate lanes run concurrently. Every step
// writes into a shared Draft, which is frozen into an immutable
// model.Record once all lanes are done.
//
// A failing step never aborts the pipeline. Its error is logged and kept
// in the record's diagnostics, and the remaining steps and lanes still run.
//
// BatchProcessor runs one pipeline per address using errgroup, optionally
// capping how many run at once, and returns the records in input order.
package pipeline
