// Package tasks runs ledger-wide jobs with real-time progress reporting.
//
// # Statements
//
// [StatementEngine.BulkExport] writes one statement file per person:
//
//   - a worker pool renders each person through the formatter
//   - files are named by position and a slug of the name, e.g. 01_alice.md
//   - a manifest (export_manifest.json) lists every file and failure
//
// A failure to write one statement is recorded in the result and does not stop the others.
//
// # Progress Reporting
//
// Operations accept an optional progress channel. [ProgressUpdate] carries the phase, step
// counters and a message. Updates use select with default so a slow reader never blocks a job.
package tasks
