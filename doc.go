// Package logparse ingests web-server access logs, raw or gzipped, and
// accumulates conda package-download transactions into a durable dataset.
//
// Ingestion is idempotent: each log file is fingerprinted by content and
// merged at most once, so re-running over an overlapping set of files never
// duplicates data. The persisted dataset holds only successful package
// downloads, sorted by timestamp, with legacy channel names normalized.
// Downstream reporting consumes the dataset and never re-parses raw logs.
package logparse
