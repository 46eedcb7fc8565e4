// Package loader reads the flat files the analyses consume: 5-minute bar
// history from XLSX or CSV, and classified social-media events from JSON
// or CSV.
//
// Loaders are tolerant at the row level: a row that cannot be parsed is
// skipped and counted, never fatal, mirroring the batch-oriented scripts
// this replaces. Timestamp validation happens here, at the boundary, so
// the engine can assume well-formed events.
package loader
