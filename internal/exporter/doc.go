// Package exporter writes engine output to the flat files the research
// workflow expects: row-per-event CSVs and a multi-sheet XLSX workbook
// with events, controls, summaries and run metadata.
//
// Percent scaling happens here and only here: the engine stores returns
// as unscaled fractions, and the exporter multiplies by 100 for human
// consumption. Absent values export as empty cells, never as zeros.
package exporter
