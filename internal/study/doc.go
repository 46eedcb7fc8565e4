// Package study implements the Event Return Engine: given a list of event
// timestamps and one or two price series, it resolves each event to a
// market anchor bar, estimates a pre-event baseline return, and computes
// raw or baseline-adjusted (abnormal) returns over a configured menu of
// intraday and trading-day horizons.
//
// The engine performs no I/O. Series are loaded fully into memory before
// Run is called, and every per-event failure is reported as absent values
// inside the record rather than as an error, so a single bad event never
// aborts a batch.
//
// # Value semantics
//
// All returns are stored as unscaled fractions (end/start - 1). Scaling by
// 100 for presentation happens in the exporter, never here. A value that
// cannot be resolved (data gap, holiday, horizon past the edge of the
// series, too-small baseline window) is represented as an absent Value,
// which is distinct from zero: coercing absent to zero would bias abnormal
// return means toward zero and understate effect sizes.
package study
