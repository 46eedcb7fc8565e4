// Package market provides the in-memory representation of intraday price
// series used by the event-study engine.
//
// A Series is an immutable, timestamp-ordered collection of fixed-interval
// OHLCV bars with O(log n) nearest-neighbor lookup. Timestamps are
// timezone-naive exchange-local times; gaps between bars correspond to
// non-trading periods and are never interpolated.
//
// The trading calendar helpers skip weekends only. Market holidays are not
// modeled: a holiday behaves like an ordinary weekday that happens to carry
// zero bars, so lookups on it come back empty and downstream horizon values
// go absent. This matches the historical analyses and must not be "fixed"
// with a holiday calendar, which would change their results.
package market
