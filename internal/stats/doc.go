// Package stats provides the descriptive statistics and hypothesis tests
// used to aggregate event return records: per-group means, medians,
// standard deviations, and one-sample / Welch two-sample t tests against
// the zero-mean null.
//
// Groups with fewer than the configured minimum number of observations
// (default 3) never produce computed statistics; they are reported with an
// explicit insufficient-data marker instead, because a mean or test
// statistic from n < 3 is misleading rather than merely noisy.
package stats
