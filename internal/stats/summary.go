package stats

import (
	"log/slog"
	"sort"

	"eventstudy/internal/study"
)

// DefaultMinGroupSize is the smallest sample a group×horizon cell may have
// and still receive computed statistics.
const DefaultMinGroupSize = 3

// HorizonSummary is the aggregate for one group×horizon cell. When the
// cell holds fewer than the minimum number of non-absent observations,
// Insufficient is set and no statistics are computed; Usable still
// reports how many observations the cell had, so "insufficient, n=2" is
// distinguishable from "no data at all".
type HorizonSummary struct {
	Horizon      string       `json:"horizon"`
	Usable       int          `json:"usable"`
	Insufficient bool         `json:"insufficient"`
	Stats        Descriptive  `json:"stats,omitempty"`
	Test         *TTestResult `json:"test,omitempty"`
}

// GroupSummary aggregates all horizons for one group of records.
type GroupSummary struct {
	Group    string                    `json:"group"`
	N        int                       `json:"n"`
	Horizons map[string]HorizonSummary `json:"horizons"`
}

// Summary is the full aggregation output, keyed by group label.
type Summary map[string]GroupSummary

// GroupKey extracts the grouping label from a record, typically the event
// category (sentiment class) or an event-vs-control tag.
type GroupKey func(study.ReturnRecord) string

// ByCategory groups records by their event category.
func ByCategory(r study.ReturnRecord) string {
	return r.Event.Category
}

// Summarize groups records and computes per-horizon descriptive statistics
// plus a one-sample t test against zero for every cell with at least minN
// non-absent observations. Absent horizon values are excluded from the
// sample, never treated as zeros.
func Summarize(records []study.ReturnRecord, groupBy GroupKey, horizons []string, minN int, logger *slog.Logger) Summary {
	if logger == nil {
		logger = slog.Default()
	}
	if minN < DefaultMinGroupSize {
		minN = DefaultMinGroupSize
	}

	grouped := make(map[string][]study.ReturnRecord)
	for _, r := range records {
		g := groupBy(r)
		grouped[g] = append(grouped[g], r)
	}

	out := make(Summary, len(grouped))
	for group, recs := range grouped {
		gs := GroupSummary{
			Group:    group,
			N:        len(recs),
			Horizons: make(map[string]HorizonSummary, len(horizons)),
		}
		for _, h := range horizons {
			sample := CollectHorizon(recs, h)
			hs := HorizonSummary{Horizon: h, Usable: len(sample)}
			if len(sample) < minN {
				hs.Insufficient = true
			} else {
				hs.Stats = Describe(sample)
				if test, err := OneSampleT(sample, 0); err == nil {
					hs.Test = &test
				} else {
					logger.Debug("one-sample test skipped",
						"group", group, "horizon", h, "error", err)
				}
			}
			gs.Horizons[h] = hs
		}
		out[group] = gs
	}

	logger.Info("summarized return records",
		"records", len(records),
		"groups", len(out),
		"horizons", len(horizons),
	)
	return out
}

// Groups returns the group labels in sorted order, for deterministic
// report output.
func (s Summary) Groups() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Comparison is the result of an independent two-sample test between the
// same horizon of two groups.
type Comparison struct {
	GroupA       string       `json:"group_a"`
	GroupB       string       `json:"group_b"`
	Horizon      string       `json:"horizon"`
	MeanA        float64      `json:"mean_a"`
	MeanB        float64      `json:"mean_b"`
	Insufficient bool         `json:"insufficient"`
	Test         *TTestResult `json:"test,omitempty"`
}

// Compare runs Welch's two-sample test between two groups of records for
// each named horizon. Cells where either side has fewer than minN
// observations are marked insufficient.
func Compare(a, b []study.ReturnRecord, labelA, labelB string, horizons []string, minN int) []Comparison {
	if minN < DefaultMinGroupSize {
		minN = DefaultMinGroupSize
	}
	out := make([]Comparison, 0, len(horizons))
	for _, h := range horizons {
		xa := CollectHorizon(a, h)
		xb := CollectHorizon(b, h)
		cmp := Comparison{GroupA: labelA, GroupB: labelB, Horizon: h}
		if len(xa) < minN || len(xb) < minN {
			cmp.Insufficient = true
			out = append(out, cmp)
			continue
		}
		cmp.MeanA = Describe(xa).Mean
		cmp.MeanB = Describe(xb).Mean
		if test, err := TwoSampleT(xa, xb); err == nil {
			cmp.Test = &test
		} else {
			cmp.Insufficient = true
		}
		out = append(out, cmp)
	}
	return out
}

// CollectHorizon extracts the non-absent values of one horizon across a
// set of records.
func CollectHorizon(records []study.ReturnRecord, horizon string) []float64 {
	var xs []float64
	for _, r := range records {
		if v := r.Horizon(horizon); v.Valid {
			xs = append(xs, v.Float64)
		}
	}
	return xs
}
