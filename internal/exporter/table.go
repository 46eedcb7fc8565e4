package exporter

import (
	"strconv"

	"eventstudy/internal/stats"
	"eventstudy/internal/study"
)

const timestampLayout = "2006-01-02 15:04:05"

// formatValue renders an engine Value as a percentage cell. Absent values
// render empty so they stay distinguishable from true zeros downstream.
func formatValue(v study.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64*100, 'f', 4, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// contentPreview truncates post content for traceability columns.
func contentPreview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}

// RecordTable shapes return records into a row-per-event, column-per-
// horizon table suitable for CSV or worksheet export.
func RecordTable(records []study.ReturnRecord, horizons []string) ([]string, [][]string) {
	headers := []string{
		"event_id", "event_time", "category", "confidence",
		"anchor_time", "anchor_price", "baseline_pct",
	}
	for _, h := range horizons {
		headers = append(headers, h+"_pct")
	}
	headers = append(headers,
		"car_t0_t1_pct", "car_t2_t5_pct", "car_t6_t10_pct", "car_t0_t10_pct",
		"secondary_t0_pct", "secondary_t5_pct",
		"content_preview",
	)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.Event.ID,
			r.Event.Time.Format(timestampLayout),
			r.Event.Category,
			strconv.FormatFloat(r.Event.Confidence, 'f', 2, 64),
		}
		if r.Anchored {
			row = append(row,
				r.Anchor.Format(timestampLayout),
				strconv.FormatFloat(r.AnchorPrice, 'f', 4, 64),
			)
		} else {
			row = append(row, "", "")
		}
		row = append(row, formatValue(r.Baseline))

		for _, h := range horizons {
			row = append(row, formatValue(r.Horizon(h)))
		}
		row = append(row,
			formatValue(r.CAR(0, 1)),
			formatValue(r.CAR(2, 5)),
			formatValue(r.CAR(6, 10)),
			formatValue(r.CAR(0, 10)),
			formatValue(r.Secondary.EventDay),
			formatValue(r.Secondary.Day5),
			contentPreview(r.Event.Content, 100),
		)
		rows = append(rows, row)
	}
	return headers, rows
}

// SummaryTable shapes a grouped summary into one row per group×horizon.
func SummaryTable(summary stats.Summary, horizons []string) ([]string, [][]string) {
	headers := []string{
		"group", "horizon", "n",
		"mean_pct", "median_pct", "std_dev_pct",
		"pct_negative", "pct_positive",
		"t_stat", "p_two_sided", "p_one_sided_low", "note",
	}

	var rows [][]string
	for _, group := range summary.Groups() {
		gs := summary[group]
		for _, h := range horizons {
			hs, ok := gs.Horizons[h]
			if !ok {
				continue
			}
			if hs.Insufficient {
				rows = append(rows, []string{
					group, h, strconv.Itoa(hs.Usable),
					"", "", "", "", "", "", "", "",
					"insufficient data",
				})
				continue
			}
			row := []string{
				group, h, strconv.Itoa(hs.Usable),
				formatFloat(hs.Stats.Mean * 100),
				formatFloat(hs.Stats.Median * 100),
				formatFloat(hs.Stats.StdDev * 100),
				strconv.FormatFloat(hs.Stats.PctNegative, 'f', 1, 64),
				strconv.FormatFloat(hs.Stats.PctPositive, 'f', 1, 64),
			}
			if hs.Test != nil {
				row = append(row,
					formatFloat(hs.Test.T),
					formatFloat(hs.Test.PTwoSided),
					formatFloat(hs.Test.POneSidedLow),
					"",
				)
			} else {
				row = append(row, "", "", "", "zero variance")
			}
			rows = append(rows, row)
		}
	}
	return headers, rows
}

// ComparisonTable shapes pairwise group comparisons into rows.
func ComparisonTable(comparisons []stats.Comparison) ([]string, [][]string) {
	headers := []string{
		"group_a", "group_b", "horizon",
		"mean_a_pct", "mean_b_pct", "difference_pct",
		"t_stat", "p_two_sided", "p_one_sided_low", "note",
	}
	rows := make([][]string, 0, len(comparisons))
	for _, c := range comparisons {
		if c.Insufficient {
			rows = append(rows, []string{
				c.GroupA, c.GroupB, c.Horizon,
				"", "", "", "", "", "",
				"insufficient data",
			})
			continue
		}
		row := []string{
			c.GroupA, c.GroupB, c.Horizon,
			formatFloat(c.MeanA * 100),
			formatFloat(c.MeanB * 100),
			formatFloat((c.MeanA - c.MeanB) * 100),
		}
		if c.Test != nil {
			row = append(row,
				formatFloat(c.Test.T),
				formatFloat(c.Test.PTwoSided),
				formatFloat(c.Test.POneSidedLow),
				"",
			)
		} else {
			row = append(row, "", "", "", "zero variance")
		}
		rows = append(rows, row)
	}
	return headers, rows
}
