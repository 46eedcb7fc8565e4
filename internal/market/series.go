package market

import (
	"fmt"
	"sort"
	"time"
)

// Series is an ordered sequence of bars for one instrument. It is immutable
// once constructed; all lookups use binary search over the sorted timestamps.
type Series struct {
	symbol string
	bars   []Bar
}

// NewSeries builds a Series from raw bars. Bars are sorted by timestamp and
// de-duplicated (first occurrence of a timestamp wins), so the resulting
// series has strictly increasing timestamps.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars provided for %s", symbol)
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	deduped := sorted[:1]
	for _, b := range sorted[1:] {
		if b.Time.Equal(deduped[len(deduped)-1].Time) {
			continue
		}
		deduped = append(deduped, b)
	}

	return &Series{symbol: symbol, bars: deduped}, nil
}

// Symbol returns the instrument symbol this series belongs to.
func (s *Series) Symbol() string {
	return s.symbol
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// First returns the earliest bar.
func (s *Series) First() Bar {
	return s.bars[0]
}

// Last returns the latest bar.
func (s *Series) Last() Bar {
	return s.bars[len(s.bars)-1]
}

// Bars returns the underlying bars. Callers must not mutate the slice.
func (s *Series) Bars() []Bar {
	return s.bars
}

// searchAtOrAfter returns the index of the first bar at or after t,
// or len(bars) if no such bar exists.
func (s *Series) searchAtOrAfter(t time.Time) int {
	return sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Time.Before(t)
	})
}

// AtOrAfter returns the first bar whose timestamp is >= t.
func (s *Series) AtOrAfter(t time.Time) (Bar, bool) {
	i := s.searchAtOrAfter(t)
	if i >= len(s.bars) {
		return Bar{}, false
	}
	return s.bars[i], true
}

// AtOrBefore returns the last bar whose timestamp is <= t.
func (s *Series) AtOrBefore(t time.Time) (Bar, bool) {
	i := s.searchAtOrAfter(t)
	if i < len(s.bars) && s.bars[i].Time.Equal(t) {
		return s.bars[i], true
	}
	if i == 0 {
		return Bar{}, false
	}
	return s.bars[i-1], true
}

// Nearest returns the bar with the smallest absolute time distance to t.
// Ties between an earlier and a later bar break toward the earlier one.
func (s *Series) Nearest(t time.Time) (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	i := s.searchAtOrAfter(t)
	if i == 0 {
		return s.bars[0], true
	}
	if i == len(s.bars) {
		return s.bars[len(s.bars)-1], true
	}
	before := s.bars[i-1]
	after := s.bars[i]
	if t.Sub(before.Time) <= after.Time.Sub(t) {
		return before, true
	}
	return after, true
}

// Between returns all bars with from <= timestamp <= to.
func (s *Series) Between(from, to time.Time) []Bar {
	if to.Before(from) {
		return nil
	}
	lo := s.searchAtOrAfter(from)
	hi := s.searchAtOrAfter(to.Add(time.Nanosecond))
	return s.bars[lo:hi]
}

// Day returns all bars that fall on the given calendar date.
func (s *Series) Day(date time.Time) []Bar {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return s.Between(start, start.Add(24*time.Hour-time.Nanosecond))
}

// LastCloseOn returns the closing price of the last bar on the given date.
// The second return value is false when the date carries no bars (weekend,
// holiday or data gap).
func (s *Series) LastCloseOn(date time.Time) (float64, bool) {
	day := s.Day(date)
	if len(day) == 0 {
		return 0, false
	}
	return day[len(day)-1].Close, true
}

// Daily resamples the intraday series into one bar per calendar date:
// first open, max high, min low, last close, summed volume. The daily bar
// timestamp is midnight of the date.
func (s *Series) Daily() []Bar {
	var out []Bar
	for i := 0; i < len(s.bars); {
		y, m, d := s.bars[i].Time.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, s.bars[i].Time.Location())

		agg := Bar{
			Time: dayStart,
			Open: s.bars[i].Open,
			High: s.bars[i].High,
			Low:  s.bars[i].Low,
		}
		for ; i < len(s.bars); i++ {
			b := s.bars[i]
			by, bm, bd := b.Time.Date()
			if by != y || bm != m || bd != d {
				break
			}
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Close = b.Close
			agg.Volume += b.Volume
		}
		out = append(out, agg)
	}
	return out
}
