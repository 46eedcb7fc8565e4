package study

import (
	"time"

	"eventstudy/internal/market"
)

// barNearTarget finds the first bar inside the tolerance window around an
// intraday horizon target. If no bar lands inside the window the horizon
// cannot be resolved: the caller reports absent rather than clipping to
// the last available bar.
func barNearTarget(cfg Config, series *market.Series, target time.Time) (market.Bar, bool) {
	lo := target.Add(-cfg.ToleranceBefore)
	hi := target.Add(cfg.ToleranceAfter)
	bar, ok := series.AtOrAfter(lo)
	if !ok || bar.Time.After(hi) {
		return market.Bar{}, false
	}
	return bar, true
}

// intradayReturn computes the cumulative return from the anchor price to
// the bar nearest (anchor + offset minutes), minus the baseline when the
// engine runs in abnormal mode.
func intradayReturn(cfg Config, series *market.Series, anchor time.Time, anchorPrice float64, offset int, baseline Value) Value {
	if anchorPrice <= 0 {
		return Absent()
	}
	target := anchor.Add(time.Duration(offset) * time.Minute)
	end, ok := barNearTarget(cfg, series, target)
	if !ok {
		return Absent()
	}
	raw := Present(end.Close/anchorPrice - 1)
	if cfg.Abnormal {
		return raw.Sub(baseline)
	}
	return raw
}

// dailyCloses resolves the closing price for the event's trading day and
// for each of the following maxDay trading days. A day with no bars
// (holiday or gap) stays absent; later days still resolve independently.
func dailyCloses(series *market.Series, anchorDate time.Time, maxDay int) map[int]Value {
	closes := make(map[int]Value, maxDay+1)
	date := market.Midnight(anchorDate)
	for d := 0; d <= maxDay; d++ {
		if c, ok := series.LastCloseOn(date); ok {
			closes[d] = Present(c)
		} else {
			closes[d] = Absent()
		}
		date = market.NextTradingDay(date)
	}
	return closes
}

// dailyAbnormal derives the per-day abnormal return table used for CAR.
// Day 0 is measured from the prior trading day's close; each later day
// from the previous day's close. The baseline is subtracted from every
// day so that CAR sums abnormal, not raw, returns.
func dailyAbnormal(series *market.Series, anchorDate time.Time, closes map[int]Value, maxDay int, baseline Value) map[int]Value {
	out := make(map[int]Value, maxDay+1)

	priorClose := Absent()
	if c, ok := series.LastCloseOn(market.PriorTradingDay(anchorDate)); ok {
		priorClose = Present(c)
	}

	prev := priorClose
	for d := 0; d <= maxDay; d++ {
		cur := closes[d]
		if !cur.Valid || !prev.Valid || prev.Float64 <= 0 || !baseline.Valid {
			out[d] = Absent()
		} else {
			out[d] = Present(cur.Float64/prev.Float64 - 1 - baseline.Float64)
		}
		if cur.Valid {
			prev = cur
		} else {
			prev = Absent()
		}
	}
	return out
}

// dailyReturn computes the cumulative return from the event day close to
// the close offset trading days later, minus the baseline in abnormal mode.
func dailyReturn(cfg Config, closes map[int]Value, offset int, baseline Value) Value {
	base, ok := closes[0]
	if !ok || !base.Valid || base.Float64 <= 0 {
		return Absent()
	}
	end, ok := closes[offset]
	if !ok || !end.Valid {
		return Absent()
	}
	raw := Present(end.Float64/base.Float64 - 1)
	if cfg.Abnormal {
		return raw.Sub(baseline)
	}
	return raw
}

// secondaryImpact computes the volatility-instrument reaction: the return
// from the prior trading day's close to the event day close, and to the
// close five trading days out. Both are raw returns; the spike itself is
// the object of interest.
func secondaryImpact(secondary *market.Series, anchorDate time.Time) SecondaryImpact {
	var impact SecondaryImpact
	if secondary == nil {
		return impact
	}

	priorClose, ok := secondary.LastCloseOn(market.PriorTradingDay(anchorDate))
	if !ok || priorClose <= 0 {
		return impact
	}

	if c, ok := secondary.LastCloseOn(market.Midnight(anchorDate)); ok {
		impact.EventDay = Present(c/priorClose - 1)
	}
	if c, ok := secondary.LastCloseOn(market.AddTradingDays(anchorDate, 5)); ok {
		impact.Day5 = Present(c/priorClose - 1)
	}
	return impact
}
