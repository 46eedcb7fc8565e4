package study

import (
	"time"

	"eventstudy/internal/market"
)

// meanBarReturn averages the bar-to-bar close returns of a window of bars.
// It needs at least two bars; a single observation yields no return.
func meanBarReturn(bars []market.Bar) Value {
	if len(bars) < 2 {
		return Absent()
	}
	sum := 0.0
	for i := 1; i < len(bars); i++ {
		sum += bars[i].Return(bars[i-1].Close)
	}
	return Present(sum / float64(len(bars)-1))
}

// baselineReturn estimates the expected per-bar return in effect just
// before the event, per the configured mode.
//
// Intraday mode uses the bars in [event-window-interval, event-interval):
// for the default 30-minute window over 5-minute bars that is the 35 to 5
// minutes preceding the event, excluding the bar the event itself falls in.
// Prior-day mode uses every bar of the previous trading day.
func baselineReturn(cfg Config, series *market.Series, eventTime time.Time) Value {
	switch cfg.BaselineMode {
	case BaselinePriorDay:
		prior := market.PriorTradingDay(eventTime)
		return meanBarReturn(series.Day(prior))
	default:
		const barInterval = 5 * time.Minute
		start := eventTime.Add(-cfg.BaselineWindow - barInterval)
		end := eventTime.Add(-barInterval)
		window := series.Between(start, end.Add(-time.Nanosecond))
		return meanBarReturn(window)
	}
}
