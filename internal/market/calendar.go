package market

import (
	"time"
)

// IsTradingDay reports whether the date falls on a weekday. Holidays are
// deliberately not modeled; see the package documentation.
func IsTradingDay(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextTradingDay advances one calendar day at a time from date until it
// lands on a weekday. A date that is already a weekday still advances to
// the following trading day.
func NextTradingDay(date time.Time) time.Time {
	d := date.AddDate(0, 0, 1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PriorTradingDay retreats one calendar day at a time from date until it
// lands on a weekday.
func PriorTradingDay(date time.Time) time.Time {
	d := date.AddDate(0, 0, -1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// AddTradingDays moves n trading days forward (n > 0) or backward (n < 0)
// from date. n == 0 returns the date unchanged, even on a weekend.
func AddTradingDays(date time.Time, n int) time.Time {
	d := date
	for n > 0 {
		d = NextTradingDay(d)
		n--
	}
	for n < 0 {
		d = PriorTradingDay(d)
		n++
	}
	return d
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Midnight truncates t to the start of its calendar date.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
