package study

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"eventstudy/internal/market"
)

// ControlConfig parameterizes control-group sampling. Determinism is a
// hard requirement: identical inputs and seed must reproduce the exact
// sample, because the statistical claims built on the control set need to
// be re-derivable.
type ControlConfig struct {
	N              int
	Seed           int64
	ExclusionDays  int  // reject candidates within this many days of a real event
	MatchDayOfWeek bool // additionally resample day-of-week from the events
	MaxAttempts    int
}

// DefaultControlConfig mirrors the historical analyses: seed 42, a three
// day exclusion window and a 10000-attempt budget.
func DefaultControlConfig(n int) ControlConfig {
	return ControlConfig{
		N:             n,
		Seed:          42,
		ExclusionDays: 3,
		MaxAttempts:   10000,
	}
}

// SampleControls draws up to cfg.N synthetic non-event timestamps over the
// date span of the reference events. Dates are uniform over the span,
// hours resampled with replacement from the events' empirical hour
// distribution, minutes uniform. Weekends are rejected, as is anything
// within the exclusion window of a real event. When the attempt budget
// runs out a short result is returned; callers must tolerate fewer than N.
func SampleControls(cfg ControlConfig, events []Event, logger *slog.Logger) []time.Time {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.N <= 0 || len(events) == 0 {
		return nil
	}

	minTime := events[0].Time
	maxTime := events[0].Time
	hours := make([]int, 0, len(events))
	dows := make([]time.Weekday, 0, len(events))
	for _, ev := range events {
		if ev.Time.Before(minTime) {
			minTime = ev.Time
		}
		if ev.Time.After(maxTime) {
			maxTime = ev.Time
		}
		hours = append(hours, ev.Time.Hour())
		dows = append(dows, ev.Time.Weekday())
	}

	spanDays := int(maxTime.Sub(minTime).Hours() / 24)
	if spanDays < 1 {
		spanDays = 1
	}

	exclusion := time.Duration(cfg.ExclusionDays) * 24 * time.Hour
	rng := rand.New(rand.NewSource(cfg.Seed))

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10000
	}

	seen := make(map[time.Time]struct{}, cfg.N)
	var controls []time.Time

	for attempts := 0; len(controls) < cfg.N && attempts < maxAttempts; attempts++ {
		day := minTime.AddDate(0, 0, rng.Intn(spanDays))
		hour := hours[rng.Intn(len(hours))]
		minute := rng.Intn(60)

		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())

		if !market.IsTradingDay(candidate) {
			continue
		}
		if cfg.MatchDayOfWeek && candidate.Weekday() != dows[rng.Intn(len(dows))] {
			continue
		}

		tooClose := false
		for _, ev := range events {
			delta := candidate.Sub(ev.Time)
			if delta < 0 {
				delta = -delta
			}
			if delta <= exclusion {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		controls = append(controls, candidate)
	}

	if len(controls) < cfg.N {
		logger.Warn("control sampling exhausted attempt budget",
			"requested", cfg.N,
			"generated", len(controls),
			"max_attempts", maxAttempts,
		)
	}

	sort.Slice(controls, func(i, j int) bool { return controls[i].Before(controls[j]) })
	return controls
}

// ControlEvents wraps sampled timestamps as events so they run through the
// identical pipeline as real events. Controls carry no content.
func ControlEvents(times []time.Time) []Event {
	evs := make([]Event, 0, len(times))
	for i, t := range times {
		evs = append(evs, Event{
			ID:       fmt.Sprintf("control_%d", i),
			Time:     t,
			Category: "control",
		})
	}
	return evs
}
