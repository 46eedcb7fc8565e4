package study

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a float that may be absent. Absent values propagate through all
// downstream aggregation and are never coerced to zero.
type Value struct {
	Float64 float64
	Valid   bool
}

// Present wraps a concrete float in a Value.
func Present(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// Absent returns the missing-value marker.
func Absent() Value {
	return Value{}
}

// Sub subtracts b from v. The result is absent when either side is absent.
func (v Value) Sub(b Value) Value {
	if !v.Valid || !b.Valid {
		return Absent()
	}
	return Present(v.Float64 - b.Float64)
}

// String renders the value for logs and reports; absent renders as "absent".
func (v Value) String() string {
	if !v.Valid {
		return "absent"
	}
	return fmt.Sprintf("%.6f", v.Float64)
}

// Event is a point-in-time occurrence to be studied. Events are immutable
// inputs; the engine only reads them and carries their metadata through
// into the output record.
type Event struct {
	ID         string            `json:"id"`
	Time       time.Time         `json:"time"`
	Category   string            `json:"category"`
	Content    string            `json:"content,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// HorizonUnit distinguishes intraday minute offsets from trading-day offsets.
type HorizonUnit int

const (
	// UnitMinute measures the horizon in minutes from the anchor bar.
	UnitMinute HorizonUnit = iota
	// UnitDay measures the horizon in trading days from the anchor date.
	UnitDay
)

// String returns the unit suffix used in horizon names.
func (u HorizonUnit) String() string {
	switch u {
	case UnitMinute:
		return "min"
	case UnitDay:
		return "d"
	default:
		return "unknown"
	}
}

// Horizon is a signed offset from the event anchor at which a return is
// measured.
type Horizon struct {
	Offset int
	Unit   HorizonUnit
}

// Name returns the column name for this horizon, e.g. "30min" or "5d".
func (h Horizon) Name() string {
	return fmt.Sprintf("%d%s", h.Offset, h.Unit)
}

// Minutes builds an intraday horizon menu from minute offsets.
func Minutes(offsets ...int) []Horizon {
	hs := make([]Horizon, 0, len(offsets))
	for _, o := range offsets {
		hs = append(hs, Horizon{Offset: o, Unit: UnitMinute})
	}
	return hs
}

// Days builds a daily horizon menu from trading-day offsets.
func Days(offsets ...int) []Horizon {
	hs := make([]Horizon, 0, len(offsets))
	for _, o := range offsets {
		hs = append(hs, Horizon{Offset: o, Unit: UnitDay})
	}
	return hs
}

// ParseHorizon parses a horizon name of the form produced by Name,
// e.g. "30min" or "5d".
func ParseHorizon(name string) (Horizon, error) {
	name = strings.TrimSpace(name)
	var (
		unit   HorizonUnit
		digits string
	)
	switch {
	case strings.HasSuffix(name, "min"):
		unit = UnitMinute
		digits = strings.TrimSuffix(name, "min")
	case strings.HasSuffix(name, "d"):
		unit = UnitDay
		digits = strings.TrimSuffix(name, "d")
	default:
		return Horizon{}, fmt.Errorf("horizon %q needs a min or d suffix", name)
	}
	offset, err := strconv.Atoi(digits)
	if err != nil || offset <= 0 {
		return Horizon{}, fmt.Errorf("horizon %q needs a positive offset", name)
	}
	return Horizon{Offset: offset, Unit: unit}, nil
}

// ParseHorizons parses a comma-separated horizon list, e.g. "30min,1d,5d".
func ParseHorizons(list string) ([]Horizon, error) {
	var hs []Horizon
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		h, err := ParseHorizon(name)
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	if len(hs) == 0 {
		return nil, fmt.Errorf("no horizons in %q", list)
	}
	return hs, nil
}

// BaselineMode selects how the pre-event baseline return is estimated.
type BaselineMode int

const (
	// BaselineIntraday averages bar-to-bar returns over a fixed window
	// immediately preceding the event. Used by the intraday analyses.
	BaselineIntraday BaselineMode = iota
	// BaselinePriorDay averages bar-to-bar returns over the entirety of
	// the prior trading day. Used by the multi-day analyses.
	BaselinePriorDay
)

// String returns the mode name for logs and the run-info sheet.
func (m BaselineMode) String() string {
	switch m {
	case BaselineIntraday:
		return "intraday"
	case BaselinePriorDay:
		return "prior-day"
	default:
		return "unknown"
	}
}

// Config holds the engine parameters. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	Horizons []Horizon

	BaselineMode   BaselineMode
	BaselineWindow time.Duration // intraday look-back, strictly before the event

	// Abnormal subtracts the baseline from every horizon return. When
	// false the engine reports raw returns and the baseline is carried
	// in the record for reference only.
	Abnormal bool

	// Tolerance window around an intraday horizon target. A bar within
	// [target-ToleranceBefore, target+ToleranceAfter] resolves the
	// horizon; otherwise the value is absent.
	ToleranceBefore time.Duration
	ToleranceAfter  time.Duration

	// MaxCARDay bounds the per-day abnormal return table kept on each
	// record for CAR computation (days 0..MaxCARDay).
	MaxCARDay int

	// Parallelism bounds concurrent per-event computation. Values <= 1
	// process events sequentially.
	Parallelism int
}

// DefaultConfig returns the parameters shared by the historical analyses:
// a 30-minute pre-event baseline, a -2/+3 minute intraday tolerance window
// and sequential processing.
func DefaultConfig() Config {
	return Config{
		Horizons:        Minutes(30),
		BaselineMode:    BaselineIntraday,
		BaselineWindow:  30 * time.Minute,
		Abnormal:        false,
		ToleranceBefore: 2 * time.Minute,
		ToleranceAfter:  3 * time.Minute,
		MaxCARDay:       10,
		Parallelism:     1,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if len(c.Horizons) == 0 {
		return fmt.Errorf("no horizons configured")
	}
	if c.BaselineMode == BaselineIntraday && c.BaselineWindow <= 0 {
		return fmt.Errorf("baseline window must be positive, got %s", c.BaselineWindow)
	}
	if c.ToleranceBefore < 0 || c.ToleranceAfter < 0 {
		return fmt.Errorf("tolerance window must not be negative")
	}
	if c.MaxCARDay < 0 {
		return fmt.Errorf("max CAR day must not be negative, got %d", c.MaxCARDay)
	}
	return nil
}

// SecondaryImpact carries the returns computed on the secondary
// (volatility) instrument for one event.
type SecondaryImpact struct {
	EventDay Value // prior-day close to event-day close
	Day5     Value // prior-day close to T+5 close
}

// ReturnRecord is the engine output for one event: the resolved anchor,
// the baseline, one value per configured horizon and the per-day abnormal
// return table used for CAR. Records are created once and never mutated.
type ReturnRecord struct {
	Event       Event
	Anchor      time.Time
	AnchorPrice float64
	Anchored    bool

	Baseline Value
	Horizons map[string]Value

	// DailyAbnormal maps trading-day offset (0 = event day) to that
	// day's abnormal close-to-close return.
	DailyAbnormal map[int]Value

	Secondary SecondaryImpact
}

// Horizon returns the value for a named horizon; unknown names are absent.
func (r ReturnRecord) Horizon(name string) Value {
	if r.Horizons == nil {
		return Absent()
	}
	v, ok := r.Horizons[name]
	if !ok {
		return Absent()
	}
	return v
}

// CAR returns the cumulative abnormal return over trading days a..b
// inclusive: the sum of the per-day abnormal returns, not an
// endpoint-to-endpoint return. If any member day is absent the whole
// range is absent - a partial sum would silently understate the range.
func (r ReturnRecord) CAR(a, b int) Value {
	if b < a {
		return Absent()
	}
	sum := 0.0
	for d := a; d <= b; d++ {
		v, ok := r.DailyAbnormal[d]
		if !ok || !v.Valid {
			return Absent()
		}
		sum += v.Float64
	}
	return Present(sum)
}
