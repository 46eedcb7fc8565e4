package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"eventstudy/internal/market"
)

// Engine computes return records for batches of events against a primary
// price series and an optional secondary (volatility) series. The series
// are read-only for the duration of a run, so per-event computation is
// safe to parallelize.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine validates the configuration and builds an engine.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run computes one ReturnRecord per event, in input order. An event whose
// anchor or horizons cannot be resolved still produces a record with
// absent values; it contributes no data rather than being dropped. The
// only returned errors are an empty series and context cancellation.
func (e *Engine) Run(ctx context.Context, primary, secondary *market.Series, events []Event) ([]ReturnRecord, error) {
	if primary == nil || primary.Len() == 0 {
		return nil, fmt.Errorf("primary series is empty")
	}

	start := time.Now()
	e.logger.InfoContext(ctx, "starting event return computation",
		"events", len(events),
		"bars", primary.Len(),
		"horizons", len(e.cfg.Horizons),
		"baseline_mode", e.cfg.BaselineMode.String(),
		"abnormal", e.cfg.Abnormal,
	)

	records := make([]ReturnRecord, len(events))

	if e.cfg.Parallelism > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Parallelism)
		for i, ev := range events {
			i, ev := i, ev
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				records[i] = e.compute(primary, secondary, ev)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("event computation cancelled: %w", err)
		}
	} else {
		for i, ev := range events {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("event computation cancelled: %w", err)
			}
			records[i] = e.compute(primary, secondary, ev)
			if (i+1)%50 == 0 {
				e.logger.InfoContext(ctx, "event computation progress",
					"processed", i+1,
					"total", len(events),
				)
			}
		}
	}

	anchored := 0
	for _, r := range records {
		if r.Anchored {
			anchored++
		}
	}
	e.logger.InfoContext(ctx, "event return computation completed",
		"events", len(events),
		"anchored", anchored,
		"duration", time.Since(start),
	)
	return records, nil
}

// compute resolves a single event end to end. All failure modes surface
// as absent values on the record.
func (e *Engine) compute(primary, secondary *market.Series, ev Event) ReturnRecord {
	rec := ReturnRecord{
		Event:         ev,
		Horizons:      make(map[string]Value, len(e.cfg.Horizons)),
		DailyAbnormal: map[int]Value{},
	}
	for _, h := range e.cfg.Horizons {
		rec.Horizons[h.Name()] = Absent()
	}

	anchor, ok := primary.Nearest(ev.Time)
	if !ok {
		e.logger.Warn("event has no anchor bar", "event_id", ev.ID, "time", ev.Time)
		return rec
	}
	rec.Anchor = anchor.Time
	rec.AnchorPrice = anchor.Close
	rec.Anchored = true

	rec.Baseline = baselineReturn(e.cfg, primary, anchor.Time)

	needDaily := false
	for _, h := range e.cfg.Horizons {
		if h.Unit == UnitDay {
			needDaily = true
			break
		}
	}

	var closes map[int]Value
	if needDaily || e.cfg.MaxCARDay > 0 {
		maxDay := e.cfg.MaxCARDay
		for _, h := range e.cfg.Horizons {
			if h.Unit == UnitDay && h.Offset > maxDay {
				maxDay = h.Offset
			}
		}
		closes = dailyCloses(primary, anchor.Time, maxDay)
		rec.DailyAbnormal = dailyAbnormal(primary, anchor.Time, closes, e.cfg.MaxCARDay, rec.Baseline)
	}

	for _, h := range e.cfg.Horizons {
		switch h.Unit {
		case UnitMinute:
			rec.Horizons[h.Name()] = intradayReturn(e.cfg, primary, anchor.Time, anchor.Close, h.Offset, rec.Baseline)
		case UnitDay:
			rec.Horizons[h.Name()] = dailyReturn(e.cfg, closes, h.Offset, rec.Baseline)
		}
	}

	rec.Secondary = secondaryImpact(secondary, anchor.Time)
	return rec
}
