// Command reaction measures the immediate market reaction to classified
// posts at 5, 10, 15 and 30 minutes, optionally narrowed to a sentiment
// class, action types, a mentioned country and a start date, and compares
// the filtered events against a matched control group.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eventstudy/internal/config"
	"eventstudy/internal/exporter"
	"eventstudy/internal/infrastructure"
	"eventstudy/internal/loader"
	"eventstudy/internal/stats"
	"eventstudy/internal/study"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	barsPath := flag.String("bars", "SPY_5min_history.xlsx", "5-minute bar file (xlsx or csv)")
	eventsPath := flag.String("events", "tariff_classified_tweets_full_v5.json", "classified post archive (json or csv)")
	outputDir := flag.String("out", "", "output directory (defaults to config paths.output_dir)")
	category := flag.String("category", "", "restrict to one sentiment class, e.g. Aggressive")
	actions := flag.String("actions", "", "comma-separated action types, e.g. announcing,threatening")
	country := flag.String("country", "", "require this country in the mentioned-country list")
	since := flag.String("since", "", "drop events before this date (YYYY-MM-DD)")
	seed := flag.Int64("seed", 0, "control sampling seed (defaults to config study.control_seed)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	if *outputDir == "" {
		*outputDir = cfg.Paths.OutputDir
	}
	if *seed == 0 {
		*seed = cfg.Study.ControlSeed
	}

	filter := loader.EventFilter{TopicOnly: true, Country: *country}
	if *category != "" {
		filter.Categories = []string{*category}
	}
	if *actions != "" {
		filter.ActionTypes = strings.Split(*actions, ",")
	}
	if *since != "" {
		t, err := loader.ParseTimestamp(*since)
		if err != nil {
			logger.Error("invalid -since date", "value", *since, "error", err)
			os.Exit(1)
		}
		filter.NotBefore = t
	}

	if err := run(context.Background(), cfg, logger, *barsPath, *eventsPath, *outputDir, filter, *seed); err != nil {
		logger.Error("reaction analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, barsPath, eventsPath, outputDir string, filter loader.EventFilter, seed int64) error {
	series, err := loader.LoadBars(barsPath, "SPY", logger)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	events, err := loader.LoadEvents(eventsPath, filter, logger)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events remain after filtering")
	}

	engineCfg := study.Config{
		Horizons:        study.Minutes(5, 10, 15, 30),
		BaselineMode:    study.BaselineIntraday,
		BaselineWindow:  cfg.Study.BaselineWindow,
		Abnormal:        false,
		ToleranceBefore: cfg.Study.ToleranceBefore,
		ToleranceAfter:  cfg.Study.ToleranceAfter,
		MaxCARDay:       0,
		Parallelism:     cfg.Study.Parallelism,
	}
	engine, err := study.NewEngine(engineCfg, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	eventRecords, err := engine.Run(ctx, series, nil, events)
	if err != nil {
		return fmt.Errorf("compute event returns: %w", err)
	}

	controlCfg := study.ControlConfig{
		N:              len(events),
		Seed:           seed,
		ExclusionDays:  cfg.Study.ExclusionDays,
		MatchDayOfWeek: true,
		MaxAttempts:    10000,
	}
	controls := study.ControlEvents(study.SampleControls(controlCfg, events, logger))
	controlRecords, err := engine.Run(ctx, series, nil, controls)
	if err != nil {
		return fmt.Errorf("compute control returns: %w", err)
	}

	horizonNames := make([]string, 0, len(engineCfg.Horizons))
	for _, h := range engineCfg.Horizons {
		horizonNames = append(horizonNames, h.Name())
	}

	all := append(append([]study.ReturnRecord{}, eventRecords...), controlRecords...)
	grouping := func(r study.ReturnRecord) string {
		if r.Event.Category == "control" {
			return "control"
		}
		return "event"
	}
	summary := stats.Summarize(all, grouping, horizonNames, cfg.Study.MinGroupSize, logger)
	comparisons := stats.Compare(eventRecords, controlRecords, "event", "control", horizonNames, cfg.Study.MinGroupSize)

	for _, c := range comparisons {
		if c.Insufficient || c.Test == nil {
			continue
		}
		logger.Info("event vs control",
			"horizon", c.Horizon,
			"event_mean_pct", fmt.Sprintf("%.3f", c.MeanA*100),
			"control_mean_pct", fmt.Sprintf("%.3f", c.MeanB*100),
			"t", fmt.Sprintf("%.3f", c.Test.T),
			"p_one_sided_low", fmt.Sprintf("%.4f", c.Test.POneSidedLow),
		)
	}

	eventHeaders, eventRows := exporter.RecordTable(eventRecords, horizonNames)
	controlHeaders, controlRows := exporter.RecordTable(controlRecords, horizonNames)
	summaryHeaders, summaryRows := exporter.SummaryTable(summary, horizonNames)
	cmpHeaders, cmpRows := exporter.ComparisonTable(comparisons)

	csvWriter := exporter.NewCSVWriter(outputDir, logger)
	if err := csvWriter.WriteCSV("short_term_reactions.csv", exporter.WriteOptions{Headers: eventHeaders, Records: eventRows, BOMPrefix: true}); err != nil {
		return err
	}
	if err := csvWriter.WriteCSV("short_term_summary.csv", exporter.WriteOptions{Headers: summaryHeaders, Records: summaryRows, BOMPrefix: true}); err != nil {
		return err
	}

	wb := exporter.NewWorkbook(logger)
	if err := wb.AddSheet("Tariff Events", eventHeaders, eventRows); err != nil {
		return err
	}
	if err := wb.AddSheet("Control Events", controlHeaders, controlRows); err != nil {
		return err
	}
	if err := wb.AddSheet("Summary", summaryHeaders, summaryRows); err != nil {
		return err
	}
	if err := wb.AddSheet("Comparison", cmpHeaders, cmpRows); err != nil {
		return err
	}
	if err := wb.AddRunInfo(map[string]string{
		"baseline_mode":   engineCfg.BaselineMode.String(),
		"baseline_window": engineCfg.BaselineWindow.String(),
		"control_seed":    strconv.FormatInt(seed, 10),
		"events":          strconv.Itoa(len(eventRecords)),
		"controls":        strconv.Itoa(len(controlRecords)),
	}); err != nil {
		return err
	}
	return wb.Save(filepath.Join(outputDir, "short_term_reactions.xlsx"))
}
