// Command eventstudy runs the full multi-day event study: it loads two
// 5-minute bar series (a price instrument and a volatility instrument)
// and a classified post archive, computes abnormal returns at intraday
// and trading-day horizons for the flagged events and a matched control
// group, aggregates them by sentiment, and writes the results workbook
// and CSVs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"eventstudy/internal/config"
	"eventstudy/internal/exporter"
	"eventstudy/internal/infrastructure"
	"eventstudy/internal/loader"
	"eventstudy/internal/market"
	"eventstudy/internal/stats"
	"eventstudy/internal/study"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	primaryPath := flag.String("bars", "SPY_5min_history.xlsx", "primary instrument 5-minute bar file (xlsx or csv)")
	secondaryPath := flag.String("secondary", "", "optional volatility instrument bar file (xlsx or csv)")
	eventsPath := flag.String("events", "tariff_classified_tweets_full.json", "classified post archive (json or csv)")
	outputDir := flag.String("out", "", "output directory (defaults to config paths.output_dir)")
	horizonList := flag.String("horizons", "30min,60min,120min,1d,2d,3d,4d,5d,6d,7d,8d,9d,10d", "comma-separated horizon menu")
	baselineMode := flag.String("baseline", "prior-day", "baseline mode: prior-day or intraday")
	seed := flag.Int64("seed", 0, "control sampling seed (defaults to config study.control_seed)")
	parallel := flag.Int("parallel", 0, "per-event parallelism (defaults to config study.parallelism)")
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
	if *parallel == 0 {
		*parallel = cfg.Study.Parallelism
	}

	horizons, err := study.ParseHorizons(*horizonList)
	if err != nil {
		logger.Error("invalid -horizons", "value", *horizonList, "error", err)
		os.Exit(1)
	}
	var mode study.BaselineMode
	switch *baselineMode {
	case "prior-day":
		mode = study.BaselinePriorDay
	case "intraday":
		mode = study.BaselineIntraday
	default:
		logger.Error("invalid -baseline", "value", *baselineMode)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := run(ctx, cfg, logger, *primaryPath, *secondaryPath, *eventsPath, *outputDir, horizons, mode, *seed, *parallel); err != nil {
		logger.Error("event study failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, primaryPath, secondaryPath, eventsPath, outputDir string, horizons []study.Horizon, mode study.BaselineMode, seed int64, parallel int) error {
	primary, err := loader.LoadBars(primaryPath, "SPY", logger)
	if err != nil {
		return fmt.Errorf("load primary bars: %w", err)
	}
	logger.Info("primary series ready",
		"bars", primary.Len(),
		"from", primary.First().Time,
		"to", primary.Last().Time,
	)

	var secondary *market.Series
	if secondaryPath != "" {
		secondary, err = loader.LoadBars(secondaryPath, "VXX", logger)
		if err != nil {
			return fmt.Errorf("load secondary bars: %w", err)
		}
	}

	events, err := loader.LoadEvents(eventsPath, loader.EventFilter{TopicOnly: true}, logger)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events remain after filtering")
	}

	engineCfg := study.Config{
		Horizons:        horizons,
		BaselineMode:    mode,
		BaselineWindow:  cfg.Study.BaselineWindow,
		Abnormal:        true,
		ToleranceBefore: cfg.Study.ToleranceBefore,
		ToleranceAfter:  cfg.Study.ToleranceAfter,
		MaxCARDay:       10,
		Parallelism:     parallel,
	}
	engine, err := study.NewEngine(engineCfg, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	eventRecords, err := engine.Run(ctx, primary, secondary, events)
	if err != nil {
		return fmt.Errorf("compute event returns: %w", err)
	}

	controlCfg := study.ControlConfig{
		N:             len(events),
		Seed:          seed,
		ExclusionDays: cfg.Study.ExclusionDays,
		MaxAttempts:   10000,
	}
	controls := study.ControlEvents(study.SampleControls(controlCfg, events, logger))
	controlRecords, err := engine.Run(ctx, primary, secondary, controls)
	if err != nil {
		return fmt.Errorf("compute control returns: %w", err)
	}

	horizonNames := make([]string, 0, len(engineCfg.Horizons))
	for _, h := range engineCfg.Horizons {
		horizonNames = append(horizonNames, h.Name())
	}

	summary := stats.Summarize(eventRecords, stats.ByCategory, horizonNames, cfg.Study.MinGroupSize, logger)
	comparisons := stats.Compare(eventRecords, controlRecords, "event", "control", horizonNames, cfg.Study.MinGroupSize)

	return export(logger, outputDir, engineCfg, seed, horizonNames, eventRecords, controlRecords, summary, comparisons)
}

func export(logger *slog.Logger, outputDir string, engineCfg study.Config, seed int64, horizonNames []string, eventRecords, controlRecords []study.ReturnRecord, summary stats.Summary, comparisons []stats.Comparison) error {
	eventHeaders, eventRows := exporter.RecordTable(eventRecords, horizonNames)
	controlHeaders, controlRows := exporter.RecordTable(controlRecords, horizonNames)
	summaryHeaders, summaryRows := exporter.SummaryTable(summary, horizonNames)
	cmpHeaders, cmpRows := exporter.ComparisonTable(comparisons)

	csvWriter := exporter.NewCSVWriter(outputDir, logger)
	if err := csvWriter.WriteCSV("event_study_results.csv", exporter.WriteOptions{Headers: eventHeaders, Records: eventRows, BOMPrefix: true}); err != nil {
		return err
	}
	if err := csvWriter.WriteCSV("event_study_controls.csv", exporter.WriteOptions{Headers: controlHeaders, Records: controlRows, BOMPrefix: true}); err != nil {
		return err
	}
	if err := csvWriter.WriteCSV("event_study_summary.csv", exporter.WriteOptions{Headers: summaryHeaders, Records: summaryRows, BOMPrefix: true}); err != nil {
		return err
	}

	wb := exporter.NewWorkbook(logger)
	if err := wb.AddSheet("Events", eventHeaders, eventRows); err != nil {
		return err
	}
	if err := wb.AddSheet("Controls", controlHeaders, controlRows); err != nil {
		return err
	}
	if err := wb.AddSheet("Summary", summaryHeaders, summaryRows); err != nil {
		return err
	}
	if err := wb.AddSheet("Comparison", cmpHeaders, cmpRows); err != nil {
		return err
	}
	if err := wb.AddRunInfo(map[string]string{
		"baseline_mode": engineCfg.BaselineMode.String(),
		"abnormal":      strconv.FormatBool(engineCfg.Abnormal),
		"control_seed":  strconv.FormatInt(seed, 10),
		"events":        strconv.Itoa(len(eventRecords)),
		"controls":      strconv.Itoa(len(controlRecords)),
		"started":       time.Now().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	return wb.Save(filepath.Join(outputDir, "event_study_results.xlsx"))
}
