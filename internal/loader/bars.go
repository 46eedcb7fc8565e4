package loader

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"eventstudy/internal/market"
)

// timestampLayouts are tried in order when parsing bar and event
// timestamps. All times are timezone-naive exchange-local times.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/06 15:04",
}

// ParseTimestamp parses a timezone-naive timestamp in any supported layout.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// barColumns maps normalized header names to field positions.
type barColumns struct {
	date, clock, open, high, low, close, volume int
}

func newBarColumns() barColumns {
	return barColumns{date: -1, clock: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
}

func (c *barColumns) bind(header []string) bool {
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "datetime", "timestamp":
			if c.date < 0 {
				c.date = i
			}
		case "time":
			c.clock = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close", "last":
			c.close = i
		case "volume", "vol":
			c.volume = i
		}
	}
	return c.date >= 0 && c.open >= 0 && c.high >= 0 && c.low >= 0 && c.close >= 0
}

func (c barColumns) parseRow(row []string) (market.Bar, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ts := cell(c.date)
	if c.clock >= 0 && cell(c.clock) != "" {
		ts = ts + " " + cell(c.clock)
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return market.Bar{}, fmt.Errorf("parse timestamp: %w", err)
	}

	num := func(i int) (float64, error) {
		s := strings.ReplaceAll(cell(i), ",", "")
		if s == "" {
			return 0, fmt.Errorf("empty cell")
		}
		return strconv.ParseFloat(s, 64)
	}

	bar := market.Bar{Time: t}
	if bar.Open, err = num(c.open); err != nil {
		return market.Bar{}, fmt.Errorf("parse open: %w", err)
	}
	if bar.High, err = num(c.high); err != nil {
		return market.Bar{}, fmt.Errorf("parse high: %w", err)
	}
	if bar.Low, err = num(c.low); err != nil {
		return market.Bar{}, fmt.Errorf("parse low: %w", err)
	}
	if bar.Close, err = num(c.close); err != nil {
		return market.Bar{}, fmt.Errorf("parse close: %w", err)
	}
	if c.volume >= 0 {
		if v, err := num(c.volume); err == nil {
			bar.Volume = v
		}
	}
	return bar, nil
}

// LoadBars dispatches on the file extension to the XLSX or CSV loader.
func LoadBars(path, symbol string, logger *slog.Logger) (*market.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return BarsFromXLSX(path, symbol, logger)
	case ".csv":
		return BarsFromCSV(path, symbol, logger)
	default:
		return nil, fmt.Errorf("unsupported bar file format: %s", path)
	}
}

// BarsFromXLSX loads a bar series from an Excel workbook. The data sheet
// is located by scanning every sheet for a header row carrying date and
// OHLC columns; rows that fail to parse are skipped and counted.
func BarsFromXLSX(path, symbol string, logger *slog.Logger) (*market.Series, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		// The header may not be the first row; scan the top of the sheet.
		for headerIdx := 0; headerIdx < len(rows) && headerIdx < 5; headerIdx++ {
			cols := newBarColumns()
			if !cols.bind(rows[headerIdx]) {
				continue
			}

			series, skipped, err := parseBarRows(rows[headerIdx+1:], cols, symbol)
			if err != nil {
				return nil, fmt.Errorf("sheet %s: %w", sheet, err)
			}
			logger.Info("loaded bar series from workbook",
				"path", filepath.Base(path),
				"sheet", sheet,
				"symbol", symbol,
				"bars", series.Len(),
				"skipped_rows", skipped,
			)
			return series, nil
		}
	}
	return nil, fmt.Errorf("no sheet with bar data found in %s", path)
}

// BarsFromCSV loads a bar series from a CSV file with the same column
// conventions as the XLSX loader.
func BarsFromCSV(path, symbol string, logger *slog.Logger) (*market.Series, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv %s has no data rows", path)
	}

	cols := newBarColumns()
	if !cols.bind(rows[0]) {
		return nil, fmt.Errorf("csv %s is missing required bar columns", path)
	}

	series, skipped, err := parseBarRows(rows[1:], cols, symbol)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded bar series from csv",
		"path", filepath.Base(path),
		"symbol", symbol,
		"bars", series.Len(),
		"skipped_rows", skipped,
	)
	return series, nil
}

func parseBarRows(rows [][]string, cols barColumns, symbol string) (*market.Series, int, error) {
	bars := make([]market.Bar, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		bar, err := cols.parseRow(row)
		if err != nil || !bar.IsValid() {
			skipped++
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, skipped, fmt.Errorf("no valid bars parsed for %s", symbol)
	}
	series, err := market.NewSeries(symbol, bars)
	if err != nil {
		return nil, skipped, err
	}
	return series, skipped, nil
}
