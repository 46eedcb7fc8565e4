package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Workbook accumulates worksheets and writes a single XLSX results file.
// Every workbook carries a Run Info sheet stamping the run id, time and
// configuration echo so a result file can be traced back to its inputs.
type Workbook struct {
	file   *excelize.File
	runID  string
	sheets int
	logger *slog.Logger
}

// NewWorkbook creates an empty workbook with a fresh run id.
func NewWorkbook(logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{
		file:   excelize.NewFile(),
		runID:  uuid.NewString(),
		logger: logger,
	}
}

// RunID returns the workbook's run identifier.
func (w *Workbook) RunID() string {
	return w.runID
}

// AddSheet writes a header row plus records into a new worksheet.
func (w *Workbook) AddSheet(name string, headers []string, records [][]string) error {
	index, err := w.file.NewSheet(name)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	if w.sheets == 0 {
		w.file.SetActiveSheet(index)
	}
	w.sheets++

	writeRow := func(rowIdx int, cells []string) error {
		cellName, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		return w.file.SetSheetRow(name, cellName, &row)
	}

	if err := writeRow(1, headers); err != nil {
		return fmt.Errorf("write header row on %s: %w", name, err)
	}
	for i, record := range records {
		if err := writeRow(i+2, record); err != nil {
			return fmt.Errorf("write row %d on %s: %w", i+2, name, err)
		}
	}
	return nil
}

// AddRunInfo writes the run metadata sheet. Settings are free-form
// key/value pairs echoing the run configuration.
func (w *Workbook) AddRunInfo(settings map[string]string) error {
	rows := [][]string{
		{"run_id", w.runID},
		{"generated_at", time.Now().Format(time.RFC3339)},
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []string{k, settings[k]})
	}
	return w.AddSheet("Run Info", []string{"setting", "value"}, rows)
}

// Save writes the workbook to disk, removing the default empty sheet
// excelize creates.
func (w *Workbook) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Drop the default "Sheet1" when real sheets exist.
	if w.sheets > 0 {
		if idx, err := w.file.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
			_ = w.file.DeleteSheet("Sheet1")
		}
	}

	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("saved workbook",
		"path", path,
		"sheets", w.sheets,
		"run_id", w.runID,
	)
	return w.file.Close()
}
