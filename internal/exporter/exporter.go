// Package exporter serializes the fused table.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phuslu/log"
	"github.com/xuri/excelize/v2"

	"MarketFusion/internal/model"
)

// SheetName is the worksheet name of the XLSX copy.
const SheetName = "fusion"

// WriteCSV writes a header and one row per record. Missing values are empty
// fields and floats use the shortest representation that round-trips.
func WriteCSV(w io.Writer, records []model.AlignedRecord, layout Layout) error {
	cols := layout.columns()
	writer := csv.NewWriter(w)

	if err := writer.Write(layout.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(cols))
	for i := range records {
		for j, c := range cols {
			row[j] = formatCell(c.value(&records[i]))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// WriteFile writes the CSV to a temporary file next to path and renames it
// into place, so readers never observe a partial artifact.
func WriteFile(path string, records []model.AlignedRecord, layout Layout) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := WriteCSV(tmp, records, layout); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	log.Info().
		Str("path", path).
		Str("layout", string(layout)).
		Int("rows", len(records)).
		Msg("csv written")
	return nil
}

// XLSXPath returns the workbook path paired with a CSV path.
func XLSXPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".xlsx"
}

// WriteXLSX writes the same table as a single-sheet workbook.
func WriteXLSX(path string, records []model.AlignedRecord, layout Layout) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headers := layout.Headers()
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := layout.columns()
	for i := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = c.value(&records[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Info().Str("path", path).Int("rows", len(records)).Msg("xlsx written")
	return nil
}
