package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rlicordari/turni-autogen-experimental/internal/unavail"
)

// BuildUnavailabilityXLSX writes store rows to the workbook layout the
// scheduler consumes (one row per entry: Medico / Data / Fascia / Note).
func BuildUnavailabilityXLSX(rows []unavail.Row, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Medico", "Data", "Fascia", "Note"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []string{row.Doctor, row.Date, row.Shift, row.Note}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save unavailability workbook: %w", err)
	}
	return nil
}

// ReadUnavailability loads an operator-supplied unavailability file
// (.xlsx or .csv/.tsv) into store rows.
func ReadUnavailability(path string) ([]unavail.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return readUnavailabilityXLSX(path)
	case ".csv", ".tsv":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read unavailability file: %w", err)
		}
		text := string(data)
		if strings.HasSuffix(strings.ToLower(path), ".tsv") {
			text = strings.ReplaceAll(text, "\t", ",")
		}
		return unavail.Load(text)
	default:
		return nil, fmt.Errorf("unsupported unavailability format: %s", filepath.Ext(path))
	}
}

func readUnavailabilityXLSX(path string) ([]unavail.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open unavailability workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	idx := unavailColumnIndex(cells[0])
	var rows []unavail.Row
	for _, rec := range cells[1:] {
		row := unavail.Row{
			Doctor: cellAt(rec, idx["doctor"]),
			Shift:  cellAt(rec, idx["shift"]),
			Note:   cellAt(rec, idx["note"]),
		}
		if d, ok := parseCellDate(cellAt(rec, idx["date"])); ok {
			row.Date = d.Format("2006-01-02")
		}
		if row.Doctor == "" || row.Date == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// unavailColumnIndex recognizes both Italian and English header names.
func unavailColumnIndex(header []string) map[string]int {
	idx := map[string]int{"doctor": 0, "date": 1, "shift": 2, "note": 3}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "medico", "doctor", "nome":
			idx["doctor"] = i
		case "data", "date":
			idx["date"] = i
		case "fascia", "shift", "turno":
			idx["shift"] = i
		case "note", "nota":
			idx["note"] = i
		}
	}
	return idx
}

func cellAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
