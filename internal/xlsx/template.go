package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rlicordari/turni-autogen-experimental/internal/model"
	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
)

// AutoSheetName builds the conventional sheet name for a period,
// e.g. "GUARDIE_FEBBRAIO_2026".
func AutoSheetName(period model.Period) string {
	return fmt.Sprintf("GUARDIE_%s_%d", strings.ToUpper(model.MonthLabelIT(period.Month)), period.Year)
}

// CreateMonthTemplate writes a blank roster workbook for one period: one
// row per day in the first column, one column per configured duty.
func CreateMonthTemplate(cfg *rules.Config, period model.Period, outPath, sheetName string) error {
	if sheetName == "" {
		sheetName = AutoSheetName(period)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", "Data"); err != nil {
		return err
	}
	for _, duty := range cfg.Duties {
		cell, err := excelize.JoinCellName(duty.Column, 1)
		if err != nil {
			return fmt.Errorf("duty %q: invalid column %q: %w", duty.Name, duty.Column, err)
		}
		if err := f.SetCellValue(sheetName, cell, duty.Name); err != nil {
			return err
		}
	}

	first := period.FirstDay()
	for day := 0; day < period.Days(); day++ {
		cell := fmt.Sprintf("A%d", day+2)
		date := first.AddDate(0, 0, day)
		if err := f.SetCellValue(sheetName, cell, date.Format("2006-01-02")); err != nil {
			return err
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}
