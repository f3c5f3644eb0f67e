package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rlicordari/turni-autogen-experimental/internal/model"
	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
	"github.com/rlicordari/turni-autogen-experimental/internal/scheduler"
)

// WriteSchedule fills a roster template with the generated assignment and
// saves it to outPath. Only data cells are touched; the template's layout
// is preserved as-is.
func WriteSchedule(templatePath string, cfg *rules.Config, period model.Period, asg scheduler.Assignment, outPath, sheetName string) error {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	sheet := sheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	for i, row := range cells {
		if len(row) == 0 {
			continue
		}
		d, ok := parseCellDate(row[0])
		if !ok {
			continue
		}
		if d.Year() != period.Year || int(d.Month()) != period.Month {
			continue
		}
		duties, ok := asg[d.Day()]
		if !ok {
			continue
		}
		for _, duty := range cfg.Duties {
			doctor, ok := duties[duty.Name]
			if !ok {
				continue
			}
			cell, err := excelize.JoinCellName(duty.Column, i+1)
			if err != nil {
				return fmt.Errorf("duty %q: invalid column %q: %w", duty.Name, duty.Column, err)
			}
			if err := f.SetCellValue(sheet, cell, doctor); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	return nil
}
