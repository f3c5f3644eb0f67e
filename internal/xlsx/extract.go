package xlsx

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rlicordari/turni-autogen-experimental/internal/carryover"
	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
)

// ExtractCarryover reads the previous period's output workbook and derives
// the inter-month constraint: who worked the night duty on the last roster
// day. Dates are read from the first column, night assignments from the
// rules-configured night column. A file that cannot be opened or contains
// no parseable dates is a hard error; relevance of the result is decided
// later by the reconciler's contiguity guard.
func ExtractCarryover(path string, cfg *rules.Config, sheetName string) (*carryover.Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open previous output: %w", err)
	}
	defer f.Close()

	sheet := sheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	nightIdx, err := columnIndexFromLetter(cfg.NightColumn)
	if err != nil {
		return nil, err
	}

	var lastDate time.Time
	var lastNight []string
	found := false

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		d, ok := parseCellDate(row[0])
		if !ok {
			continue
		}
		if !found || d.After(lastDate) {
			lastDate = d
			lastNight = nightCellDoctors(row, nightIdx)
			found = true
		}
	}

	if !found {
		return nil, fmt.Errorf("no roster dates found in sheet %q", sheet)
	}

	note := fmt.Sprintf("Carryover letto dal file precedente (ultima data %s)", lastDate.Format("2006-01-02"))
	if len(lastNight) > 0 {
		note += ": NOTTE ultimo giorno " + strings.Join(lastNight, ", ")
	}

	return &carryover.Extraction{
		LastDate:    &lastDate,
		BlockedDay1: lastNight,
		Note:        note,
	}, nil
}

// nightCellDoctors splits a night cell into doctor names; cells may carry
// more than one name separated by comma or slash.
func nightCellDoctors(row []string, idx int) []string {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	raw := strings.FieldsFunc(row[idx], func(r rune) bool {
		return r == ',' || r == '/' || r == ';'
	})
	var out []string
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || name == rules.ReservedDoctor {
			continue
		}
		out = append(out, name)
	}
	return out
}

func columnIndexFromLetter(letter string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(strings.ToUpper(letter)))
	if err != nil {
		return 0, fmt.Errorf("invalid night column %q: %w", letter, err)
	}
	return n - 1, nil
}
