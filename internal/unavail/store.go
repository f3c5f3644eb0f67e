package unavail

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Row is one unavailability entry in the shared store.
type Row struct {
	Doctor string `json:"doctor"`
	Date   string `json:"date"` // ISO "2006-01-02"
	Shift  string `json:"shift"`
	Note   string `json:"note,omitempty"`
}

var header = []string{"doctor", "date", "shift", "note"}

// Load parses the store's CSV text. Unknown columns are ignored, malformed
// rows are skipped; crowd-sourced data is only partially trusted.
func Load(text string) ([]Row, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse unavailability csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx, hasHeader := columnIndex(records[0])
	data := records
	if hasHeader {
		data = records[1:]
	}
	var rows []Row
	for _, rec := range data {
		row := Row{
			Doctor: field(rec, idx["doctor"]),
			Date:   field(rec, idx["date"]),
			Shift:  field(rec, idx["shift"]),
			Note:   field(rec, idx["note"]),
		}
		if row.Doctor == "" || row.Date == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ToCSV renders rows back to the store's canonical CSV form, sorted by
// doctor then date so successive saves produce stable diffs.
func ToCSV(rows []Row) string {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Doctor != sorted[j].Doctor {
			return sorted[i].Doctor < sorted[j].Doctor
		}
		return sorted[i].Date < sorted[j].Date
	})

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	for _, row := range sorted {
		_ = w.Write([]string{row.Doctor, row.Date, row.Shift, row.Note})
	}
	w.Flush()
	return b.String()
}

// FilterDoctorMonth returns the rows of one doctor within one month.
func FilterDoctorMonth(rows []Row, doctor string, year, month int) []Row {
	var out []Row
	for _, row := range rows {
		if row.Doctor != doctor {
			continue
		}
		if y, m, ok := rowYearMonth(row); ok && y == year && m == month {
			out = append(out, row)
		}
	}
	return out
}

// FilterMonth returns every doctor's rows within one month.
func FilterMonth(rows []Row, year, month int) []Row {
	var out []Row
	for _, row := range rows {
		if y, m, ok := rowYearMonth(row); ok && y == year && m == month {
			out = append(out, row)
		}
	}
	return out
}

// ReplaceDoctorMonth swaps one doctor's rows for one month with entries,
// leaving every other doctor and month untouched. This is the privacy
// boundary: a doctor can only rewrite their own rows.
func ReplaceDoctorMonth(rows []Row, doctor string, year, month int, entries []Row) []Row {
	out := make([]Row, 0, len(rows)+len(entries))
	for _, row := range rows {
		if row.Doctor == doctor {
			if y, m, ok := rowYearMonth(row); ok && y == year && m == month {
				continue
			}
		}
		out = append(out, row)
	}
	for _, e := range entries {
		e.Doctor = doctor
		out = append(out, e)
	}
	return out
}

func rowYearMonth(row Row) (int, int, bool) {
	d, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return 0, 0, false
	}
	return d.Year(), int(d.Month()), true
}

func columnIndex(headerRow []string) (map[string]int, bool) {
	idx := map[string]int{"doctor": -1, "date": -1, "shift": -1, "note": -1}
	for i, name := range headerRow {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := idx[key]; ok {
			idx[key] = i
		}
	}
	// Headerless legacy files: assume positional columns.
	if idx["doctor"] == -1 && idx["date"] == -1 {
		return map[string]int{"doctor": 0, "date": 1, "shift": 2, "note": 3}, false
	}
	return idx, true
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
