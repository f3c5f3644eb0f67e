package xlsx

import (
	"testing"
	"time"
)

func TestParseCellDate_Layouts(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-02-03", "03/02/2026", "2026-02-03 00:00:00"} {
		d, ok := parseCellDate(in)
		if !ok {
			t.Fatalf("parseCellDate(%q) failed", in)
		}
		if !d.Equal(want) {
			t.Fatalf("parseCellDate(%q) = %v", in, d)
		}
	}
}

func TestParseCellDate_ExcelSerial(t *testing.T) {
	t.Parallel()

	// 2026-01-31 is serial 46053 (days since 1899-12-30).
	d, ok := parseCellDate("46053")
	if !ok {
		t.Fatalf("serial not recognized")
	}
	if d.Year() != 2026 || d.Month() != time.January || d.Day() != 31 {
		t.Fatalf("serial parsed as %v", d)
	}
}

func TestParseCellDate_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "  ", "Data", "Rossi", "12", "99999999"} {
		if _, ok := parseCellDate(in); ok {
			t.Fatalf("parseCellDate(%q) accepted", in)
		}
	}
}
