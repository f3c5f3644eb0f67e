package xlsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rlicordari/turni-autogen-experimental/internal/model"
	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
	"github.com/rlicordari/turni-autogen-experimental/internal/scheduler"
	"github.com/rlicordari/turni-autogen-experimental/internal/unavail"
)

func testRules(t *testing.T) *rules.Config {
	t.Helper()
	cfg, err := rules.Parse([]byte(`
doctors: [Rossi, Bianchi, Verdi]
duties:
  - name: Guardia
    column: B
  - name: Notte
    column: C
night_duty: Notte
night_column: C
`))
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	return cfg
}

func TestAutoSheetName(t *testing.T) {
	t.Parallel()

	got := AutoSheetName(model.Period{Year: 2026, Month: 2})
	if got != "GUARDIE_FEBBRAIO_2026" {
		t.Fatalf("sheet name = %q", got)
	}
}

func TestCreateMonthTemplate(t *testing.T) {
	t.Parallel()

	cfg := testRules(t)
	period := model.Period{Year: 2026, Month: 2}
	path := filepath.Join(t.TempDir(), "template.xlsx")

	if err := CreateMonthTemplate(cfg, period, path, ""); err != nil {
		t.Fatalf("create template: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	if sheet != "GUARDIE_FEBBRAIO_2026" {
		t.Fatalf("sheet = %q", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// Header plus 28 days.
	if len(rows) != 29 {
		t.Fatalf("row count = %d", len(rows))
	}
	if rows[0][0] != "Data" || rows[0][1] != "Guardia" || rows[0][2] != "Notte" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "2026-02-01" || rows[28][0] != "2026-02-28" {
		t.Fatalf("date rows = %q .. %q", rows[1][0], rows[28][0])
	}
}

func TestWriteSchedule_ThenExtractCarryover(t *testing.T) {
	t.Parallel()

	cfg := testRules(t)
	period := model.Period{Year: 2026, Month: 1}
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "template.xlsx")
	outPath := filepath.Join(dir, "out.xlsx")

	if err := CreateMonthTemplate(cfg, period, tmplPath, ""); err != nil {
		t.Fatalf("create template: %v", err)
	}

	asg := scheduler.Assignment{}
	for day := 1; day <= period.Days(); day++ {
		asg[day] = map[string]string{"Guardia": "Rossi", "Notte": "Bianchi"}
	}
	asg[31]["Notte"] = "Verdi"

	if err := WriteSchedule(tmplPath, cfg, period, asg, outPath, ""); err != nil {
		t.Fatalf("write schedule: %v", err)
	}

	ext, err := ExtractCarryover(outPath, cfg, "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ext.LastDate == nil {
		t.Fatalf("no last date")
	}
	want := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if !ext.LastDate.Equal(want) {
		t.Fatalf("last date = %v", ext.LastDate)
	}
	if len(ext.BlockedDay1) != 1 || ext.BlockedDay1[0] != "Verdi" {
		t.Fatalf("blocked = %v", ext.BlockedDay1)
	}
	if !strings.Contains(ext.Note, "2026-01-31") {
		t.Fatalf("note = %q", ext.Note)
	}
}

func TestExtractCarryover_MultiNameNightCell(t *testing.T) {
	t.Parallel()

	cfg := testRules(t)
	path := filepath.Join(t.TempDir(), "prev.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "Data")
	_ = f.SetCellValue(sheet, "A2", "2026-01-30")
	_ = f.SetCellValue(sheet, "C2", "Rossi")
	_ = f.SetCellValue(sheet, "A3", "2026-01-31")
	_ = f.SetCellValue(sheet, "C3", "Rossi, Verdi / Recupero")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	ext, err := ExtractCarryover(path, cfg, "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// Reserved sentinel is dropped, real names kept.
	if len(ext.BlockedDay1) != 2 || ext.BlockedDay1[0] != "Rossi" || ext.BlockedDay1[1] != "Verdi" {
		t.Fatalf("blocked = %v", ext.BlockedDay1)
	}
}

func TestExtractCarryover_NoDates(t *testing.T) {
	t.Parallel()

	cfg := testRules(t)
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	f := excelize.NewFile()
	_ = f.SetCellValue(f.GetSheetName(0), "A1", "solo testo")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	if _, err := ExtractCarryover(path, cfg, ""); err == nil {
		t.Fatalf("dateless workbook accepted")
	}
}

func TestUnavailabilityWorkbook_RoundTrip(t *testing.T) {
	t.Parallel()

	rows := []unavail.Row{
		{Doctor: "Rossi", Date: "2026-02-03", Shift: "Mattina", Note: "visita"},
		{Doctor: "Bianchi", Date: "2026-02-10", Shift: "Notte"},
	}
	path := filepath.Join(t.TempDir(), "unavail.xlsx")
	if err := BuildUnavailabilityXLSX(rows, path); err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := ReadUnavailability(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %+v", got)
	}
	if got[0].Doctor != "Rossi" || got[0].Note != "visita" || got[1].Shift != "Notte" {
		t.Fatalf("rows = %+v", got)
	}
}

func TestReadUnavailability_CSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "unavail.csv")
	text := "doctor,date,shift,note\nRossi,2026-02-03,Mattina,\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadUnavailability(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Doctor != "Rossi" {
		t.Fatalf("rows = %+v", got)
	}
}

func TestReadUnavailability_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "unavail.pdf")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadUnavailability(path); err == nil {
		t.Fatalf("pdf accepted")
	}
}
