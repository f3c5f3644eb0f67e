package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "turni.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestConfig_RoundTrip(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.GetConfig("missing"); err == nil {
		t.Fatalf("missing key accepted")
	}

	if err := st.SetConfig("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.SetConfig("k", "v2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, err := st.GetConfig("k")
	if err != nil || v != "v2" {
		t.Fatalf("get = %q, %v", v, err)
	}
}

func TestCurrentPeriod(t *testing.T) {
	st := newTestStore(t)

	if _, _, err := st.GetCurrentPeriod(); err == nil {
		t.Fatalf("unset period accepted")
	}

	if err := st.SetCurrentPeriod(2026, 2); err != nil {
		t.Fatalf("set period: %v", err)
	}
	year, month, err := st.GetCurrentPeriod()
	if err != nil {
		t.Fatalf("get period: %v", err)
	}
	if year != 2026 || month != 2 {
		t.Fatalf("period = %d-%d", year, month)
	}
}

func TestRunLog_Lifecycle(t *testing.T) {
	st := newTestStore(t)

	id, err := st.CreateRun("run-1", "sess-1", "Rossi", 2026, 2, "auto", "GUARDIE_FEBBRAIO_2026", "config")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := st.CompleteRun(id, "ok", 1.5, "", []string{"Bianchi", "Verdi"}); err != nil {
		t.Fatalf("complete run: %v", err)
	}

	runs, err := st.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	r := runs[0]
	if r.RunID != "run-1" || r.Result != "ok" || r.DurationS != 1.5 {
		t.Fatalf("run = %+v", r)
	}
	if r.BlockedDay1 != "Bianchi, Verdi" {
		t.Fatalf("blocked = %q", r.BlockedDay1)
	}
}

func TestRunLog_OrderAndLimit(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 3; i++ {
		id, err := st.CreateRun("run", "sess", "", 2026, 2, "auto", "", "config")
		if err != nil {
			t.Fatalf("create run %d: %v", i, err)
		}
		result := "ok"
		if i == 1 {
			result = "error"
		}
		if err := st.CompleteRun(id, result, 0, "", nil); err != nil {
			t.Fatalf("complete run %d: %v", i, err)
		}
	}

	runs, err := st.ListRuns(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit ignored: %d runs", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Fatalf("not newest-first: %+v", runs)
	}
}

func TestListRunPeriods(t *testing.T) {
	st := newTestStore(t)

	mustRun := func(year, month int, result string) {
		t.Helper()
		id, err := st.CreateRun("run", "sess", "", year, month, "auto", "", "config")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := st.CompleteRun(id, result, 0, "", nil); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	mustRun(2026, 1, "ok")
	mustRun(2026, 2, "ok")
	mustRun(2026, 2, "error")

	periods, err := st.ListRunPeriods()
	if err != nil {
		t.Fatalf("list periods: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("periods = %+v", periods)
	}
	if periods[0].Month != 2 || periods[0].RunCount != 2 || periods[0].OKCount != 1 {
		t.Fatalf("newest period = %+v", periods[0])
	}
}
