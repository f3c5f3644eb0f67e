package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/config"
	"github.com/rlicordari/turni-autogen-experimental/internal/store"
)

const testRulesYAML = `
doctors: [Rossi, Bianchi, Verdi, Neri]
duties:
  - name: Guardia
    column: B
  - name: Notte
    column: C
night_duty: Notte
night_column: C
global_constraints:
  night_spacing_days_min: 2
`

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	for _, sub := range []string{"uploads", "outputs", "templates"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}

	rulesPath := filepath.Join(dir, "Regole_Turni.yml")
	if err := os.WriteFile(rulesPath, []byte(testRulesYAML), 0644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	st, err := store.New(filepath.Join(dir, "turni.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultConfig()
	cfg.Rules.Path = rulesPath
	cfg.Auth.AdminPIN = "9999"
	cfg.Auth.DoctorPINs = map[string]string{"Rossi": "1111"}

	h := NewHandler(cfg, st, dir)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return router, h
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, router *gin.Engine, role, doctor, pin string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"role": role, "doctor": doctor, "pin": pin,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login as %s: status %d: %s", role, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response: %s", w.Body.String())
	}
	return resp.Token
}

func TestLogin_AdminPIN(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"role": "admin", "pin": "0000",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong PIN: status %d", w.Code)
	}

	token := loginAs(t, router, "admin", "", "9999")
	if w := doJSON(t, router, http.MethodGet, "/api/months", token, nil); w.Code != http.StatusOK {
		t.Fatalf("admin route with token: status %d: %s", w.Code, w.Body.String())
	}
}

func TestLogin_DoctorPIN(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"role": "doctor", "doctor": "Rossi", "pin": "2222",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong PIN: status %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"role": "doctor", "pin": "1111",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing doctor name: status %d", w.Code)
	}

	token := loginAs(t, router, "doctor", "Rossi", "1111")

	// Doctors cannot reach admin routes.
	if w := doJSON(t, router, http.MethodGet, "/api/months", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("doctor on admin route: status %d", w.Code)
	}

	// Unconfigured archive reads as empty, not as an error.
	w = doJSON(t, router, http.MethodGet, "/api/unavailability?year=2026&month=2", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unavailability: status %d: %s", w.Code, w.Body.String())
	}
}

func TestRoutes_RequireSession(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/months", "/api/audit", "/api/unavailability?year=2026&month=2"} {
		if w := doJSON(t, router, http.MethodGet, path, "", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without session: status %d", path, w.Code)
		}
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	if w := doJSON(t, router, http.MethodPost, "/api/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/api/months", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: status %d", w.Code)
	}
}

func TestStatus_ReportsRules(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.RulesLoaded || resp.DoctorCount != 4 {
		t.Fatalf("status = %+v", resp)
	}
	if !resp.AdminConfigured || resp.ArchiveEnabled {
		t.Fatalf("status = %+v", resp)
	}
}

func TestDoctors_PublicList(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/doctors", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("doctors: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Rossi") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSelectMonth(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	w := doJSON(t, router, http.MethodPost, "/api/months/select", token, map[string]int{"year": 2026, "month": 13})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid month: status %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/months/select", token, map[string]int{"year": 2026, "month": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("select: status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/months", token, nil)
	var resp monthsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CurrentYear != 2026 || resp.CurrentMonth != 2 {
		t.Fatalf("months = %+v", resp)
	}
}

func generateForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("form field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestGenerate_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	body, contentType := generateForm(t, map[string]string{
		"year":        "2026",
		"month":       "2",
		"operator":    "Dr. Rossi",
		"manual_free": "Bianchi",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("generate: status %d: %s", w.Code, w.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID == "" || resp.DownloadToken == "" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.SheetName != "GUARDIE_FEBBRAIO_2026" {
		t.Fatalf("sheet = %q", resp.SheetName)
	}
	if resp.Carryover == nil || len(resp.Carryover.BlockedDay1) != 1 || resp.Carryover.BlockedDay1[0] != "Bianchi" {
		t.Fatalf("carryover = %+v", resp.Carryover)
	}
	if resp.Stats == nil || len(resp.Stats.GreedyPeriods) != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}

	// The workbook is downloadable through the returned token.
	dl := doJSON(t, router, http.MethodGet, "/api/download/"+resp.DownloadToken, token, nil)
	if dl.Code != http.StatusOK {
		t.Fatalf("download: status %d", dl.Code)
	}
	if dl.Body.Len() == 0 {
		t.Fatalf("empty download")
	}

	// The run is in the local log.
	audit := doJSON(t, router, http.MethodGet, "/api/audit", token, nil)
	if !strings.Contains(audit.Body.String(), resp.RunID) {
		t.Fatalf("run missing from audit log: %s", audit.Body.String())
	}
	if !strings.Contains(audit.Body.String(), "Bianchi") {
		t.Fatalf("blocked names missing from run log: %s", audit.Body.String())
	}
}

func TestGenerate_UnknownManualNameWarns(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	body, contentType := generateForm(t, map[string]string{
		"year":        "2026",
		"month":       "2",
		"manual_free": "Sconosciuto",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("generate: status %d: %s", w.Code, w.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, warn := range resp.Warnings {
		if strings.Contains(warn, "Sconosciuto") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no warning for unknown manual name: %v", resp.Warnings)
	}
}

func TestGenerate_InvalidPeriod(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	body, contentType := generateForm(t, map[string]string{"year": "2026", "month": "13"})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid period: status %d", w.Code)
	}
}

func TestDownload_UnknownToken(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	w := doJSON(t, router, http.MethodGet, "/api/download/nope", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown token: status %d", w.Code)
	}
}

func TestSaveUnavailability_RequiresDoctorSession(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "admin", "", "9999")

	// The admin passes the role gate but has no doctor identity to write as.
	w := doJSON(t, router, http.MethodPut, "/api/unavailability", token, map[string]any{
		"year": 2026, "month": 2,
		"entries": []map[string]string{{"date": "2026-02-03", "shift": "Mattina"}},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin save: status %d: %s", w.Code, w.Body.String())
	}
}

func TestGetUnavailability_ParamValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "doctor", "Rossi", "1111")

	for _, q := range []string{"", "?year=abc&month=2", "?year=2026&month=0"} {
		w := doJSON(t, router, http.MethodGet, "/api/unavailability"+q, token, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("query %q: status %d", q, w.Code)
		}
	}
}
