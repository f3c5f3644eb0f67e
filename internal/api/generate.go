package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rlicordari/turni-autogen-experimental/internal/audit"
	"github.com/rlicordari/turni-autogen-experimental/internal/carryover"
	"github.com/rlicordari/turni-autogen-experimental/internal/model"
	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
	"github.com/rlicordari/turni-autogen-experimental/internal/scheduler"
	"github.com/rlicordari/turni-autogen-experimental/internal/unavail"
	"github.com/rlicordari/turni-autogen-experimental/internal/xlsx"
)

const downloadTTL = 30 * time.Minute

// generateResponse is what the admin UI gets back after a run.
type generateResponse struct {
	RunID         string               `json:"runId"`
	Result        string               `json:"result"`
	Warnings      []string             `json:"warnings,omitempty"`
	Stats         *audit.MonthsSummary `json:"stats,omitempty"`
	Carryover     *carryover.Record    `json:"carryover,omitempty"`
	SheetName     string               `json:"sheetName"`
	DownloadToken string               `json:"downloadToken,omitempty"`
	Filename      string               `json:"filename,omitempty"`
	AuditDelivery string               `json:"auditDelivery,omitempty"`
}

// Generate runs one roster generation end to end: inputs are validated,
// the inter-month carryover is reconciled, the roster is built and written
// into the template, and the attempt is recorded in the local run log and
// the remote audit trail.
// POST /api/generate (multipart form)
func (h *Handler) Generate(c *gin.Context) {
	started := time.Now()
	sess := sessionFrom(c)

	year, _ := strconv.Atoi(c.PostForm("year"))
	month, _ := strconv.Atoi(c.PostForm("month"))
	period, err := model.NewPeriod(year, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anno/mese non validi"})
		return
	}

	operator := strings.TrimSpace(c.PostForm("operator"))
	runID := uuid.New().String()
	event := audit.NewEvent(runID, sess.ID, operator, period.Year, period.Month)

	// Rules: uploaded file wins over the configured path.
	cfg, rulesSource, err := h.resolveRules(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("regole non valide: %v", err)})
		return
	}
	event.RulesSource = rulesSource

	// Template: operator upload or auto-generated blank month.
	templatePath, sheetName, err := h.resolveTemplate(c, cfg, period, runID, event)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event.SheetNameUsed = sheetName

	var warnings []string

	// Unavailability: uploaded file or the shared archive. A malformed
	// upload aborts before any run is recorded.
	unavailRows, warn, err := h.resolveUnavailability(c, period, event)
	warnings = append(warnings, warn...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Carryover: extract from the previous output when provided, then
	// reconcile with the manual Day-1 exclusions. A prior file that cannot
	// be parsed is a hard input error, also before the run log.
	record, warn, err := h.resolveCarryover(c, cfg, period)
	warnings = append(warnings, warn...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Inputs are sound: from here on failures are backend failures and get
	// both a run log entry and an audit event.
	logID, err := h.store.CreateRun(runID, sess.ID, operator, period.Year, period.Month,
		event.TemplateMode, sheetName, rulesSource)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	in := scheduler.Input{
		Period:         period,
		Rules:          cfg,
		Unavailability: unavailRows,
		Carryover:      map[model.Period]*carryover.Record{},
	}
	if record != nil {
		in.Carryover[period] = record
	}

	asg, stats, err := scheduler.NewGenerator(nil).Generate(in)
	if err != nil {
		h.failRun(c, logID, event, started, err)
		return
	}

	filename := fmt.Sprintf("Turni_%s.xlsx", period.Key())
	outPath := filepath.Join(h.dataDir, "outputs", runID+"_"+filename)
	if err := xlsx.WriteSchedule(templatePath, cfg, period, asg, outPath, sheetName); err != nil {
		h.failRun(c, logID, event, started, err)
		return
	}

	summary := audit.SummarizeStats(stats.AsMap())
	event.Complete(time.Since(started), summary)

	var blocked []string
	if record != nil {
		blocked = record.BlockedDay1
	}
	if err := h.store.CompleteRun(logID, "ok", event.DurationS, "", blocked); err != nil {
		warnings = append(warnings, fmt.Sprintf("registro locale non aggiornato: %v", err))
	}

	delivery := h.auditSink.Tell(event)

	c.JSON(http.StatusOK, generateResponse{
		RunID:         runID,
		Result:        stats.Status,
		Warnings:      warnings,
		Stats:         summary,
		Carryover:     record,
		SheetName:     sheetName,
		DownloadToken: h.downloads.put(outPath, filename, downloadTTL),
		Filename:      filename,
		AuditDelivery: delivery.Detail,
	})
}

// Download streams a generated workbook by its one-time token.
// GET /api/download/:token
func (h *Handler) Download(c *gin.Context) {
	d, ok := h.downloads.get(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download scaduto o inesistente"})
		return
	}
	c.FileAttachment(d.filePath, d.filename)
}

// failRun records a failed generation in the run log and audit trail, then
// answers with the error.
func (h *Handler) failRun(c *gin.Context, logID int64, event *audit.Event, started time.Time, err error) {
	event.Fail(time.Since(started), err, string(debug.Stack()))
	_ = h.store.CompleteRun(logID, "error", event.DurationS, err.Error(), nil)
	h.auditSink.Tell(event)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "runId": event.RunID})
}

func (h *Handler) resolveRules(c *gin.Context) (*rules.Config, string, error) {
	fh, err := c.FormFile("rules")
	if err != nil {
		cfg, err := rules.Load(h.cfg.Rules.Path)
		return cfg, "config", err
	}
	path, err := h.saveUpload(c, fh, "rules_"+fh.Filename)
	if err != nil {
		return nil, "", err
	}
	cfg, err := rules.Load(path)
	return cfg, "upload", err
}

func (h *Handler) resolveTemplate(c *gin.Context, cfg *rules.Config, period model.Period, runID string, event *audit.Event) (path, sheet string, err error) {
	sheet = strings.TrimSpace(c.PostForm("sheet_name"))
	if sheet == "" {
		sheet = xlsx.AutoSheetName(period)
	}

	fh, ferr := c.FormFile("template")
	if ferr != nil {
		event.TemplateMode = "auto"
		path = filepath.Join(h.dataDir, "templates", runID+"_template.xlsx")
		if err = xlsx.CreateMonthTemplate(cfg, period, path, sheet); err != nil {
			return "", "", fmt.Errorf("creazione template: %w", err)
		}
		return path, sheet, nil
	}

	event.TemplateMode = "upload"
	event.TemplateFilename = fh.Filename
	event.TemplateBytes = fh.Size
	path, err = h.saveUpload(c, fh, "template_"+fh.Filename)
	if err != nil {
		return "", "", err
	}
	return path, sheet, nil
}

func (h *Handler) resolveUnavailability(c *gin.Context, period model.Period, event *audit.Event) ([]unavail.Row, []string, error) {
	if fh, err := c.FormFile("unavailability"); err == nil {
		event.UnavailabilityName = fh.Filename
		event.UnavailabilityBytes = fh.Size
		path, err := h.saveUpload(c, fh, "unavail_"+fh.Filename)
		if err != nil {
			return nil, nil, err
		}
		rows, err := xlsx.ReadUnavailability(path)
		if err != nil {
			return nil, nil, fmt.Errorf("file indisponibilità: %w", err)
		}
		return unavail.FilterMonth(rows, period.Year, period.Month), nil, nil
	}

	if c.PostForm("use_archive") != "true" {
		return nil, nil, nil
	}
	rows, _, err := h.loadStore()
	if err != nil {
		return nil, []string{fmt.Sprintf("archivio indisponibilità non raggiungibile: %v", err)}, nil
	}
	return unavail.FilterMonth(rows, period.Year, period.Month), nil, nil
}

func (h *Handler) resolveCarryover(c *gin.Context, cfg *rules.Config, period model.Period) (*carryover.Record, []string, error) {
	manual := carryover.CollectManualNames(c.PostFormArray("manual_names"), c.PostForm("manual_free"))

	var warnings []string
	for _, name := range manual {
		if !cfg.HasDoctor(name) {
			warnings = append(warnings, fmt.Sprintf("nome manuale %q non presente nelle regole", name))
		}
	}

	var extracted *carryover.Record
	if fh, err := c.FormFile("prev_output"); err == nil {
		path, err := h.saveUpload(c, fh, "prev_"+fh.Filename)
		if err != nil {
			return nil, warnings, err
		}
		ext, err := xlsx.ExtractCarryover(path, cfg, strings.TrimSpace(c.PostForm("prev_sheet")))
		if err != nil {
			return nil, warnings, fmt.Errorf("lettura file precedente: %w", err)
		}
		extracted = ext.AsRecord()
	}

	record, warn := carryover.Reconcile(period, extracted, manual, nil)
	return record, append(warnings, warn...), nil
}

func (h *Handler) saveUpload(c *gin.Context, fh *multipart.FileHeader, name string) (string, error) {
	path := filepath.Join(h.dataDir, "uploads", uuid.New().String()+"_"+filepath.Base(name))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", fmt.Errorf("salvataggio upload: %w", err)
	}
	return path, nil
}
