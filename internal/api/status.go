package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
)

// StatusResponse describes the app's readiness to the frontend.
type StatusResponse struct {
	RulesLoaded     bool   `json:"rulesLoaded"`
	RulesError      string `json:"rulesError,omitempty"`
	DoctorCount     int    `json:"doctorCount"`
	CurrentYear     int    `json:"currentYear"`
	CurrentMonth    int    `json:"currentMonth"`
	ArchiveEnabled  bool   `json:"archiveEnabled"`
	AuditEnabled    bool   `json:"auditEnabled"`
	AdminConfigured bool   `json:"adminConfigured"`
}

// GetStatus reports configuration and store health.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		ArchiveEnabled:  h.cfg.GitHub.Token != "" && h.cfg.GitHub.StoreRepo != "",
		AuditEnabled:    h.cfg.GitHub.Token != "" && h.cfg.GitHub.AuditRepo != "",
		AdminConfigured: h.cfg.Auth.AdminPIN != "",
	}

	cfg, err := rules.Load(h.cfg.Rules.Path)
	if err != nil {
		resp.RulesError = err.Error()
	} else {
		resp.RulesLoaded = true
		resp.DoctorCount = len(cfg.CollectDoctors())
	}

	if year, month, err := h.store.GetCurrentPeriod(); err == nil {
		resp.CurrentYear = year
		resp.CurrentMonth = month
	}

	c.JSON(http.StatusOK, resp)
}
