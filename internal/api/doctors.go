package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
)

// ListDoctors returns the selectable doctors from the rules file. Exposed
// without a session so the login form can offer the name list.
// GET /api/doctors
func (h *Handler) ListDoctors(c *gin.Context) {
	cfg, err := rules.Load(h.cfg.Rules.Path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "regole non disponibili"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctors": cfg.CollectDoctors()})
}
