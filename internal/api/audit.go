package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListAuditRuns returns the local generation run log, newest first.
// GET /api/audit
func (h *Handler) ListAuditRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
