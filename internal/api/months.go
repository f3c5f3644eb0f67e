package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/model"
	"github.com/rlicordari/turni-autogen-experimental/internal/store"
)

type monthsResponse struct {
	CurrentYear  int                `json:"currentYear"`
	CurrentMonth int                `json:"currentMonth"`
	Items        []store.PeriodStat `json:"items"`
}

// ListMonths lists the periods that have generation history.
// GET /api/months
func (h *Handler) ListMonths(c *gin.Context) {
	items, err := h.store.ListRunPeriods()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	year, month, err := h.store.GetCurrentPeriod()
	if err != nil {
		year = 0
		month = 0
	}

	c.JSON(http.StatusOK, monthsResponse{
		CurrentYear:  year,
		CurrentMonth: month,
		Items:        items,
	})
}

type selectMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// SelectMonth switches the period the operator is working on.
// POST /api/months/select
func (h *Handler) SelectMonth(c *gin.Context) {
	var req selectMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "richiesta non valida"})
		return
	}

	period, err := model.NewPeriod(req.Year, req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anno/mese non validi"})
		return
	}

	if err := h.store.SetCurrentPeriod(period.Year, period.Month); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":  period.Year,
		"month": period.Month,
	})
}
