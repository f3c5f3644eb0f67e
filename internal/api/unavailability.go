package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/fascia"
	"github.com/rlicordari/turni-autogen-experimental/internal/ghstore"
	"github.com/rlicordari/turni-autogen-experimental/internal/unavail"
)

// unavailEntry is one row as shown/edited by a doctor. Conversion fields
// are set when a stored legacy value was normalized for display; the store
// itself is only rewritten when the doctor saves.
type unavailEntry struct {
	Date          string `json:"date"`
	Shift         string `json:"shift"`
	Note          string `json:"note,omitempty"`
	OriginalShift string `json:"originalShift,omitempty"`
	Converted     bool   `json:"converted,omitempty"`
	Unrecognized  bool   `json:"unrecognized,omitempty"`
}

// GetUnavailability returns the calling doctor's rows for one month,
// normalized for display.
// GET /api/unavailability?year=2026&month=2
func (h *Handler) GetUnavailability(c *gin.Context) {
	sess := sessionFrom(c)
	doctor := sess.Doctor
	if doctor == "" {
		doctor = c.Query("doctor") // admin inspecting the archive
	}
	if doctor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medico non specificato"})
		return
	}

	year, month, ok := periodParams(c)
	if !ok {
		return
	}

	rows, sha, err := h.loadStore()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("archivio indisponibilità: %v", err)})
		return
	}

	var entries []unavailEntry
	for _, row := range unavail.FilterDoctorMonth(rows, doctor, year, month) {
		res := fascia.Normalize(row.Shift)
		e := unavailEntry{
			Date:  row.Date,
			Shift: string(res.Canonical),
			Note:  row.Note,
		}
		if res.Changed {
			e.OriginalShift = row.Shift
			e.Converted = true
			e.Unrecognized = res.Unknown
		}
		entries = append(entries, e)
	}

	c.JSON(http.StatusOK, gin.H{
		"doctor":  doctor,
		"year":    year,
		"month":   month,
		"entries": entries,
		"sha":     sha,
		"options": fascia.Options,
	})
}

type saveUnavailabilityRequest struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	SHA     string         `json:"sha"`
	Entries []unavailEntry `json:"entries"`
}

// SaveUnavailability replaces the calling doctor's rows for one month.
// The sha from the last read must be presented; a stale sha means someone
// else saved in the meantime and the client must reload.
// PUT /api/unavailability
func (h *Handler) SaveUnavailability(c *gin.Context) {
	sess := sessionFrom(c)
	if sess.Doctor == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "solo i medici possono salvare indisponibilità"})
		return
	}

	var req saveUnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "richiesta non valida"})
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anno/mese non validi"})
		return
	}

	var entries []unavail.Row
	for _, e := range req.Entries {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			continue
		}
		res := fascia.Normalize(e.Shift)
		if res.Canonical == "" {
			continue
		}
		entries = append(entries, unavail.Row{
			Doctor: sess.Doctor,
			Date:   e.Date,
			Shift:  string(res.Canonical),
			Note:   e.Note,
		})
	}

	rows, sha, err := h.loadStore()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("archivio indisponibilità: %v", err)})
		return
	}
	if req.SHA != "" && req.SHA != sha {
		c.JSON(http.StatusConflict, gin.H{"error": "archivio modificato da un altro utente: ricarica e riprova"})
		return
	}

	newRows := unavail.ReplaceDoctorMonth(rows, sess.Doctor, req.Year, req.Month, entries)
	message := fmt.Sprintf("Update unavailability: %s", sess.Doctor)
	if err := h.ghFiles.PutFile(unavail.ToCSV(newRows), sha, message); err != nil {
		if errors.Is(err, ghstore.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "conflitto di salvataggio: ricarica e riprova"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("salvataggio archivio: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": len(entries)})
}

// loadStore reads the shared unavailability store; a missing file is an
// empty store, not an error.
func (h *Handler) loadStore() ([]unavail.Row, string, error) {
	f, err := h.ghFiles.GetFile()
	if err != nil {
		if errors.Is(err, ghstore.ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", err
	}
	rows, err := unavail.Load(f.Text)
	if err != nil {
		return nil, "", err
	}
	return rows, f.SHA, nil
}

func periodParams(c *gin.Context) (year, month int, ok bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anno non valido"})
		return 0, 0, false
	}
	month, err = strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mese non valido"})
		return 0, 0, false
	}
	return year, month, true
}
