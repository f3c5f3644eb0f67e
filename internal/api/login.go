package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/auth"
)

type loginRequest struct {
	Role   string `json:"role"`
	Doctor string `json:"doctor"`
	PIN    string `json:"pin"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Doctor string `json:"doctor,omitempty"`
}

// Login validates a PIN and opens a session.
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "richiesta non valida"})
		return
	}

	switch auth.Role(req.Role) {
	case auth.RoleAdmin:
		if h.cfg.Auth.AdminPIN == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "PIN Admin non configurato"})
			return
		}
		if !auth.CheckPIN(req.PIN, h.cfg.Auth.AdminPIN) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "PIN Admin errato"})
			return
		}
		token := h.sessions.Put(auth.RoleAdmin, "")
		c.JSON(http.StatusOK, loginResponse{Token: token, Role: string(auth.RoleAdmin)})

	case auth.RoleDoctor:
		doctor := strings.TrimSpace(req.Doctor)
		if doctor == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seleziona il tuo nome"})
			return
		}
		if len(h.cfg.Auth.DoctorPINs) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "PIN medici non configurati"})
			return
		}
		if !auth.CheckPIN(req.PIN, h.cfg.Auth.DoctorPINs[doctor]) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "PIN non valido"})
			return
		}
		token := h.sessions.Put(auth.RoleDoctor, doctor)
		c.JSON(http.StatusOK, loginResponse{Token: token, Role: string(auth.RoleDoctor), Doctor: doctor})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "ruolo sconosciuto"})
	}
}

// Logout closes the caller's session.
// POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		h.sessions.Delete(strings.TrimPrefix(header, "Bearer "))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
