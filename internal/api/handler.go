package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/auth"
	"github.com/rlicordari/turni-autogen-experimental/internal/config"
	"github.com/rlicordari/turni-autogen-experimental/internal/ghstore"
	"github.com/rlicordari/turni-autogen-experimental/internal/store"
)

const sessionTTL = 12 * time.Hour

// Handler serves the JSON API.
type Handler struct {
	cfg       *config.AppConfig
	store     *store.Store
	dataDir   string
	sessions  *auth.SessionStore
	downloads *downloadStore
	ghFiles   *ghstore.Client
	auditSink *ghstore.Sink
}

// NewHandler wires the API handler.
func NewHandler(cfg *config.AppConfig, st *store.Store, dataDir string) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		dataDir:   dataDir,
		sessions:  auth.NewSessionStore(sessionTTL),
		downloads: newDownloadStore(),
		ghFiles: ghstore.NewClient(ghstore.Config{
			Token:  cfg.GitHub.Token,
			Owner:  cfg.GitHub.StoreOwner,
			Repo:   cfg.GitHub.StoreRepo,
			Branch: cfg.GitHub.StoreBranch,
			Path:   cfg.GitHub.StorePath,
		}),
		auditSink: ghstore.NewSink(ghstore.SinkConfig{
			Token: cfg.GitHub.Token,
			Repo:  cfg.GitHub.AuditRepo,
			Issue: cfg.GitHub.AuditIssue,
		}),
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)

	router.GET("/doctors", h.ListDoctors)

	// Doctor area: own unavailability only.
	doctor := router.Group("", h.requireRole(auth.RoleDoctor))
	{
		doctor.GET("/unavailability", h.GetUnavailability)
		doctor.PUT("/unavailability", h.SaveUnavailability)
	}

	// Admin area: generation and history.
	admin := router.Group("", h.requireRole(auth.RoleAdmin))
	{
		admin.GET("/months", h.ListMonths)
		admin.POST("/months/select", h.SelectMonth)
		admin.POST("/generate", h.Generate)
		admin.GET("/download/:token", h.Download)
		admin.GET("/audit", h.ListAuditRuns)
	}
}

// session resolves the request's bearer token.
func (h *Handler) session(c *gin.Context) (auth.Session, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Session{}, false
	}
	return h.sessions.Get(strings.TrimPrefix(header, "Bearer "))
}

// requireRole gates a route group on an authenticated session. Admin
// sessions also pass doctor-gated routes (the admin can inspect the store).
func (h *Handler) requireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := h.session(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sessione non valida"})
			return
		}
		if sess.Role != role && sess.Role != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permessi insufficienti"})
			return
		}
		c.Set("session", sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) auth.Session {
	if v, ok := c.Get("session"); ok {
		if sess, ok := v.(auth.Session); ok {
			return sess
		}
	}
	return auth.Session{}
}
