package server

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/rlicordari/turni-autogen-experimental/internal/api"
	"github.com/rlicordari/turni-autogen-experimental/internal/config"
	"github.com/rlicordari/turni-autogen-experimental/internal/store"
)

//go:embed all:static
var staticFiles embed.FS

// Server is the local HTTP server: JSON API plus the embedded frontend.
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
}

// NewServer builds the server from configuration.
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "turni.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		api:    api.NewHandler(cfg, sqliteStore, dataDir),
	}

	s.setupRoutes(devMode)

	return s
}

func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// Dev mode: proxy to the frontend dev server.
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	sub, _ := fs.Sub(staticFiles, "static")

	s.router.GET("/", func(c *gin.Context) {
		data, _ := fs.ReadFile(sub, "index.html")
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})

	// SPA fallback
	s.router.NoRoute(func(c *gin.Context) {
		data, _ := fs.ReadFile(sub, "index.html")
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the underlying store.
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore exposes the store for tests.
func (s *Server) GetStore() *store.Store {
	return s.store
}
