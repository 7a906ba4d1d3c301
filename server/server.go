// Package server - HTTP-Grenze von vismatch
// Beinhaltet: Server-Struct, Router-Registrierung, Server-Start
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/7blacky7/vismatch/match"
	"github.com/7blacky7/vismatch/version"
)

// shutdownTimeout begrenzt das Warten auf laufende Requests beim Beenden
const shutdownTimeout = 10 * time.Second

func init() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// Config enthaelt die Einstellungen der HTTP-Grenze
type Config struct {
	Environment string

	// UploadDir nimmt hochgeladene Bilder auf, ausgeliefert unter /uploads
	UploadDir     string
	MaxUploadSize int64

	// RateLimitMax Requests pro RateLimitWindow und IP auf /api,
	// StrictRateLimitMax fuer Upload und Match. 0 deaktiviert das Limit.
	RateLimitMax       int
	RateLimitWindow    time.Duration
	StrictRateLimitMax int

	AllowedOrigins []string
}

// DefaultConfig gibt die Standardwerte zurueck
func DefaultConfig() Config {
	return Config{
		Environment:        "development",
		UploadDir:          "uploads",
		MaxUploadSize:      5 << 20,
		RateLimitMax:       100,
		RateLimitWindow:    15 * time.Minute,
		StrictRateLimitMax: 20,
	}
}

// Server verbindet die Routen mit der Match-Pipeline
type Server struct {
	cfg      Config
	addr     net.Addr
	pipeline *match.Pipeline
	general  *ipLimiter
	strict   *ipLimiter
}

// New erstellt einen Server
func New(cfg Config, p *match.Pipeline) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: p,
		general:  newIPLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		strict:   newIPLimiter(cfg.StrictRateLimitMax, cfg.RateLimitWindow),
	}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.MaxMultipartMemory = s.cfg.MaxUploadSize + 1<<20
	r.Use(
		gin.Recovery(),
		requestLogger(),
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "vismatch is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "vismatch is running") })
	r.GET("/health", s.HealthHandler)
	r.Static("/uploads", s.cfg.UploadDir)

	api := r.Group("/api", s.general.middleware(msgRateLimited))
	api.HEAD("/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	api.GET("/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	api.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "API is working", "timestamp": time.Now().UTC()})
	})

	// Matching
	api.POST("/match", s.strict.middleware(msgUploadLimited), s.MatchHandler)
	api.POST("/embed", s.EmbedHandler)

	// Katalog
	api.POST("/upload", s.strict.middleware(msgUploadLimited), s.UploadHandler)
	api.GET("/products", s.ListHandler)
	api.GET("/products/:id", s.ShowHandler)
	api.DELETE("/products/:id", s.DeleteHandler)

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "Route not found")
	})

	return r
}

// Serve startet den HTTP-Server und blockiert bis SIGINT/SIGTERM
func Serve(ln net.Listener, cfg Config, p *match.Pipeline) error {
	s := New(cfg, p)
	s.addr = ln.Addr()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	srvr := &http.Server{
		Handler:           s.GenerateRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, closing HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errc <- srvr.Shutdown(shutdownCtx)
	}()

	info := p.Provider().Info()
	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version),
		"environment", cfg.Environment, "provider", info.Name, "upload_dir", cfg.UploadDir)

	err := srvr.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-errc; err != nil {
		slog.Error("forced shutdown after timeout", "error", err)
	}

	if err := p.Store().Close(); err != nil {
		slog.Warn("close catalog", "error", err)
	}
	slog.Info("HTTP server closed")
	return nil
}
