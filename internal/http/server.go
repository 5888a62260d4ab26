// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credvault/internal/config"
	credentialHTTP "github.com/allisson/credvault/internal/credential/http"
	"github.com/allisson/credvault/internal/metrics"
)

// EncryptionProbe reports whether the credential cipher has a usable key.
type EncryptionProbe interface {
	IsConfigured() bool
}

// Server represents the HTTP server.
type Server struct {
	db         *sql.DB
	encryption EncryptionProbe
	server     *http.Server
	logger     *slog.Logger
	router     *gin.Engine
}

// NewServer creates a new HTTP server.
func NewServer(
	db *sql.DB,
	encryption EncryptionProbe,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:         db,
		encryption: encryption,
		logger:     logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	cryptoHandler *credentialHTTP.CryptoHandler,
	credentialHandler *credentialHTTP.CredentialHandler,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	// Registered ahead of Recovery so recovered panics are logged as 500s.
	router.Use(CustomLoggerMiddleware(s.logger))
	router.Use(gin.Recovery())

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	v1.POST("/encrypt", cryptoHandler.EncryptHandler)
	v1.POST("/decrypt", cryptoHandler.DecryptHandler)

	credentials := v1.Group("/credentials")
	{
		credentials.GET("", credentialHandler.ListHandler)
		credentials.PUT("/:name", credentialHandler.PutHandler)
		credentials.GET("/:name", credentialHandler.GetHandler)
		credentials.GET("/:name/envelope", credentialHandler.GetEnvelopeHandler)
		credentials.DELETE("/:name", credentialHandler.DeleteHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized, call SetupRouter first")
	}

	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database answers and the encryption key is usable.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{
		"database":   "ok",
		"encryption": "ok",
	}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		}
	}

	if s.encryption == nil || !s.encryption.IsConfigured() {
		components["encryption"] = "not_configured"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
