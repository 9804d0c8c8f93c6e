// Package server wires the gin router, middleware and REST handlers
// into an HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/api/middleware"
	"github.com/petpad-xyz/launchpad/internal/api/rest"
	"github.com/petpad-xyz/launchpad/internal/ledger"
	"github.com/petpad-xyz/launchpad/internal/logger"
	"github.com/petpad-xyz/launchpad/internal/providers/clanker"
	"github.com/petpad-xyz/launchpad/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// PublicDir, when set, is served statically under /images for the
	// filesystem asset provider
	PublicDir string
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	ledger     *ledger.Ledger
	deployer   clanker.Deployer
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, st store.Store, l *ledger.Ledger, deployer clanker.Deployer) *Server {
	return &Server{
		config:   cfg,
		store:    st,
		ledger:   l,
		deployer: deployer,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Create REST handler
	restHandler := rest.NewHandler(s.ledger, s.store, s.deployer)

	// Setup REST routes
	rest.SetupRoutes(router, restHandler)

	// Serve generated images when the filesystem asset provider is active
	if s.config.PublicDir != "" {
		router.Static("/images", s.config.PublicDir)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
