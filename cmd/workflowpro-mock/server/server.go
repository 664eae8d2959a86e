// Package server provides an importable mock of the WorkFlow Pro backend.
// It implements the auth, project, and health endpoints the harness talks
// to, plus the login and dashboard HTML pages the browser flows drive, with
// per-tenant in-memory stores enforcing isolation. E2E tests start and stop
// it programmatically without running main().
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds server configuration options.
type Config struct {
	Addr         string        // listen address (":0" for a random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout
	JWTSecret    string        // HS256 signing secret
	TokenTTL     time.Duration // access token lifetime

	// TwoFACodes maps user emails to their expected second-factor code.
	// Users absent from the map log in without a 2FA step.
	TwoFACodes map[string]string
}

// DefaultConfig returns a configuration suitable for testing: random port,
// one-hour tokens.
func DefaultConfig() Config {
	return Config{
		Addr:         ":0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		JWTSecret:    "workflowpro-mock-secret",
		TokenTTL:     time.Hour,
	}
}

// Server is the importable mock backend.
type Server struct {
	httpServer *http.Server
	store      *store
	cfg        Config
	logger     *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	addr     string
	running  bool
}

// NewServer creates a server with the given configuration. The server is
// not started until Start() is called.
func NewServer(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DefaultConfig().JWTSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	s := &Server{
		store:  newStore(),
		cfg:    cfg,
		logger: logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	s.routes(router)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	r.POST("/auth/login", s.handleLogin)
	r.POST("/auth/refresh", s.handleRefresh)

	r.GET("/login", s.handleLoginPage)
	r.GET("/dashboard", s.handleDashboardPage)
	r.GET("/settings", s.handleSettingsPage)

	api := r.Group("/api/v1", s.authRequired())
	{
		api.POST("/projects", s.handleCreateProject)
		api.GET("/projects", s.handleListProjects)
		api.GET("/projects/:id", s.handleGetProject)
		api.PUT("/projects/:id", s.handleUpdateProject)
		api.DELETE("/projects/:id", s.handleDeleteProject)
		api.POST("/projects/:id/members", s.handleAddMember)
		api.DELETE("/projects/:id/members/:email", s.handleRemoveMember)
	}
}

// Start begins listening and serving. It returns the actual listen address,
// which matters when the configured port is 0. Non-blocking; the server
// runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("mock server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("mock server listening", zap.String("addr", s.addr))
	return s.addr, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address, or "" when the server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// BaseURL returns the http root of the running server.
func (s *Server) BaseURL() string {
	return "http://" + s.Addr()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
