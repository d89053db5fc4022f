package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
)

// Server represents the HTTP server
type Server struct {
	engine             *gin.Engine
	httpServer         *http.Server
	cfg                *config.Config
	rateLimiters       *sync.Map
	cleanupInitialized sync.Once
	cleanupStop        chan struct{}
	stopOnce           sync.Once

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server listening on the configured address
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}

	engine := gin.New()

	readTimeout := cfg.Server.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}
	maxHeaderBytes := cfg.Server.MaxHeaderBytes
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = 1 << 20 // 1 MB
	}

	return &Server{
		engine:       engine,
		cfg:          cfg,
		rateLimiters: &sync.Map{},
		cleanupStop:  make(chan struct{}),
		dependencies: &types.Dependencies{Config: cfg},
		httpServer: &http.Server{
			Addr:           net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:        engine,
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			IdleTimeout:    30 * time.Second,
			MaxHeaderBytes: maxHeaderBytes,
		},
	}
}

// SetDependencies sets all handler dependencies
func (s *Server) SetDependencies(deps *types.Dependencies) {
	if deps.Config == nil {
		deps.Config = s.cfg
	}
	s.dependencies = deps
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	return nil
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	if s.cfg.Security.EnableRecovery {
		s.engine.Use(gin.Recovery())
	}

	s.engine.Use(RequestLogger())

	if s.cfg.Security.EnableCORS {
		s.engine.Use(CORS(s.cfg.Security))
	}

	maxUpload := s.cfg.Server.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	s.engine.Use(RequestSizeLimitWithSize(maxUpload))
}

// setupRoutes delegates to the main route registration
func (s *Server) setupRoutes() error {
	return RegisterRoutes(s.engine, s.dependencies, s.rateLimiters, s.cleanupStop, &s.cleanupInitialized)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the rate limiter cleanup goroutine
	s.stopOnce.Do(func() { close(s.cleanupStop) })

	return s.httpServer.Shutdown(ctx)
}
