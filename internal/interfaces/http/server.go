// Package http provides the HTTP adapter for the approval engine. It is a
// thin layer that translates requests to engine and service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mwangaza-erp/approvalflow/internal/application/engine"
	"github.com/mwangaza-erp/approvalflow/internal/application/service"
	"github.com/mwangaza-erp/approvalflow/internal/reports"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config            ServerConfig
	httpServer        *http.Server
	router            *gin.Engine
	engine            *engine.Engine
	flowService       service.FlowService
	acceptanceService service.AcceptanceService
	voucher           *reports.VoucherGenerator
	logger            Logger
}

// NewServer creates a new HTTP server wired to the engine and services
func NewServer(
	config ServerConfig,
	eng *engine.Engine,
	flowService service.FlowService,
	acceptanceService service.AcceptanceService,
	voucher *reports.VoucherGenerator,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:            config,
		router:            router,
		engine:            eng,
		flowService:       flowService,
		acceptanceService: acceptanceService,
		voucher:           voucher,
		logger:            logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.engine, s.flowService, s.acceptanceService, s.voucher, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		// Entities and their lifecycle verbs
		api.POST("/entities", handlers.CreateEntity)
		api.GET("/entities", handlers.ListEntities)
		api.GET("/entities/:id", handlers.GetEntity)
		api.DELETE("/entities/:id", handlers.DeleteEntity)
		api.GET("/entities/:id/audit-trail", handlers.GetAuditTrail)
		api.GET("/entities/:id/voucher", handlers.DownloadVoucher)

		api.POST("/entities/:id/submit", handlers.SubmitEntity)
		api.POST("/entities/:id/approve", handlers.ApproveEntity)
		api.POST("/entities/:id/reject", handlers.RejectEntity)
		api.POST("/entities/:id/request-revision", handlers.RequestRevision)
		api.POST("/entities/:id/mark-paid", handlers.MarkPaid)
		api.POST("/entities/:id/cancel", handlers.CancelEntity)

		// Contract acceptance
		api.POST("/contracts/:id/acceptance/issue", handlers.IssueAcceptanceCode)
		api.POST("/contracts/:id/acceptance/verify", handlers.VerifyAcceptanceCode)

		// Flow administration
		api.GET("/flows", handlers.ListFlows)
		api.GET("/flows/:department", handlers.GetFlow)
		api.PUT("/flows/:department", handlers.UpsertFlow)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
