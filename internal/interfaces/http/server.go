// Package http provides the HTTP server adapter for the application layer.
// It is a thin layer that translates HTTP requests into application service
// calls; all reconciliation logic lives behind the services.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/service"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	DefaultBranchID int64
	MaxUploadBytes  int64
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		DefaultBranchID: 1,
		MaxUploadBytes:  20 << 20,
	}
}

// Server is the HTTP server adapter.
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	uploads    *service.UploadService
	invoices   *service.InvoiceService
	orders     *service.OrderResolver
	reports    *service.ReportService
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services.
func NewServer(
	config ServerConfig,
	uploads *service.UploadService,
	invoices *service.InvoiceService,
	orders *service.OrderResolver,
	reports *service.ReportService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		uploads:  uploads,
		invoices: invoices,
		orders:   orders,
		reports:  reports,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.MaxMultipartMemory = s.config.MaxUploadBytes
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.uploads, s.invoices, s.orders, s.reports, s.config.DefaultBranchID, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		invoices := api.Group("/invoices")
		{
			invoices.POST("/extract", handlers.ExtractPreview)
			invoices.POST("/upload", handlers.UploadInvoice)
			invoices.POST("/from-form", handlers.CreateFromForm)
			invoices.GET("/recent", handlers.ListRecentInvoices)
			invoices.GET("/export", handlers.ExportRegister)
			invoices.GET("/:id", handlers.GetInvoice)
			invoices.POST("/:id/finalize", handlers.FinalizeInvoice)
			invoices.POST("/:id/cancel", handlers.CancelInvoice)
			invoices.GET("/:id/document", handlers.DownloadDocument)
		}

		api.GET("/orders/started", handlers.ListStartedOrders)
	}
}

// Start starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

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
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing).
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
