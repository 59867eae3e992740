package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/api/middleware"
	"github.com/feral-file/ff-ingestion/internal/logger"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RouteRegistrar mounts a component's routes on the router
type RouteRegistrar func(router *gin.Engine)

// Server wraps the HTTP server
type Server struct {
	config     Config
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	routes     []RouteRegistrar
	httpServer *http.Server
}

// New creates a new HTTP server exposing /metrics from gatherer plus the registered routes
func New(cfg Config, registerer prometheus.Registerer, gatherer prometheus.Gatherer, routes ...RouteRegistrar) *Server {
	return &Server{
		config:     cfg,
		registerer: registerer,
		gatherer:   gatherer,
		routes:     routes,
	}
}

// Handler builds the gin router with middleware and all routes
func (s *Server) Handler() http.Handler {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(s.registerer))
	router.Use(middleware.SetupCORS())

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	for _, register := range s.routes {
		register(router)
	}

	return router
}

// Start initializes and starts the HTTP server; it blocks until the server stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting HTTP server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}

// HealthRoutes mounts a bare /healthz endpoint for processes that serve no API
func HealthRoutes(service string) RouteRegistrar {
	return func(router *gin.Engine) {
		router.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": service,
			})
		})
	}
}
