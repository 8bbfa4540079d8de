package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/pageza/nutrition-engine/backend/config"
	"github.com/pageza/nutrition-engine/backend/internal/api"
	"github.com/pageza/nutrition-engine/backend/internal/database"
	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/middleware"
)

const (
	serviceName     = "nutrition-engine"
	shutdownTimeout = 10 * time.Second
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	log    *logger.Logger
}

// New builds the router with tracing, CORS, error rendering and the v1 API.
// db may be nil, in which case /health only reports liveness.
func New(cfg *config.Config, db *gorm.DB, deps api.Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	router := gin.New()
	router.Use(
		otelgin.Middleware(serviceName),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.ErrorHandler(log),
	)

	s := &Server{
		router: router,
		db:     db,
		log:    log,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	router.GET("/health", s.health)
	api.SetupAPI(router.Group("/api/v1"), deps)
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, s.db); err != nil {
			s.log.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
