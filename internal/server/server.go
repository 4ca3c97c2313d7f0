package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/pipeline"
)

// Server defaults.
const (
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 2 * time.Minute
	DefaultIdleTimeout     = time.Minute
	DefaultShutdownTimeout = 15 * time.Second
)

// Error details returned to clients.
const (
	detailShortTarget = "Target must be at least 3 characters long."
	detailRateLimited = "Rate limit exceeded. Try again later."
	detailInternal    = "Internal analysis engine error."
)

// Analyzer produces the report for a target. *pipeline.Engine implements it.
type Analyzer interface {
	Analyze(ctx context.Context, target string, opts ...pipeline.AnalyzeOption) (*model.Report, error)
}

// Observer receives HTTP events. *metrics.Metrics implements it.
type Observer interface {
	ObserveRequest(route string, code int, d time.Duration)
	ObserveRateLimited()
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
func (nopObserver) ObserveRateLimited()                       {}

// Config holds the listener settings.
type Config struct {
	// ListenAddress is the host:port to listen on.
	ListenAddress string
	// RateLimitInterval is the minimum time between two /analyze requests
	// from one client. Zero disables limiting.
	RateLimitInterval time.Duration
	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithObserver sets the HTTP observer.
func WithObserver(o Observer) Option {
	return func(s *Server) {
		s.observer = o
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// Server is the HTTP surface of the engine.
type Server struct {
	analyzer Analyzer
	config   Config
	logger   *slog.Logger
	observer Observer
	metrics  http.Handler
	limiter  *ClientLimiter
	router   *gin.Engine
}

// New creates a Server in front of analyzer.
func New(analyzer Analyzer, cfg Config, opts ...Option) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		analyzer: analyzer,
		config:   cfg,
		limiter:  NewClientLimiter(cfg.RateLimitInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		recoveryMiddleware(s.logger),
		requestIDMiddleware(),
		accessLogMiddleware(s.logger, s.observer),
	)

	router.GET("/healthz", s.handleHealth)
	router.GET("/analyze", rateLimitMiddleware(s.limiter, s.observer), s.handleAnalyze)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}
	return router
}

func errorBody(detail string) gin.H {
	return gin.H{"detail": detail}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	target := c.Query("target")
	if utf8.RuneCountInString(target) < pipeline.MinTargetLength {
		c.JSON(http.StatusBadRequest, errorBody(detailShortTarget))
		return
	}

	report, err := s.analyzer.Analyze(c.Request.Context(), target)
	if errors.Is(err, pipeline.ErrTargetTooShort) {
		c.JSON(http.StatusBadRequest, errorBody(detailShortTarget))
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody(detailInternal))
		return
	}

	data, err := report.Encode()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody(detailInternal))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	s.logger.Info("http server listening",
		"address", ln.Addr().String(),
		"rate_limit", s.config.RateLimitInterval,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
