package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handler registers routes on the server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// Option configures Server.
type Option func(*Config)

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Gatherer     prometheus.Gatherer
}

// Server wraps the Echo HTTP server.
type Server struct {
	echo   *echo.Echo
	config *Config
	log    zerolog.Logger
	errCh  chan error
}

// New creates a server with recovery and request logging, serving h and /metrics.
func New(h Handler, log zerolog.Logger, opts ...Option) *Server {
	cfg := &Config{
		Host:         "0.0.0.0",
		Port:         8501,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		Gatherer:     prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log = log.With().Str("component", "http").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(Recover(log))
	e.Use(RequestLogging(log))

	if h != nil {
		h.RegisterRoutes(e)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	return &Server{echo: e, config: cfg, log: log, errCh: make(chan error, 1)}
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start listens in the background. Listen failures are reported on Err.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.Addr()).Msg("http server listening")
		if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server error")
			s.errCh <- err
		}
	}()
}

// Err delivers a fatal listen error.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// WithHost sets the server host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

// WithPort sets the server port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) {
		c.Gatherer = g
	}
}
