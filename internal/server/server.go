package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dockpool/dockpool/internal/config"
	"github.com/dockpool/dockpool/internal/gateway"
	"github.com/dockpool/dockpool/internal/telemetry"
)

// Server owns the inbound HTTP surface and the collaborators it hands
// to the gateway.
type Server struct {
	cfg   *config.Config
	echo  *echo.Echo
	store *telemetry.Store
	sqlr  *gateway.SQLResolver
}

// New assembles the echo instance, the resolver the config asks for,
// the transport and the telemetry store, and binds the routes.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	var store *telemetry.Store
	if cfg.Telemetry.Enabled {
		var err error
		store, err = telemetry.Open(cfg.Telemetry.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open telemetry store: %w", err)
		}
		s.store = store
	}

	resolver, err := s.buildResolver()
	if err != nil {
		s.closeStores()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))

	g := gateway.New(resolver, gateway.NewHTTPTransport(), store)
	g.RegisterRoutes(e)
	e.GET("/healthz", healthz)

	s.echo = e
	return s, nil
}

func (s *Server) buildResolver() (gateway.Resolver, error) {
	switch s.cfg.Resolver.Mode {
	case config.ResolverModeSQL:
		r, err := gateway.NewSQLResolver(s.cfg.Resolver.DBPath)
		if err != nil {
			return nil, fmt.Errorf("sql resolver: %w", err)
		}
		s.sqlr = r
		return r, nil
	default:
		return gateway.NewStaticResolver(s.cfg.FleetEndpoints()), nil
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	log.Info("Starting gateway", "addr", addr, "resolver", s.cfg.Resolver.Mode)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the database
// handles.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.closeStores()
	return err
}

func (s *Server) closeStores() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Warn("Closing telemetry store failed", "err", err)
		}
	}
	if s.sqlr != nil {
		if err := s.sqlr.Close(); err != nil {
			log.Warn("Closing resolver db failed", "err", err)
		}
	}
}

func healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// requestLogger logs one line per inbound request. Credentials travel
// in headers, never in URLs, so logging the path is safe.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			log.Debug("Request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"elapsed", time.Since(started),
				"from", c.RealIP())
			return err
		}
	}
}
