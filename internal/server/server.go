// Package server runs the optional HTTP status API alongside the scheduler.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/plugsunset/internal/config"
	"github.com/jmylchreest/plugsunset/internal/events"
	"github.com/jmylchreest/plugsunset/internal/http/handlers"
	"github.com/jmylchreest/plugsunset/internal/http/mw"
	"github.com/jmylchreest/plugsunset/internal/http/routes"
	"github.com/jmylchreest/plugsunset/internal/ws"
)

// Server serves the status API.
type Server struct {
	logger     *slog.Logger
	cfg        config.APIConfig
	router     chi.Router
	listener   net.Listener
	httpServer *http.Server
	hub        *ws.Hub
	wg         sync.WaitGroup
}

// New creates a server reporting status from provider. When bus is non-nil the
// events it carries are also streamed at /api/v1/events. It does not listen
// until Start.
func New(logger *slog.Logger, cfg config.APIConfig, provider handlers.StatusProvider, bus *events.Bus, info handlers.BuildInfo) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(mw.RequestLogging(logger, "/healthz"))
	router.Use(mw.RateLimitByIP(cfg.RequestsPerMinute))

	api := humachi.New(router, routes.NewHumaConfig(info.Version, ""))
	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionCheck(info),
		Status:       &handlers.StatusHandler{Status: provider},
	})

	s := &Server{
		logger: logger,
		cfg:    cfg,
		router: router,
	}

	// The stream is a plain chi route; huma does not model upgrades.
	if bus != nil {
		s.hub = ws.NewHub(logger, bus)
		var snapshot func() any
		if provider != nil {
			snapshot = func() any { return provider.Snapshot() }
		}
		router.Get("/api/v1/events", ws.Handler(s.hub, logger, snapshot))
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}
	s.listener = l
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("Starting HTTP API server", "address", l.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop disconnects stream clients and gracefully shuts the server down.
func (s *Server) Stop() {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "error", err)
	}
	s.wg.Wait()
}
