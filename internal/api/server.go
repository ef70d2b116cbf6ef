// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the clip feed and the HLS playlists of the catalog.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/reelfeed/internal/api/middleware"
	"github.com/ManuGH/reelfeed/internal/catalog"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// CatalogSource returns the catalog to serve. catalog.Store satisfies it.
type CatalogSource interface {
	Get() *catalog.Catalog
}

// Config of the HTTP server.
type Config struct {
	ListenAddr string
	// PublicURL roots generated play URLs; empty derives it from each request.
	PublicURL     string
	RateLimit     int
	ShutdownGrace time.Duration
	Version       string
}

// Server is the catalog HTTP server.
type Server struct {
	cfg    Config
	source CatalogSource
	router chi.Router
	logger zerolog.Logger
}

func New(cfg Config, source CatalogSource) *Server {
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		source: source,
		logger: xglog.WithComponent("api"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: "reelfeed",
		EnableLogging:  true,
		RateLimit:      s.cfg.RateLimit,
	})
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/feed", s.handleFeed)
	r.Get("/hls/{id}/master.m3u8", s.handleMaster)
	r.Get("/hls/{id}/{variant}/index.m3u8", s.handleMedia)
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str(xglog.FieldEvent, "api.listening").
			Str("addr", ln.Addr().String()).
			Str("version", s.cfg.Version).
			Msg("catalog server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	s.logger.Info().Str(xglog.FieldEvent, "api.shutdown").Msg("shutting down catalog server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
