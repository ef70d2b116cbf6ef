// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/reelfeed/internal/api"
	"github.com/ManuGH/reelfeed/internal/catalog"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"golang.org/x/sync/errgroup"
)

func runServe(args []string, stderr io.Writer) int {
	cfg, code := loadConfig("serve", args, stderr)
	if code != 0 {
		return code
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stdout,
		Service: "reelfeed",
		Version: version,
	})
	logger := xglog.WithComponent("serve")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := catalog.Open(cfg.Server.CatalogPath, cfg.Server.ReloadDebounce)
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldPath, cfg.Server.CatalogPath).Msg("failed to load catalog")
		return 1
	}

	srv := api.New(api.Config{
		ListenAddr:    cfg.Server.ListenAddr,
		PublicURL:     cfg.Server.PublicURL,
		RateLimit:     cfg.Server.RateLimit,
		ShutdownGrace: cfg.Server.ShutdownGrace,
		Version:       version,
	}, store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := store.Watch(gctx); err != nil {
			return fmt.Errorf("catalog watcher: %w", err)
		}
		<-gctx.Done()
		store.Wait()
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return 1
	}
	logger.Info().Str(xglog.FieldEvent, "serve.stopped").Msg("server stopped")
	return 0
}
