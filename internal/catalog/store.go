// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Store holds the current catalog and swaps it atomically on reload. A
// reload that fails validation keeps the previous catalog.
type Store struct {
	mu      sync.RWMutex
	current *Catalog
	path    string
	logger  zerolog.Logger

	debounce time.Duration
	wg       sync.WaitGroup
}

// Open loads path and returns a Store serving it.
func Open(path string, debounce time.Duration) (*Store, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Store{
		current:  c,
		path:     path,
		debounce: debounce,
		logger:   xglog.WithComponent("catalog"),
	}, nil
}

// Get returns the current catalog (thread-safe read).
func (s *Store) Get() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the file. On error the old catalog stays in place.
func (s *Store) Reload() error {
	c, err := Load(s.path)
	metrics.IncCatalogReload(err == nil)
	if err != nil {
		s.logger.Error().Err(err).
			Str(xglog.FieldEvent, "catalog.reload_failed").
			Str(xglog.FieldPath, s.path).
			Msg("catalog reload failed, keeping previous catalog")
		return fmt.Errorf("reload catalog: %w", err)
	}

	s.mu.Lock()
	old := s.current
	s.current = c
	s.mu.Unlock()

	s.logger.Info().
		Str(xglog.FieldEvent, "catalog.reloaded").
		Int("old_clips", old.Len()).
		Int("clips", c.Len()).
		Msg("catalog reloaded")
	return nil
}

// Watch reloads the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so that editors which replace the file
// by rename are picked up too.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch catalog dir: %w", err)
	}

	s.logger.Info().
		Str(xglog.FieldEvent, "catalog.watcher_started").
		Str(xglog.FieldPath, s.path).
		Msg("watching catalog for changes")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.watchLoop(ctx, watcher)
	}()
	return nil
}

// Wait blocks until the watcher goroutine has exited.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.path)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str(xglog.FieldEvent, "catalog.watcher_stopped").Msg("catalog watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.logger.Debug().
					Str(xglog.FieldEvent, "catalog.file_changed").
					Str("op", event.Op.String()).
					Msg("catalog file changed")
				timer.Reset(s.debounce)
			}

		case <-timer.C:
			_ = s.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error().Err(err).
				Str(xglog.FieldEvent, "catalog.watcher_error").
				Msg("catalog watcher error")
		}
	}
}
