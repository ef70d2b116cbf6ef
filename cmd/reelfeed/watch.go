// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/reelfeed/internal/clip"
	"github.com/ManuGH/reelfeed/internal/config"
	"github.com/ManuGH/reelfeed/internal/eventloop"
	"github.com/ManuGH/reelfeed/internal/feed"
	"github.com/ManuGH/reelfeed/internal/feedclient"
	"github.com/ManuGH/reelfeed/internal/hls"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/player"
	"github.com/ManuGH/reelfeed/internal/toast"
	"github.com/ManuGH/reelfeed/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func runWatch(args []string, stderr io.Writer) int {
	cfg, code := loadConfig("watch", args, stderr)
	if code != 0 {
		return code
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	logOut, closeLog, err := openLogOutput(cfg.Player.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  logOut,
		Service: "reelfeed",
		Version: version,
	})
	logger := xglog.WithComponent("watch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := eventloop.New()
	engine := hls.NewEngine(hls.Options{
		Loop:         queue,
		Timeout:      cfg.Feed.Timeout,
		MaxBandwidth: cfg.Player.MaxBandwidth,
		Disabled:     cfg.Player.EngineDisabled,
	})
	toasts := toast.New()
	client := feedclient.New(cfg.Feed.Endpoint, feedclient.WithTimeout(cfg.Feed.Timeout))
	logger.Info().
		Str(xglog.FieldEvent, "watch.start").
		Str(xglog.FieldURL, client.Endpoint()).
		Msg("watching feed")

	p := player.New(player.Options{
		Source:         feedclient.NewLoader(client, toasts),
		Loop:           queue,
		Engine:         engine,
		NewElement:     newElement(cfg.Player),
		ViewportHeight: cfg.Player.ViewportHeight,
		Gap:            cfg.Player.Gap,
		Pager:          feed.NewThrottledPager(endOfFeed(), cfg.Player.ReachEndInterval),
		Toasts:         toasts,
	})

	model := tui.New(ctx, tui.Options{
		Player: p,
		Queue:  queue,
		Tick:   cfg.Player.Tick,
		Nudge:  cfg.Player.ViewportHeight / 4,
	})
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := prog.Run()

	closeErr := p.Close()
	queue.Close()
	engine.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		logger.Error().Err(runErr).Msg("terminal UI failed")
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}
	if closeErr != nil {
		logger.Warn().Err(closeErr).Msg("teardown reported errors")
	}
	return 0
}

func newElement(cfg config.PlayerConfig) func(clip.Clip) media.Element {
	nativeDuration := cfg.NativeDuration.Seconds()
	return func(clip.Clip) media.Element {
		return media.NewSim(
			media.WithNativeHLS(cfg.NativeHLS),
			media.WithNativeDuration(func(string) float64 { return nativeDuration }),
		)
	}
}

// endOfFeed is the infinite-scroll hook. The catalog is served in one page,
// so a load-more request is only logged.
func endOfFeed() feed.Pager {
	logger := xglog.WithComponent("pager")
	return feed.PagerFuncs{
		More: func() bool { return true },
		End: func() {
			logger.Info().Str(xglog.FieldEvent, "feed.load_more").Msg("load more requested")
		},
	}
}

func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	// #nosec G304 -- log path is operator supplied
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
