// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feedclient

import (
	"context"

	"github.com/ManuGH/reelfeed/internal/clip"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/metrics"
	"github.com/ManuGH/reelfeed/internal/toast"
)

// FailureMessage is the only text a user sees when the feed cannot be loaded.
const FailureMessage = "Something went wrong!"

// Fetcher returns the clip list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]clip.Clip, error)
}

// Loader turns fetch failures into a toast and an empty feed. It never retries.
type Loader struct {
	fetcher Fetcher
	toasts  toast.Publisher
}

func NewLoader(f Fetcher, toasts toast.Publisher) *Loader {
	return &Loader{fetcher: f, toasts: toasts}
}

// Load never fails; the error is returned only for logging by callers.
func (l *Loader) Load(ctx context.Context) ([]clip.Clip, error) {
	logger := xglog.WithComponentFromContext(ctx, "feedclient")
	clips, err := l.fetcher.Fetch(ctx)
	metrics.IncFeedFetch(err == nil, Reason(err))
	if err != nil {
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "feed.fetch_failed").
			Str(xglog.FieldReason, Reason(err)).
			Msg("feed fetch failed")
		if l.toasts != nil {
			l.toasts.Error(FailureMessage)
		}
		return []clip.Clip{}, err
	}
	logger.Info().
		Str(xglog.FieldEvent, "feed.fetched").
		Int("clips", len(clips)).
		Msg("feed fetched")
	return clips, nil
}
