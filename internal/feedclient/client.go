// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package feedclient fetches the clip list from the feed endpoint.
package feedclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/reelfeed/internal/clip"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 4 << 20

// Response is the wire shape of the feed endpoint.
type Response struct {
	Items []clip.Clip `json:"items"`
}

// Client performs the feed request.
type Client struct {
	endpoint string
	http     *http.Client
	logger   zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: xglog.WithComponent("feedclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Fetch returns the clips in server order. Entries without a title or play
// URL and repeated titles are dropped, since the title is the observation key.
func (c *Client) Fetch(ctx context.Context) ([]clip.Clip, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &FetchError{Sentinel: ErrUnavailable, URL: c.endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if id := xglog.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Sentinel: classifyTransport(ctx, err), URL: c.endpoint, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
		return nil, &FetchError{Sentinel: ErrUpstream, URL: c.endpoint, Status: res.StatusCode}
	}

	var payload Response
	dec := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, &FetchError{Sentinel: ErrTimeout, URL: c.endpoint, Status: res.StatusCode, Err: err}
		}
		return nil, &FetchError{Sentinel: ErrBadResponse, URL: c.endpoint, Status: res.StatusCode, Err: err}
	}
	if payload.Items == nil {
		return nil, &FetchError{Sentinel: ErrBadResponse, URL: c.endpoint, Status: res.StatusCode, Err: errors.New("missing items")}
	}

	return c.sanitize(payload.Items), nil
}

func (c *Client) sanitize(items []clip.Clip) []clip.Clip {
	out := make([]clip.Clip, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			c.logger.Warn().Err(err).
				Str(xglog.FieldEvent, "feed.item_dropped").
				Int("index", i).
				Msg("dropping invalid clip")
			continue
		}
		if _, dup := seen[it.ID()]; dup {
			c.logger.Warn().
				Str(xglog.FieldEvent, "feed.item_dropped").
				Str(xglog.FieldClipID, it.ID()).
				Msg("dropping duplicate clip")
			continue
		}
		seen[it.ID()] = struct{}{}
		out = append(out, it)
	}
	return out
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrUnavailable
}
