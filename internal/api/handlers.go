// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/ManuGH/reelfeed/internal/catalog"
	"github.com/ManuGH/reelfeed/internal/clip"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/go-chi/chi/v5"
)

type feedResponse struct {
	Items []clip.Clip `json:"items"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c := s.source.Get()
	if c == nil {
		writeServiceUnavailable(w, "catalog not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clips": c.Len(), "version": s.cfg.Version})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	c := s.source.Get()
	if c == nil {
		writeServiceUnavailable(w, "catalog not loaded")
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{Items: c.Clips(s.baseURL(r))})
}

func (s *Server) handleMaster(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writePlaylist(w, catalog.MasterPlaylist(e))
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	variant, err := url.PathUnescape(chi.URLParam(r, "variant"))
	if err != nil {
		writeNotFound(w, "bad variant")
		return
	}
	body, err := catalog.MediaPlaylist(e, variant)
	if errors.Is(err, catalog.ErrVariantNotFound) {
		writeNotFound(w, "unknown variant")
		return
	}
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(xglog.FieldEvent, "api.playlist_failed").Msg("media playlist failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	writePlaylist(w, body)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (catalog.Entry, bool) {
	c := s.source.Get()
	if c == nil {
		writeServiceUnavailable(w, "catalog not loaded")
		return catalog.Entry{}, false
	}
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "bad clip id")
		return catalog.Entry{}, false
	}
	e, ok := c.Lookup(id)
	if !ok {
		writeNotFound(w, "unknown clip")
		return catalog.Entry{}, false
	}
	return e, true
}

// baseURL is the configured public URL or the scheme and host the client used.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd == "http" || fwd == "https" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
