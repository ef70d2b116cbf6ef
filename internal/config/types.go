// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the effective, validated configuration.
type AppConfig struct {
	LogLevel string
	Version  string

	Server ServerConfig
	Feed   FeedConfig
	Player PlayerConfig
}

// ServerConfig drives `reelfeed serve`.
type ServerConfig struct {
	ListenAddr  string
	CatalogPath string
	// PublicURL is prepended to generated play URLs. Empty: derived from the request.
	PublicURL string
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
	// ReloadDebounce coalesces bursts of catalog file events.
	ReloadDebounce time.Duration
	ShutdownGrace  time.Duration
}

// FeedConfig configures the feed fetch.
type FeedConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// PlayerConfig drives `reelfeed watch`.
type PlayerConfig struct {
	ViewportHeight float64
	Gap            float64
	Tick           time.Duration
	MaxBandwidth   int
	NativeHLS      bool
	EngineDisabled bool
	// NativeDuration is assumed for natively played files whose length is unknown.
	NativeDuration time.Duration
	// ReachEndInterval throttles infinite-scroll triggers.
	ReachEndInterval time.Duration
	LogFile          string
}

// FileConfig is the on-disk YAML shape. Durations are Go duration strings.
type FileConfig struct {
	LogLevel string            `yaml:"logLevel,omitempty"`
	Server   *FileServerConfig `yaml:"server,omitempty"`
	Feed     *FileFeedConfig   `yaml:"feed,omitempty"`
	Player   *FilePlayerConfig `yaml:"player,omitempty"`
}

type FileServerConfig struct {
	ListenAddr     string `yaml:"listenAddr,omitempty"`
	CatalogPath    string `yaml:"catalogPath,omitempty"`
	PublicURL      string `yaml:"publicURL,omitempty"`
	RateLimit      *int   `yaml:"rateLimit,omitempty"`
	ReloadDebounce string `yaml:"reloadDebounce,omitempty"`
	ShutdownGrace  string `yaml:"shutdownGrace,omitempty"`
}

type FileFeedConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

type FilePlayerConfig struct {
	ViewportHeight   *float64 `yaml:"viewportHeight,omitempty"`
	Gap              *float64 `yaml:"gap,omitempty"`
	Tick             string   `yaml:"tick,omitempty"`
	MaxBandwidth     *int     `yaml:"maxBandwidth,omitempty"`
	NativeHLS        *bool    `yaml:"nativeHLS,omitempty"`
	EngineDisabled   *bool    `yaml:"engineDisabled,omitempty"`
	NativeDuration   string   `yaml:"nativeDuration,omitempty"`
	ReachEndInterval string   `yaml:"reachEndInterval,omitempty"`
	LogFile          string   `yaml:"logFile,omitempty"`
}
