// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads reelfeed's configuration with precedence
// ENV > YAML file > defaults, and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/reelfeed/internal/validate"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultListenAddr   = ":8088"
	DefaultFeedEndpoint = "http://127.0.0.1:8088/api/feed"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	version    string
}

func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Load applies defaults, then the file (strictly parsed), then the
// environment, and validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{}
	setDefaults(&cfg)

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *AppConfig) {
	cfg.LogLevel = "info"
	cfg.Server = ServerConfig{
		ListenAddr:     DefaultListenAddr,
		CatalogPath:    "catalog.yaml",
		RateLimit:      600,
		ReloadDebounce: 300 * time.Millisecond,
		ShutdownGrace:  5 * time.Second,
	}
	cfg.Feed = FeedConfig{
		Endpoint: DefaultFeedEndpoint,
		Timeout:  10 * time.Second,
	}
	cfg.Player = PlayerConfig{
		ViewportHeight:   24,
		Gap:              0,
		Tick:             250 * time.Millisecond,
		NativeDuration:   15 * time.Second,
		ReachEndInterval: 2 * time.Second,
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields are an error.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parseFile(data)
}

func parseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if s := src.Server; s != nil {
		setString(&dst.Server.ListenAddr, s.ListenAddr)
		setString(&dst.Server.CatalogPath, s.CatalogPath)
		setString(&dst.Server.PublicURL, s.PublicURL)
		if s.RateLimit != nil {
			dst.Server.RateLimit = *s.RateLimit
		}
		if err := setDuration(&dst.Server.ReloadDebounce, "server.reloadDebounce", s.ReloadDebounce); err != nil {
			return err
		}
		if err := setDuration(&dst.Server.ShutdownGrace, "server.shutdownGrace", s.ShutdownGrace); err != nil {
			return err
		}
	}
	if f := src.Feed; f != nil {
		setString(&dst.Feed.Endpoint, f.Endpoint)
		if err := setDuration(&dst.Feed.Timeout, "feed.timeout", f.Timeout); err != nil {
			return err
		}
	}
	if p := src.Player; p != nil {
		if p.ViewportHeight != nil {
			dst.Player.ViewportHeight = *p.ViewportHeight
		}
		if p.Gap != nil {
			dst.Player.Gap = *p.Gap
		}
		if p.MaxBandwidth != nil {
			dst.Player.MaxBandwidth = *p.MaxBandwidth
		}
		if p.NativeHLS != nil {
			dst.Player.NativeHLS = *p.NativeHLS
		}
		if p.EngineDisabled != nil {
			dst.Player.EngineDisabled = *p.EngineDisabled
		}
		setString(&dst.Player.LogFile, p.LogFile)
		for _, d := range []struct {
			dst   *time.Duration
			field string
			raw   string
		}{
			{&dst.Player.Tick, "player.tick", p.Tick},
			{&dst.Player.NativeDuration, "player.nativeDuration", p.NativeDuration},
			{&dst.Player.ReachEndInterval, "player.reachEndInterval", p.ReachEndInterval},
		} {
			if err := setDuration(d.dst, d.field, d.raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)
	cfg.Server.ListenAddr = ParseString(EnvListen, cfg.Server.ListenAddr)
	cfg.Server.CatalogPath = ParseString(EnvCatalog, cfg.Server.CatalogPath)
	cfg.Server.PublicURL = ParseString(EnvPublicURL, cfg.Server.PublicURL)
	cfg.Server.RateLimit = ParseInt(EnvRateLimit, cfg.Server.RateLimit)
	cfg.Feed.Endpoint = ParseString(EnvFeedEndpoint, cfg.Feed.Endpoint)
	cfg.Feed.Timeout = ParseDuration(EnvFeedTimeout, cfg.Feed.Timeout)
	cfg.Player.MaxBandwidth = ParseInt(EnvMaxBandwidth, cfg.Player.MaxBandwidth)
	cfg.Player.NativeHLS = ParseBool(EnvNativeHLS, cfg.Player.NativeHLS)
	cfg.Player.EngineDisabled = ParseBool(EnvEngineDisabled, cfg.Player.EngineDisabled)
	cfg.Player.Tick = ParseDuration(EnvTick, cfg.Player.Tick)
	cfg.Player.LogFile = ParseString(EnvPlayerLogFile, cfg.Player.LogFile)
	cfg.Player.ReachEndInterval = ParseDuration(EnvReachEndInterval, cfg.Player.ReachEndInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	*dst = d
	return nil
}

// Validate checks the effective configuration and reports every bad field.
func Validate(cfg AppConfig) error {
	v := validate.New()
	v.OneOf("logLevel", cfg.LogLevel, []string{"trace", "debug", "info", "warn", "error", "disabled"})

	v.ListenAddr("server.listenAddr", cfg.Server.ListenAddr)
	v.NotEmpty("server.catalogPath", cfg.Server.CatalogPath)
	if cfg.Server.PublicURL != "" {
		v.URL("server.publicURL", cfg.Server.PublicURL, []string{"http", "https"})
	}
	v.NonNegative("server.rateLimit", cfg.Server.RateLimit)
	v.PositiveDuration("server.reloadDebounce", cfg.Server.ReloadDebounce)
	v.PositiveDuration("server.shutdownGrace", cfg.Server.ShutdownGrace)

	v.URL("feed.endpoint", cfg.Feed.Endpoint, []string{"http", "https"})
	v.PositiveDuration("feed.timeout", cfg.Feed.Timeout)

	v.PositiveFloat("player.viewportHeight", cfg.Player.ViewportHeight)
	if cfg.Player.Gap < 0 {
		v.AddError("player.gap", "must be >= 0", cfg.Player.Gap)
	}
	v.PositiveDuration("player.tick", cfg.Player.Tick)
	v.NonNegative("player.maxBandwidth", cfg.Player.MaxBandwidth)
	v.PositiveDuration("player.nativeDuration", cfg.Player.NativeDuration)
	v.PositiveDuration("player.reachEndInterval", cfg.Player.ReachEndInterval)

	return v.Err()
}
