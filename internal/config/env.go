// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ManuGH/reelfeed/internal/log"
	"github.com/rs/zerolog"
)

// Environment variable names.
const (
	EnvLogLevel         = "REELFEED_LOG_LEVEL"
	EnvListen           = "REELFEED_LISTEN"
	EnvCatalog          = "REELFEED_CATALOG"
	EnvPublicURL        = "REELFEED_PUBLIC_URL"
	EnvRateLimit        = "REELFEED_RATE_LIMIT"
	EnvFeedEndpoint     = "REELFEED_FEED_ENDPOINT"
	EnvFeedTimeout      = "REELFEED_FEED_TIMEOUT"
	EnvMaxBandwidth     = "REELFEED_MAX_BANDWIDTH"
	EnvNativeHLS        = "REELFEED_NATIVE_HLS"
	EnvEngineDisabled   = "REELFEED_ENGINE_DISABLED"
	EnvTick             = "REELFEED_TICK"
	EnvPlayerLogFile    = "REELFEED_LOG_FILE"
	EnvReachEndInterval = "REELFEED_REACH_END_INTERVAL"
)

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		logger.Debug().Str("key", key).Str("source", "environment").Msg("using environment variable")
		return v
	}
	return defaultValue
}

// ParseInt reads an integer from environment variable or returns default value.
// Unparseable values fall back to the default with a warning.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

// ParseFloat reads a float from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration reads a Go duration string (e.g. "5s") from the environment.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration)
}

// ParseBool reads a boolean (strconv.ParseBool syntax) from the environment.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	return parseEnvWithLogger(log.WithComponent("config"), key, defaultValue, parse)
}

func parseEnvWithLogger[T any](logger zerolog.Logger, key string, defaultValue T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}
