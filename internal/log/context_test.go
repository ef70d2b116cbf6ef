// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextIDs_RoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithClipID(ctx, "clip-a")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "clip-a", ClipIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, ClipIDFromContext(nil))
}

func TestWithContext_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithClipID(ContextWithRequestID(context.Background(), "req-9"), "clip-z")
	l := WithContext(ctx, base)
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-9", entry[FieldRequestID])
	assert.Equal(t, "clip-z", entry[FieldClipID])
}

func TestWithContext_NoFieldsReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	l := WithContext(context.Background(), base)
	l.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasReq := entry[FieldRequestID]
	assert.False(t, hasReq)
}

func TestConfigure_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "reelfeed-test", Version: "v0"})
	t.Cleanup(func() { Configure(Config{Output: &bytes.Buffer{}}) })

	l := WithComponent("playback")
	l.Debug().Str(FieldEvent, "test.event").Msg("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "playback", entry[FieldComponent])
	assert.Equal(t, "reelfeed-test", entry["service"])
	assert.Equal(t, "v0", entry["version"])
	assert.Equal(t, "test.event", entry[FieldEvent])
}
