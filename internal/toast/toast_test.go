// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToaster_ExpiresAndOrders(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := New(WithClock(func() time.Time { return now }))

	tt.Error("Something went wrong!")
	now = now.Add(time.Second)
	tt.Info("muted")

	active := tt.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "muted", active[0].Message)
	assert.Equal(t, LevelError, active[1].Level)

	now = now.Add(3 * time.Second)
	active = tt.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "muted", active[0].Message)

	now = now.Add(time.Second)
	assert.Empty(t, tt.Active())
}

func TestWithDuration(t *testing.T) {
	now := time.Unix(0, 0)
	tt := New(WithDuration(time.Minute), WithDuration(0), WithClock(func() time.Time { return now }))
	tt.Error("x")
	now = now.Add(59 * time.Second)
	assert.Len(t, tt.Active(), 1)
}
