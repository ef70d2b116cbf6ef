// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, "clips:\n  - title: a\n    duration: 5\n")

	s, err := Open(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Get().Len())

	writeFile(t, path, "clips:\n  - title: a\n    duration: 5\n  - title: b\n    duration: 7\n")
	require.NoError(t, s.Reload())
	assert.Equal(t, 2, s.Get().Len())

	writeFile(t, path, "clips:\n  - title: a\n    duration: -1\n")
	require.Error(t, s.Reload())
	assert.Equal(t, 2, s.Get().Len())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.yaml"), 0)
	assert.Error(t, err)
}

func TestStore_WatchPicksUpChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, "clips:\n  - title: a\n    duration: 5\n")
	s, err := Open(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Watch(ctx))

	writeFile(t, path, "clips:\n  - title: a\n    duration: 5\n  - title: b\n    duration: 7\n")
	assert.Eventually(t, func() bool { return s.Get().Len() == 2 }, 5*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	writeFile(t, filepath.Join(filepath.Dir(path), "other.yaml"), "garbage: [")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, s.Get().Len())

	cancel()
	s.Wait()
}
