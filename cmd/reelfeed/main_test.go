// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Commands(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{name: "no args", args: nil, code: 2, stderr: "Usage:"},
		{name: "unknown", args: []string{"dance"}, code: 2, stderr: "Unknown command: dance"},
		{name: "help", args: []string{"help"}, code: 0, stdout: "reelfeed watch"},
		{name: "version", args: []string{"version"}, code: 0, stdout: "dev (commit: none"},
		{name: "config without subcommand", args: []string{"config"}, code: 2, stderr: "Usage:"},
		{name: "config validate without file", args: []string{"config", "validate"}, code: 2, stderr: "--file is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code)
			if tt.stdout != "" {
				assert.Contains(t, stdout.String(), tt.stdout)
			}
			if tt.stderr != "" {
				assert.Contains(t, stderr.String(), tt.stderr)
			}
		})
	}
}

func TestRun_ConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("logLevel: debug\nserver:\n  listenAddr: \":9090\"\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nonsense: true\n"), 0o600))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"config", "validate", "-f", good}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "configuration is valid")

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 1, run([]string{"config", "validate", "--file", bad}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Configuration error in "+bad)
}

func TestOpenLogOutput(t *testing.T) {
	w, closeFn, err := openLogOutput("")
	require.NoError(t, err)
	require.NotNil(t, w)
	closeFn()

	path := filepath.Join(t.TempDir(), "reelfeed.log")
	w, closeFn, err = openLogOutput(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	closeFn()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
