package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerWritesConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "push.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier line\n"), 0o644))

	var console bytes.Buffer
	log, closeLog, err := newLogger(zapcore.AddSync(&console), path, "info")
	require.NoError(t, err)

	log.Info("client connected", zap.String("token", "abc"))
	log.Debug("below level")
	require.NoError(t, closeLog())

	file, err := os.ReadFile(path)
	require.NoError(t, err)

	// The file is appended to, never truncated.
	assert.Contains(t, string(file), "earlier line\n")
	for _, out := range []string{string(file), console.String()} {
		assert.Contains(t, out, "client connected")
		assert.Contains(t, out, `"token": "abc"`)
		assert.NotContains(t, out, "below level")
	}
	assert.Regexp(t, `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\tINFO\tclient connected`, string(file))
}

func TestNewLoggerErrors(t *testing.T) {
	var console bytes.Buffer

	_, _, err := newLogger(zapcore.AddSync(&console), filepath.Join(t.TempDir(), "push.log"), "chatty")
	assert.Error(t, err)

	_, _, err = newLogger(zapcore.AddSync(&console), filepath.Join(t.TempDir(), "missing", "push.log"), "info")
	assert.Error(t, err)
}
