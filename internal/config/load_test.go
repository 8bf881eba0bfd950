package config

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, mode.Classical, cfg.Crypto.Mode)
	assert.Equal(t, mode.Classical, cfg.Crypto.MinimumMode)
	assert.True(t, cfg.Crypto.AllowAutoUpgrade)
	assert.False(t, cfg.Crypto.AdaptiveMode)
	assert.Equal(t, 64, cfg.Inbox.ReplayWindow)
	assert.Zero(t, cfg.Inbox.EnvelopeTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
crypto:
  mode: hybrid
  minimum_mode: Hybrid
  allow_auto_upgrade: false
  adaptive_mode: true
inbox:
  replay_window: 128
  envelope_ttl: 24h
log:
  level: debug
  format: json
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, mode.Hybrid, cfg.Crypto.Mode)
	assert.Equal(t, mode.Hybrid, cfg.Crypto.MinimumMode)
	assert.False(t, cfg.Crypto.AllowAutoUpgrade)
	assert.True(t, cfg.Crypto.AdaptiveMode)
	assert.Equal(t, 128, cfg.Inbox.ReplayWindow)
	assert.Equal(t, 24*time.Hour, cfg.Inbox.EnvelopeTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
crypto:
  mode: hybrid
  minimum_mode: classical
`)
	t.Setenv("NANO_CRYPTO_MODE", "pq")
	t.Setenv("NANO_INBOX_REPLAY_WINDOW", "16")

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, mode.Quantum, cfg.Crypto.Mode)
	assert.Equal(t, 16, cfg.Inbox.ReplayWindow)
}

func TestLoad_PolicyViolation(t *testing.T) {
	path := writeConfig(t, `
crypto:
  mode: classical
  minimum_mode: hybrid
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cryptoerrors.ErrModePolicyViolation))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", "crypto:\n  mode: rsa\n"},
		{"replay window zero", "inbox:\n  replay_window: 0\n"},
		{"replay window too large", "inbox:\n  replay_window: 100000\n"},
		{"negative ttl", "inbox:\n  envelope_ttl: -1h\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"bad yaml", "crypto: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogConfig_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("mode", "Hybrid").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"mode":"Hybrid"`)

	_, err = LogConfig{Level: "nope"}.Logger(&buf)
	assert.Error(t, err)
}
