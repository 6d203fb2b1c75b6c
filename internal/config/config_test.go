package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "one-inflated", cfg.Model)
	assert.Equal(t, "bfgs", cfg.Method)
	assert.Equal(t, "logit", cfg.Link)
	assert.Equal(t, 1e-6, cfg.GradientThreshold)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ONEINF_DB", "/tmp/fits.db")
	t.Setenv("ONEINF_METHOD", "newton")
	t.Setenv("ONEINF_WORKERS", "3")
	t.Setenv("ONEINF_LINK", "probit")
	t.Setenv("ONEINF_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fits.db", cfg.DB)
	assert.Equal(t, "newton", cfg.Method)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "probit", cfg.Link)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ONEINF_WORKERS", "many")
	_, err := Load()
	assert.Error(t, err)

	_, err = Config{LogLevel: "loud"}.Level()
	assert.Error(t, err)
}
