package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12*time.Second, cfg.PlacesTimeout)
	assert.Equal(t, 10*time.Second, cfg.TravelTimeout)
	assert.Equal(t, 12*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.PostgresURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRAVEL_TIMEOUT", "3s")
	t.Setenv("NARRATIVE_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 3*time.Second, cfg.TravelTimeout)
	assert.True(t, cfg.NarrativeEnabled())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nSTAYFLO_UNUSED=1\n"), 0o600))
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("STAYFLO_UNUSED")
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("NARRATIVE_PROVIDER", "carrier-pigeon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
