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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err) // explicit file must exist

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "gemini", cfg.DefaultEngine)
	assert.Equal(t, "English", cfg.DefaultLanguage)
	assert.Equal(t, 1200*time.Millisecond, cfg.AnalyzingDelay)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "deepseek-chat", cfg.Deepseek.Model)
	assert.Equal(t, 720*time.Hour, cfg.Cache.MaxAge)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("DATABASE_URL", "postgres://localhost/solvesnap")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.OpenAI.Model)
	assert.Equal(t, "postgres://localhost/solvesnap", cfg.Database.URL)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "8123"
default_language: German
analyzing_delay: 300ms
deepseek:
  model: deepseek-reasoner
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8123", cfg.Port)
	assert.Equal(t, "German", cfg.DefaultLanguage)
	assert.Equal(t, 300*time.Millisecond, cfg.AnalyzingDelay)
	assert.Equal(t, "deepseek-reasoner", cfg.Deepseek.Model)
	// Unset keys keep their defaults.
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
}
