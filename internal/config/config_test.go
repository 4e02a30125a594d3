package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 20, cfg.HistoryWindow)
	assert.Equal(t, "structured", cfg.PromptMode)
	assert.Equal(t, DefaultPersona, cfg.Persona)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_SSLMODE", "disable")
	t.Setenv("HISTORY_WINDOW", "5")
	t.Setenv("PROMPT_MODE", "flattened")
	t.Setenv("PERSONA", "You are a test coach.")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.HistoryWindow)
	assert.Equal(t, "flattened", cfg.PromptMode)
	assert.Equal(t, "You are a test coach.", cfg.Persona)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "port=6432")
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}

func TestLoad_RejectsBadPromptMode(t *testing.T) {
	t.Setenv("PROMPT_MODE", "verbose")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveWindow(t *testing.T) {
	t.Setenv("HISTORY_WINDOW", "0")

	_, err := Load()
	require.Error(t, err)
}
