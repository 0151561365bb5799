package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "ollama", cfg.AIProvider)
	assert.Equal(t, "cvbuilder", cfg.JWTIssuer)
	assert.Len(t, cfg.JWTSecret, 64)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "cvbuilder.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(dir, "draft.json"), cfg.DraftPath())

	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSecretIsStableAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	first, err := Load(dir)
	require.NoError(t, err)
	second, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, first.JWTSecret, second.JWTSecret)
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("ai_provider", "anthropic"))
	assert.Equal(t, "anthropic", cfg.AIProvider)
	assert.Equal(t, dir, cfg.DataDir)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", reloaded.AIProvider)
	assert.Equal(t, "anthropic", reloaded.Get("ai_provider"))
}

func TestSetRejectsUnknownKey(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, cfg.Set("linkedin_password", "x"))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CVBUILDER_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestKeysAndSecrets(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "session_token")
	assert.IsNonDecreasing(t, keys)
	assert.True(t, IsSecret("openai_key"))
	assert.False(t, IsSecret("ai_provider"))
}
