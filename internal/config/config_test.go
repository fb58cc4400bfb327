package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[journal]\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "journal.db"), cfg.Journal.DatabasePath)
	assert.Equal(t, "default", cfg.Journal.UserID)
	assert.True(t, cfg.UI.ColorEnabled, "colors default on when [ui] is absent")
	assert.False(t, cfg.HasBroker())
}

func TestLoadColorDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[ui]\ncolor_enabled = false\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.UI.ColorEnabled)
}

func TestLoadMissingConfigCreatesTemplate(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created template")

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[journal]")
}

func TestValidateBridgeURL(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	cfg.Broker.BridgeURL = "https://bridge.example.com"
	require.NoError(t, cfg.Validate())

	cfg.Broker.BridgeURL = "bridge.example.com"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)
}

func TestCredentialsOptional(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[journal]\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Credentials.CTrader.ClientID)
}

func TestCredentialsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[journal]\n")
	t.Setenv("CTRADER_CLIENT_ID", "env-app-id")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-app-id", cfg.Credentials.CTrader.ClientID)
}
