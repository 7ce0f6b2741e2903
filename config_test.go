package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg := loadConfigFile(filepath.Join(t.TempDir(), "nope.json"))

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 30, cfg.HistoryDays)
	assert.True(t, cfg.IsNotifyOnDrop())
	assert.Greater(t, cfg.WindowWidth, 0)
	assert.Greater(t, cfg.WindowHeight, 0)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	off := false
	in := &AppConfig{
		LogLevel:     "debug",
		WindowWidth:  800,
		WindowHeight: 600,
		HistoryDays:  7,
		NotifyOnDrop: &off,
	}
	require.NoError(t, saveConfigFile(in, path))

	out := loadConfigFile(path)
	assert.Equal(t, "debug", out.LogLevel)
	assert.Equal(t, 800, out.WindowWidth)
	assert.Equal(t, 600, out.WindowHeight)
	assert.Equal(t, 7, out.HistoryDays)
	assert.False(t, out.IsNotifyOnDrop())
}

func TestLoadConfigInvalidJSONFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg := loadConfigFile(path)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigRepairsBadSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"windowWidth":-5,"windowHeight":0,"historyDays":0}`), 0644))

	cfg := loadConfigFile(path)
	assert.Greater(t, cfg.WindowWidth, 0)
	assert.Greater(t, cfg.WindowHeight, 0)
	assert.Greater(t, cfg.HistoryDays, 0)
}
