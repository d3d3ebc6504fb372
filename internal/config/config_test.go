package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ServerAddr)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "./badger_data", cfg.BadgerDBPath)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.BrowserStealth)
	assert.Empty(t, cfg.TelegramBotToken)
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("NAVIGATION_TIMEOUT", "45s")
	t.Setenv("SETTLE_DELAY", "250ms")
	t.Setenv("BROWSER_STEALTH", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddr)
	assert.Equal(t, 45*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.True(t, cfg.BrowserStealth)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte("BADGERDB_PATH: /var/lib/frameshot\nBROWSER_BIN: /usr/bin/chromium\nGIN_MODE: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/frameshot", cfg.BadgerDBPath)
	assert.Equal(t, "/usr/bin/chromium", cfg.BrowserBin)
	assert.Equal(t, "debug", cfg.GinMode)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"NAVIGATION_TIMEOUT": "0s",
		"SETTLE_DELAY":       "-1s",
		"LOG_LEVEL":          "loud",
		"GIN_MODE":           "production",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}
