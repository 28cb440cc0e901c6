package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.True(t, cfg.IsDesktopEnabled())
	assert.Equal(t, 30*time.Second, cfg.HealthCheckInterval())
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout())
	assert.Equal(t, time.Duration(0), cfg.IdleTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.SettleDelay())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"daemon":{"healthCheckInterval":"10s"},"notifications":{"desktop":{"enabled":true,"sound":false}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HealthCheckInterval())
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout())
	assert.False(t, cfg.Notifications.Desktop.Sound)
	assert.Equal(t, 1.0, cfg.Notifications.Desktop.Volume)
	assert.Equal(t, 30, cfg.Notifications.Desktop.TimeoutSeconds)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CN_ICONS", "/opt/icons")
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"notifications":{"desktop":{"enabled":true,"appIcon":"${CN_ICONS}/claude.png"}},
		"statuses":{"idle_prompt":{"sound":"${CN_ICONS}/ding.wav"}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/icons/claude.png", cfg.Notifications.Desktop.AppIcon)

	sound, ok := cfg.SoundOverride("idle_prompt")
	assert.True(t, ok)
	assert.Equal(t, "/opt/icons/ding.wav", sound)

	_, ok = cfg.SoundOverride("permission_prompt")
	assert.False(t, ok)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{not json`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"volume too high", func(c *Config) { c.Notifications.Desktop.Volume = 1.5 }, true},
		{"negative volume", func(c *Config) { c.Notifications.Desktop.Volume = -0.1 }, true},
		{"bad interval", func(c *Config) { c.Daemon.HealthCheckInterval = "soon" }, true},
		{"zero interval", func(c *Config) { c.Daemon.HealthCheckInterval = "0s" }, true},
		{"negative settle", func(c *Config) { c.Focus.SettleDelay = "-1ms" }, true},
		{"idle timeout set", func(c *Config) { c.Daemon.IdleTimeout = "10m" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Daemon.IdleTimeout = "15m"
	cfg.Logging.Level = "debug"

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, loaded.IdleTimeout())
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestFocusConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	cfg := DefaultConfig()

	path, err := cfg.FocusConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/xdg/claude-notifier/focus.json", path)

	cfg.Focus.ConfigPath = "/custom/focus.json"
	path, err = cfg.FocusConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/focus.json", path)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}
