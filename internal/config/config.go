// ABOUTME: Display/behavior configuration for the notification daemon (config.json).
// ABOUTME: Loads JSON with defaults, expands env vars in paths, and validates ranges.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/platform"
)

// Config represents the daemon configuration
type Config struct {
	Daemon        DaemonConfig          `json:"daemon"`
	Notifications NotificationsConfig   `json:"notifications"`
	Focus         FocusConfig           `json:"focus"`
	Logging       LoggingConfig         `json:"logging"`
	Statuses      map[string]StatusInfo `json:"statuses,omitempty"`
}

// DaemonConfig controls the ingestion endpoint and its health monitor
type DaemonConfig struct {
	SocketPath          string `json:"socketPath,omitempty"`  // empty = runtime dir default
	HealthCheckInterval string `json:"healthCheckInterval"`   // e.g. "30s"
	ReadTimeout         string `json:"readTimeout"`           // per-connection read deadline
	IdleTimeout         string `json:"idleTimeout,omitempty"` // "" or "0" = never shut down
}

// NotificationsConfig represents notification settings
type NotificationsConfig struct {
	Desktop DesktopConfig `json:"desktop"`
}

// DesktopConfig represents desktop notification settings
type DesktopConfig struct {
	Enabled        bool    `json:"enabled"`
	Sound          bool    `json:"sound"`
	Volume         float64 `json:"volume"`         // 0.0-1.0
	AudioDevice    string  `json:"audioDevice"`    // empty = system default
	AppIcon        string  `json:"appIcon"`        // path to app icon
	ClickToFocus   bool    `json:"clickToFocus"`   // clicking a notification focuses the editor window
	TimeoutSeconds int     `json:"timeoutSeconds"` // expire timeout passed to the notification server
}

// FocusConfig controls window focus automation
type FocusConfig struct {
	ConfigPath  string `json:"configPath,omitempty"` // empty = focus.json next to config.json
	SettleDelay string `json:"settleDelay"`          // pause between activation steps
}

// LoggingConfig controls the daemon log
type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"` // empty = state dir default
}

// StatusInfo overrides the sound for a notification type tag.
// Classification (urgency/icon) is never configurable.
type StatusInfo struct {
	Sound string `json:"sound"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			HealthCheckInterval: "30s",
			ReadTimeout:         "5s",
		},
		Notifications: NotificationsConfig{
			Desktop: DesktopConfig{
				Enabled:        true,
				Sound:          true,
				Volume:         1.0,
				ClickToFocus:   true,
				TimeoutSeconds: 30,
			},
		},
		Focus: FocusConfig{
			SettleDelay: "50ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Statuses: map[string]StatusInfo{},
	}
}

// Load loads configuration from a file.
// If the file doesn't exist, returns default config
func Load(path string) (*Config, error) {
	if !platform.FileExists(path) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Daemon.SocketPath = platform.ExpandEnv(cfg.Daemon.SocketPath)
	cfg.Notifications.Desktop.AppIcon = platform.ExpandEnv(cfg.Notifications.Desktop.AppIcon)
	cfg.Focus.ConfigPath = platform.ExpandEnv(cfg.Focus.ConfigPath)
	cfg.Logging.File = platform.ExpandEnv(cfg.Logging.File)
	for status, info := range cfg.Statuses {
		info.Sound = platform.ExpandEnv(info.Sound)
		cfg.Statuses[status] = info
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads config.json from the XDG config directory.
// A corrupted file is non-fatal: a warning is logged and defaults are used.
func LoadDefault() *Config {
	path, err := DefaultPath()
	if err != nil {
		logging.Warn("cannot resolve config path: %v, using defaults", err)
		return DefaultConfig()
	}
	cfg, err := Load(path)
	if err != nil {
		logging.Warn("failed to load config from %s: %v, using defaults", path, err)
		return DefaultConfig()
	}
	return cfg
}

// DefaultPath returns the config.json path in the XDG config directory.
func DefaultPath() (string, error) {
	dir, err := platform.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Save writes the config atomically (temp file + rename in the same directory).
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to path through a temp file in the same directory.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ApplyDefaults fills in missing fields with default values
func (c *Config) ApplyDefaults() {
	if c.Daemon.HealthCheckInterval == "" {
		c.Daemon.HealthCheckInterval = "30s"
	}
	if c.Daemon.ReadTimeout == "" {
		c.Daemon.ReadTimeout = "5s"
	}
	if c.Notifications.Desktop.Volume == 0 {
		c.Notifications.Desktop.Volume = 1.0
	}
	if c.Notifications.Desktop.TimeoutSeconds == 0 {
		c.Notifications.Desktop.TimeoutSeconds = 30
	}
	if c.Focus.SettleDelay == "" {
		c.Focus.SettleDelay = "50ms"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Statuses == nil {
		c.Statuses = map[string]StatusInfo{}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Notifications.Desktop.Volume < 0.0 || c.Notifications.Desktop.Volume > 1.0 {
		return fmt.Errorf("desktop volume must be between 0.0 and 1.0 (got %.2f)", c.Notifications.Desktop.Volume)
	}
	if c.Notifications.Desktop.TimeoutSeconds < 0 {
		return fmt.Errorf("desktop timeoutSeconds must be >= 0")
	}

	durations := map[string]string{
		"daemon.healthCheckInterval": c.Daemon.HealthCheckInterval,
		"daemon.readTimeout":         c.Daemon.ReadTimeout,
		"daemon.idleTimeout":         c.Daemon.IdleTimeout,
		"focus.settleDelay":          c.Focus.SettleDelay,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}

	if d, _ := time.ParseDuration(c.Daemon.HealthCheckInterval); d == 0 {
		return fmt.Errorf("daemon.healthCheckInterval must be > 0")
	}
	return nil
}

// HealthCheckInterval returns the parsed probe interval (default 30s).
func (c *Config) HealthCheckInterval() time.Duration {
	return parseDuration(c.Daemon.HealthCheckInterval, 30*time.Second)
}

// ReadTimeout returns the per-connection read deadline (default 5s).
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Daemon.ReadTimeout, 5*time.Second)
}

// IdleTimeout returns the auto-shutdown delay; 0 disables it.
func (c *Config) IdleTimeout() time.Duration {
	return parseDuration(c.Daemon.IdleTimeout, 0)
}

// SettleDelay returns the pause between window activation steps (default 50ms).
func (c *Config) SettleDelay() time.Duration {
	return parseDuration(c.Focus.SettleDelay, 50*time.Millisecond)
}

// FocusConfigPath returns the focus-policy mapping path.
func (c *Config) FocusConfigPath() (string, error) {
	if c.Focus.ConfigPath != "" {
		return c.Focus.ConfigPath, nil
	}
	dir, err := platform.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "focus.json"), nil
}

// LogFilePath returns the daemon log path.
func (c *Config) LogFilePath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := platform.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.log"), nil
}

// SoundOverride returns the configured sound for a type tag, if any.
func (c *Config) SoundOverride(typeTag string) (string, bool) {
	info, ok := c.Statuses[typeTag]
	if !ok || info.Sound == "" {
		return "", false
	}
	return info.Sound, true
}

// IsDesktopEnabled returns true if desktop notifications are enabled
func (c *Config) IsDesktopEnabled() bool {
	return c.Notifications.Desktop.Enabled
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
