// ABOUTME: Small OS helpers shared by the daemon, client and config loader.
// ABOUTME: File checks, env expansion and XDG directory resolution.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "claude-notifier"

// FileExists reports whether path exists (file or directory).
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// IsLinux reports whether the binary runs on Linux.
func IsLinux() bool {
	return runtime.GOOS == "linux"
}

// ExpandEnv expands $VAR / ${VAR} references and a leading "~/".
// Unset variables are left as written so a misconfigured path stays visible in logs.
func ExpandEnv(s string) string {
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, s[2:])
		}
	}
	return os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// ConfigDir returns $XDG_CONFIG_HOME/claude-notifier (default ~/.config/claude-notifier).
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// StateDir returns $XDG_STATE_HOME/claude-notifier (default ~/.local/state/claude-notifier).
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", AppName), nil
}
