//go:build linux

// ABOUTME: Endpoint conventions shared by the daemon and its one-shot clients.
// ABOUTME: One UTF-8 JSON object per connection, no framing beyond EOF, no reply.
package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/777genius/claude-notifier/internal/platform"
)

// Common errors
var (
	ErrDaemonNotAvailable = errors.New("daemon not available")
	ErrDaemonNotRunning   = errors.New("daemon not running")
)

const (
	// MaxPayloadSize bounds a single payload. The daemon reads at most this
	// many bytes, so longer input fails to decode and is dropped as malformed.
	MaxPayloadSize = 4096
	// ListenBacklog is the pending-connection queue of the endpoint.
	ListenBacklog = 5
	// ProbeTimeout bounds a health-check or client connect.
	ProbeTimeout = 2 * time.Second

	connectRetryInterval = 10 * time.Millisecond
)

// EndpointState is the process-wide view of the ingestion endpoint.
type EndpointState struct {
	Listening       bool
	LastHealthCheck time.Time
	Healthy         bool
	Restarts        int
}

// GetSocketPath returns the Unix socket path for the daemon.
// Uses XDG_RUNTIME_DIR if available, falls back to /tmp with UID suffix.
func GetSocketPath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, platform.AppName+".sock")
	}
	return fmt.Sprintf("/tmp/%s-%d.sock", platform.AppName, os.Getuid())
}

// GetPidFilePath returns the path to the daemon's PID file.
func GetPidFilePath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, platform.AppName+".pid")
	}
	return fmt.Sprintf("/tmp/%s-%d.pid", platform.AppName, os.Getuid())
}

// SocketPath returns override when set, else GetSocketPath().
func SocketPath(override string) string {
	if override != "" {
		return override
	}
	return GetSocketPath()
}

// PidPathFor keeps the PID file next to a custom socket.
func PidPathFor(socketPath string) string {
	if socketPath == "" || socketPath == GetSocketPath() {
		return GetPidFilePath()
	}
	ext := filepath.Ext(socketPath)
	return socketPath[:len(socketPath)-len(ext)] + ".pid"
}

// DialEndpoint connects to the endpoint at path within timeout. Linux fails a
// non-blocking connect with EAGAIN while the listener's backlog is full, so
// that error is retried until the deadline.
func DialEndpoint(path string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("unix", path, time.Until(deadline))
		if err == nil || !IsBusy(err) {
			return conn, err
		}
		if time.Until(deadline) <= connectRetryInterval {
			return nil, err
		}
		time.Sleep(connectRetryInterval)
	}
}

// IsBusy reports whether err means the endpoint is alive but its accept
// queue is full.
func IsBusy(err error) bool {
	return errors.Is(err, syscall.EAGAIN)
}
