//go:build linux

// ABOUTME: One-shot client for the notification daemon.
// ABOUTME: Sends a payload per connection, checks liveness, starts and stops the daemon.
package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// InvalidPayloadMessage replaces stdin that is not valid JSON.
const InvalidPayloadMessage = "Invalid JSON data"

// Client sends payloads to the daemon's endpoint.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath ("" = default path).
func NewClient(socketPath string) *Client {
	return &Client{socketPath: SocketPath(socketPath), timeout: ProbeTimeout}
}

// SocketPath returns the endpoint this client talks to.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Send writes one payload and closes the connection. Payloads that are not
// JSON objects are replaced by {"message": "Invalid JSON data"}.
func (c *Client) Send(data []byte) error {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		data, _ = json.Marshal(map[string]string{"message": InvalidPayloadMessage})
	}

	conn, err := DialEndpoint(c.socketPath, c.timeout)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("%w: %s", ErrDaemonNotRunning, c.socketPath)
		}
		return fmt.Errorf("%w: %v", ErrDaemonNotAvailable, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send payload: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	return nil
}

// SendPayload encodes v as JSON and sends it.
func (c *Client) SendPayload(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.Send(data)
}

// IsRunning reports whether the endpoint accepts connections.
func (c *Client) IsRunning() bool {
	err := Probe(c.socketPath, c.timeout)
	return err == nil || IsBusy(err)
}

// StartDaemonOnDemand starts the daemon if it's not already running.
// Returns true if daemon is running (either started now or was already running).
func (c *Client) StartDaemonOnDemand(args ...string) bool {
	if c.IsRunning() {
		return true
	}

	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if len(args) == 0 {
		args = []string{"daemon"}
	}

	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session (detach from terminal)
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err == nil {
		cmd.Stdout = devNull
		cmd.Stderr = devNull
		defer devNull.Close()
	}
	if err := cmd.Start(); err != nil {
		return false
	}
	go cmd.Wait()

	// Wait for daemon to be ready (up to 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if c.IsRunning() {
			return true
		}
	}
	return false
}

// GetDaemonPID returns the PID of the running daemon, or 0 if not running
func GetDaemonPID(pidPath string) int {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0
	}
	// On Unix, FindProcess always succeeds; check if process exists with signal 0
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0
	}
	return pid
}

// StopDaemon sends SIGTERM to the daemon named by pidPath and waits up to
// timeout for it to exit.
func StopDaemon(pidPath string, timeout time.Duration) error {
	pid := GetDaemonPID(pidPath)
	if pid == 0 {
		return ErrDaemonNotRunning
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal daemon (pid %d): %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if syscall.Kill(pid, syscall.Signal(0)) != nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit within %s", pid, timeout)
}
