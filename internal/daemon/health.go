//go:build linux

package daemon

import (
	"context"
	"time"

	"github.com/777genius/claude-notifier/internal/logging"
)

// DefaultHealthCheckInterval is how often the endpoint is probed.
const DefaultHealthCheckInterval = 30 * time.Second

// HealthMonitor probes the endpoint and restarts the listener when the probe
// fails. It runs for the daemon's whole life.
type HealthMonitor struct {
	listener *Listener
	interval time.Duration
	timeout  time.Duration
}

// NewHealthMonitor returns a monitor for l.
func NewHealthMonitor(l *Listener, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}
	return &HealthMonitor{listener: l, interval: interval, timeout: ProbeTimeout}
}

// Run probes every interval until ctx is cancelled.
func (h *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check()
		}
	}
}

// Check performs one probe, restarting the listener on failure. An endpoint
// whose queue stays full for the whole probe is busy, not down.
func (h *HealthMonitor) Check() bool {
	err := Probe(h.listener.Path(), h.timeout)
	if err != nil && IsBusy(err) {
		logging.Debug("health check: endpoint busy: %v", err)
		err = nil
	}
	h.listener.recordHealthCheck(time.Now(), err == nil)
	if err == nil {
		return true
	}

	logging.Warn("health check failed: %v, restarting endpoint", err)
	if err := h.listener.Restart(); err != nil {
		logging.Error("endpoint still down: %v", err)
	}
	return false
}

// Probe connects to the endpoint and closes immediately.
func Probe(path string, timeout time.Duration) error {
	conn, err := DialEndpoint(path, timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}
