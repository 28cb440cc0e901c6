//go:build linux

// ABOUTME: Daemon server: wires the ingestion endpoint, health monitor and consumer loop.
// ABOUTME: Handles signals, the PID file and optional idle auto-shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/notification"
)

// ServerConfig contains server configuration options
type ServerConfig struct {
	SocketPath          string
	PidPath             string
	HealthCheckInterval time.Duration
	ReadTimeout         time.Duration
	IdleTimeout         time.Duration // Auto-shutdown after this duration of inactivity (0 = disabled)
	HandleSignals       bool
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		SocketPath:          GetSocketPath(),
		PidPath:             GetPidFilePath(),
		HealthCheckInterval: DefaultHealthCheckInterval,
		ReadTimeout:         5 * time.Second,
		HandleSignals:       true,
	}
}

// Server is the notification daemon server
type Server struct {
	cfg       ServerConfig
	loop      *Loop
	listener  *Listener
	monitor   *HealthMonitor
	presenter Presenter
	startTime time.Time

	// background tasks started with the server (e.g. config watchers)
	background []func(ctx context.Context)

	lastActivity time.Time
	activityMu   sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// NewServer creates a daemon server around loop. presenter may be nil and is
// closed on shutdown.
func NewServer(cfg ServerConfig, loop *Loop, presenter Presenter) *Server {
	if cfg.SocketPath == "" {
		cfg.SocketPath = GetSocketPath()
	}
	if cfg.PidPath == "" {
		cfg.PidPath = PidPathFor(cfg.SocketPath)
	}

	s := &Server{
		cfg:          cfg,
		loop:         loop,
		presenter:    presenter,
		startTime:    time.Now(),
		lastActivity: time.Now(),
		done:         make(chan struct{}),
	}
	s.listener = NewListener(cfg.SocketPath, cfg.ReadTimeout, func(p notification.Payload) bool {
		s.updateActivity()
		return loop.PostPayload(p)
	})
	s.monitor = NewHealthMonitor(s.listener, cfg.HealthCheckInterval)
	return s
}

// Go registers a task run for the server's lifetime.
func (s *Server) Go(task func(ctx context.Context)) {
	s.background = append(s.background, task)
}

// Listener exposes the ingestion endpoint.
func (s *Server) Listener() *Listener {
	return s.listener
}

// Uptime returns time since the server was created.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Run binds the endpoint and serves until ctx is cancelled, a signal arrives,
// Stop is called or the idle timeout expires. A bind failure here is the only
// fatal error.
func (s *Server) Run(ctx context.Context) error {
	if err := s.listener.Start(); err != nil {
		return fmt.Errorf("failed to start endpoint: %w", err)
	}

	if err := os.WriteFile(s.cfg.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0600); err != nil {
		logging.Warn("Failed to write PID file: %v", err)
	}
	logging.Info("Daemon started, listening on %s", s.cfg.SocketPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("consumer loop stopped: %v", err)
		}
	}()
	go func() {
		defer s.wg.Done()
		s.monitor.Run(ctx)
	}()
	for _, task := range s.background {
		task := task
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			task(ctx)
		}()
	}
	if s.cfg.IdleTimeout > 0 {
		s.wg.Add(1)
		go s.idleChecker(ctx)
	}

	var sigChan chan os.Signal
	if s.cfg.HandleSignals {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
	}

	select {
	case sig := <-sigChan:
		logging.Info("Received signal %v, shutting down", sig)
	case <-s.done:
		logging.Info("Shutdown requested")
	case <-ctx.Done():
		logging.Info("Context cancelled, shutting down")
	}

	cancel()
	return s.shutdown()
}

// Stop asks Run to return.
func (s *Server) Stop() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Server) updateActivity() {
	s.activityMu.Lock()
	s.lastActivity = time.Now()
	s.activityMu.Unlock()
}

func (s *Server) idleChecker(ctx context.Context) {
	defer s.wg.Done()

	interval := 30 * time.Second
	if s.cfg.IdleTimeout < interval {
		interval = s.cfg.IdleTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.activityMu.Lock()
			idle := time.Since(s.lastActivity)
			s.activityMu.Unlock()

			if idle >= s.cfg.IdleTimeout {
				logging.Info("Idle timeout reached (%v), shutting down", s.cfg.IdleTimeout)
				s.Stop()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) shutdown() error {
	_ = s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logging.Warn("Shutdown timeout, forcing exit")
	}

	if s.presenter != nil {
		if err := s.presenter.Close(); err != nil {
			logging.Warn("closing presenter: %v", err)
		}
	}
	os.Remove(s.cfg.PidPath)

	logging.Info("Daemon stopped")
	return nil
}
