//go:build linux

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/daemon"
	"github.com/777genius/claude-notifier/internal/focus"
	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/notification"
	"github.com/777genius/claude-notifier/internal/notifier"
)

func platformCommands(opts *RootOptions) []*cobra.Command {
	return []*cobra.Command{
		NewDaemonCommand(opts),
		NewSendCommand(opts),
		NewStatusCommand(opts),
		NewStopCommand(opts),
	}
}

// NewDaemonCommand runs the notification daemon in the foreground.
func NewDaemonCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the notification daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), rootOpts, cfg)
		},
	}
}

func runDaemon(ctx context.Context, opts *RootOptions, cfg *config.Config) error {
	logPath, err := cfg.LogFilePath()
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Options{
		Level:     opts.logLevel(cfg),
		File:      logPath,
		Component: "daemon",
		Stderr:    opts.Verbose,
	}); err != nil {
		return err
	}
	defer logging.Close()

	logging.Info("Starting notification daemon...")

	store, err := newFocusStore(cfg)
	if err != nil {
		return err
	}
	if _, err := store.Load(); err != nil {
		logging.Warn("focus mapping %s unreadable, using defaults: %v", store.Path(), err)
	}
	focuser := newFocuser(cfg, store)

	var loop *daemon.Loop
	presenter := notifier.New(cfg, notifier.Callbacks{
		OnActivated: func(id uint32) { loop.Post(daemon.ActivatedMsg{PresentationID: id}) },
		OnDismissed: func(id uint32) { loop.Post(daemon.DismissedMsg{PresentationID: id}) },
	})
	loop = daemon.NewLoop(
		daemon.WithPresenter(presenter),
		daemon.WithNormalizer(notification.NewNormalizer()),
		daemon.WithFocus(func(ctx context.Context, n *notification.Notification) (focus.Result, error) {
			ctx, cancel := context.WithTimeout(ctx, focusTimeout)
			defer cancel()
			res, err := focuser.Focus(ctx, focusRequest(n))
			if err != nil && isCapabilityError(err) {
				logging.Warn("focus capability missing for %s: %v", n.Project, err)
			}
			return res, err
		}),
	)

	srvCfg := daemon.DefaultServerConfig()
	srvCfg.SocketPath = daemon.SocketPath(cfg.Daemon.SocketPath)
	srvCfg.PidPath = daemon.PidPathFor(srvCfg.SocketPath)
	srvCfg.HealthCheckInterval = cfg.HealthCheckInterval()
	srvCfg.ReadTimeout = cfg.ReadTimeout()
	srvCfg.IdleTimeout = cfg.IdleTimeout()

	server := daemon.NewServer(srvCfg, loop, presenter)

	watcher, err := focus.NewWatcher(store, 0)
	if err != nil {
		logging.Warn("focus mapping changes will not be picked up: %v", err)
	} else {
		watcher.OnReload(func() { logging.Info("focus mapping reloaded") })
		server.Go(watcher.Run)
	}

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	logging.Info("Daemon stopped after %s", server.Uptime().Round(time.Second))
	return nil
}
