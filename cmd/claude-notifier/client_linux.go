//go:build linux

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/777genius/claude-notifier/internal/daemon"
	"github.com/777genius/claude-notifier/internal/logging"
)

// stopTimeout is how long `stop` waits for the daemon to exit.
const stopTimeout = 5 * time.Second

// socketPath returns the endpoint named by config, or the default.
func (o *RootOptions) socketPath() string {
	cfg, err := o.loadConfig()
	if err != nil {
		logging.Warn("config unreadable, using default socket: %v", err)
		return daemon.GetSocketPath()
	}
	return daemon.SocketPath(cfg.Daemon.SocketPath)
}

// NewSendCommand forwards a hook payload from stdin to the daemon.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	var start bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a hook payload (JSON on stdin) to the daemon",
		Long: `Read one JSON object from stdin and hand it to the daemon.

Input that is not a JSON object is replaced by {"message": "Invalid JSON data"}
so the user still sees that the hook fired.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return errors.New("send expects a JSON payload on stdin, not a terminal")
			}

			data, err := io.ReadAll(io.LimitReader(in, daemon.MaxPayloadSize+1))
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if len(data) > daemon.MaxPayloadSize {
				return fmt.Errorf("payload exceeds %d bytes", daemon.MaxPayloadSize)
			}

			client := daemon.NewClient(rootOpts.socketPath())
			if start && !client.StartDaemonOnDemand() {
				logging.Warn("daemon did not start within 5s")
			}

			if err := client.Send(data); err != nil {
				if errors.Is(err, daemon.ErrDaemonNotRunning) {
					fmt.Fprintln(cmd.ErrOrStderr(), "The notification daemon is not running. Start it with `claude-notifier daemon` or pass --start.")
				}
				return err
			}
			logging.Debug("payload of %d bytes sent to %s", len(data), client.SocketPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&start, "start", false, "start the daemon if it is not running")
	return cmd
}

// NewStatusCommand reports whether the daemon is reachable.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.socketPath()
			out := cmd.OutOrStdout()

			if !daemon.NewClient(path).IsRunning() {
				fmt.Fprintf(out, "Daemon: not running (%s)\n", path)
				return daemon.ErrDaemonNotRunning
			}

			fmt.Fprintf(out, "Daemon: running\n")
			fmt.Fprintf(out, "Socket: %s\n", path)
			if pid := daemon.GetDaemonPID(daemon.PidPathFor(path)); pid != 0 {
				fmt.Fprintf(out, "PID:    %d\n", pid)
			}
			return nil
		},
	}
}

// NewStopCommand asks the daemon to shut down.
func NewStopCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := daemon.PidPathFor(rootOpts.socketPath())
			if err := daemon.StopDaemon(pidPath, stopTimeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
			return nil
		},
	}
}
