package main

import (
	"github.com/spf13/cobra"

	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string
}

// configPath returns --config or the XDG default.
func (o *RootOptions) configPath() (string, error) {
	if o.ConfigPath != "" {
		return o.ConfigPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads config.json. A parse or validation failure is returned.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	path, err := o.configPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// logLevel applies --verbose on top of the configured level.
func (o *RootOptions) logLevel(cfg *config.Config) string {
	if o.Verbose {
		return "debug"
	}
	return cfg.Logging.Level
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "claude-notifier",
		Short: "Desktop notifications for Claude Code hooks",
		Long: `claude-notifier relays Claude Code hook events to the desktop.

A long-running daemon listens on a Unix socket, shows a notification per
event and, when the notification is clicked, brings the project's editor
window to the foreground.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				_ = logging.Init(logging.Options{Level: "debug", Stderr: true, Component: "cli"})
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config.json")

	cmd.AddCommand(platformCommands(opts)...)
	cmd.AddCommand(NewWindowsCommand(opts))
	cmd.AddCommand(NewFocusCommand(opts))
	cmd.AddCommand(NewSoundsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))

	return cmd
}
