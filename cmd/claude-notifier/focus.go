package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/focus"
	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/notification"
	"github.com/777genius/claude-notifier/internal/window"
	"github.com/777genius/claude-notifier/internal/x11"
)

// focusTimeout bounds one interactive focus attempt.
const focusTimeout = 15 * time.Second

// newFocuser wires the focus pipeline. Missing capabilities leave the
// corresponding collaborator nil so the pipeline reports them per attempt.
func newFocuser(cfg *config.Config, store *focus.Store) *focus.Focuser {
	f := &focus.Focuser{
		Store:  store,
		Runner: focus.NewCommandRunner(),
	}

	if xdo, err := window.NewXdotool(); err != nil {
		logging.Warn("window lookup disabled: %v", err)
	} else {
		f.Locator = window.NewLocator(xdo)
	}

	if os.Getenv("DISPLAY") == "" {
		logging.Warn("window activation disabled: DISPLAY is not set")
	} else {
		f.Activator = window.NewActivator(x11.Dial, cfg.SettleDelay())
	}
	return f
}

// newFocusStore opens the focus mapping named by cfg.
func newFocusStore(cfg *config.Config) (*focus.Store, error) {
	path, err := cfg.FocusConfigPath()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve focus mapping path: %w", err)
	}
	return focus.NewStore(path), nil
}

// focusRequest builds the focus request for a notification.
func focusRequest(n *notification.Notification) focus.Request {
	return focus.Request{
		Cwd:         n.Cwd,
		ContextPath: n.ContextPath,
		Project:     n.Project,
		Context:     map[string]interface{}(n.Payload),
	}
}

// NewFocusCommand runs the focus pipeline in-process for a directory.
func NewFocusCommand(rootOpts *RootOptions) *cobra.Command {
	var dir, project string

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Bring the editor window for a project to the foreground",
		Long: `Resolve the focus policy for --dir and execute it: either run the
configured custom command or locate and activate the editor window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			store, err := newFocusStore(cfg)
			if err != nil {
				return err
			}

			if dir == "" {
				if dir, err = os.Getwd(); err != nil {
					return err
				}
			}
			dir, err = filepath.Abs(dir)
			if err != nil {
				return err
			}
			if project == "" {
				project = notification.ResolveProjectName(dir, "")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), focusTimeout)
			defer cancel()

			res, err := newFocuser(cfg, store).Focus(ctx, focus.Request{
				ContextPath: dir,
				Project:     project,
				Context:     map[string]interface{}{"cwd": dir},
			})
			if err != nil {
				return fmt.Errorf("focus %s (%s): %w", dir, res.Policy, err)
			}

			out := cmd.OutOrStdout()
			if res.Policy.Kind == focus.KindCustom {
				fmt.Fprintf(out, "Ran custom command for %s\n", dir)
			} else {
				fmt.Fprintf(out, "Focused %s %q (%s)\n", res.Window.Handle, res.Window.Title, res.Policy.EditorID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "project directory (default: current directory)")
	cmd.Flags().StringVar(&project, "project", "", "window title hint (default: directory name)")
	return cmd
}

// NewWindowsCommand lists open editor windows and the project each shows.
func NewWindowsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List open editor windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			store, err := newFocusStore(cfg)
			if err != nil {
				return err
			}
			m, err := store.Load()
			if err != nil {
				logging.Warn("focus mapping unreadable, using built-in editors: %v", err)
				m = focus.DefaultMapping()
			}

			xdo, err := window.NewXdotool()
			if err != nil {
				return err
			}
			open, err := window.NewLocator(xdo).Enumerate(cmd.Context(), m.Targets())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(open) == 0 {
				fmt.Fprintln(out, "No editor windows found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WINDOW\tEDITOR\tPROJECT\tTITLE")
			for _, o := range open {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Handle, o.EditorID, o.Project, o.Title)
			}
			return w.Flush()
		},
	}
}

// isCapabilityError reports failures caused by the environment rather than input.
func isCapabilityError(err error) bool {
	return errors.Is(err, window.ErrToolUnavailable) || errors.Is(err, window.ErrActivationUnavailable)
}
