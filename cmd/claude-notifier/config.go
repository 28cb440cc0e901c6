package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/focus"
	"github.com/777genius/claude-notifier/internal/platform"
)

// NewConfigCommand groups config file helpers.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage config.json and focus.json",
	}
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	cmd.AddCommand(newConfigPathCommand(rootOpts))
	cmd.AddCommand(newConfigSchemaCommand())
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write default config.json and focus.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := rootOpts.configPath()
			if err != nil {
				return err
			}
			if platform.FileExists(path) && !force {
				fmt.Fprintf(out, "Exists:  %s\n", path)
			} else {
				if err := config.DefaultConfig().Save(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "Created: %s\n", path)
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			store, err := newFocusStore(cfg)
			if err != nil {
				return err
			}
			if platform.FileExists(store.Path()) && !force {
				fmt.Fprintf(out, "Exists:  %s\n", store.Path())
				return nil
			}
			if err := store.Save(focus.DefaultMapping()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created: %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func newConfigPathCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config, focus mapping and log file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rootOpts.configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			focusPath, err := cfg.FocusConfigPath()
			if err != nil {
				return err
			}
			logPath, err := cfg.LogFilePath()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", path)
			fmt.Fprintf(out, "focus:  %s\n", focusPath)
			fmt.Fprintf(out, "log:    %s\n", logPath)
			return nil
		},
	}
}

func newConfigSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [config|focus]",
		Short:     "Print the JSON Schema of config.json or focus.json",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"config", "focus"},
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "config"
			if len(args) == 1 {
				which = args[0]
			}
			data, err := generateSchema(which)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// generateSchema reflects the Go types of either persisted document.
func generateSchema(which string) ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
	}

	var schema *jsonschema.Schema
	switch which {
	case "config":
		schema = r.Reflect(&config.Config{})
		schema.Title = "claude-notifier configuration"
		schema.Description = "Display and behavior settings of the notification daemon (config.json)."
	case "focus":
		schema = r.Reflect(&focus.Mapping{})
		schema.Title = "claude-notifier focus mapping"
		schema.Description = "Per-project focus policies and built-in editor definitions (focus.json)."
	default:
		return nil, fmt.Errorf("unknown schema %q", which)
	}
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
