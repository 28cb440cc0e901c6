package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/777genius/claude-notifier/internal/audio"
	"github.com/777genius/claude-notifier/internal/sounds"
)

// NewSoundsCommand lists notification sounds and optionally plays one.
func NewSoundsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		play     string
		volume   float64
		asJSON   bool
		system   bool
		themeDir string
	)

	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "List available notification sounds",
		Example: `  claude-notifier sounds                       # List theme sounds
  claude-notifier sounds --system --json       # Include every installed theme, as JSON
  claude-notifier sounds --play dialog-warning --volume 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if volume < 0.0 || volume > 1.0 {
				return fmt.Errorf("volume must be between 0.0 and 1.0 (got %.2f)", volume)
			}

			available := sounds.Discover(sounds.DiscoverOptions{
				ThemeDir:      themeDir,
				IncludeSystem: system || play != "",
			})
			out := cmd.OutOrStdout()

			if play != "" {
				s, found := sounds.FindByName(play, available)
				if !found {
					return fmt.Errorf("sound %q not found", play)
				}
				fmt.Fprintf(out, "Playing: %s (volume: %d%%)\n", s.Name, int(volume*100))

				player, err := audio.NewPlayer("", volume)
				if err != nil {
					return fmt.Errorf("creating audio player: %w", err)
				}
				defer player.Close()
				return player.Play(s.Path)
			}

			if asJSON {
				if available == nil {
					available = []sounds.SoundInfo{}
				}
				data, err := json.MarshalIndent(available, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			printSounds(cmd, available)
			return nil
		},
	}

	cmd.Flags().StringVar(&play, "play", "", "play a sound by name")
	cmd.Flags().Float64Var(&volume, "volume", 0.3, "playback volume (0.0 to 1.0)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&system, "system", false, "include every installed sound theme")
	cmd.Flags().StringVar(&themeDir, "theme-dir", "", "sound theme directory (default: "+sounds.FreedesktopDir+")")
	return cmd
}

func printSounds(cmd *cobra.Command, available []sounds.SoundInfo) {
	out := cmd.OutOrStdout()
	if len(available) == 0 {
		fmt.Fprintln(out, "No sounds found.")
		return
	}

	var theme, system []sounds.SoundInfo
	for _, s := range available {
		if s.Source == sounds.SourceFreedesktop {
			theme = append(theme, s)
		} else {
			system = append(system, s)
		}
	}

	section := func(title string, list []sounds.SoundInfo) {
		if len(list) == 0 {
			return
		}
		fmt.Fprintf(out, "%s:\n\n", title)
		for _, s := range list {
			desc := ""
			if s.Description != "" {
				desc = " - " + s.Description
			}
			fmt.Fprintf(out, "  %s.%s%s\n", s.Name, s.Format, desc)
		}
		fmt.Fprintln(out)
	}
	section("Theme sounds", theme)
	section("System sounds", system)

	fmt.Fprintln(out, "To use a sound in config.json:")
	fmt.Fprintln(out, `  {`)
	fmt.Fprintln(out, `    "statuses": {`)
	fmt.Fprintln(out, `      "idle_prompt": { "sound": "bell" }`)
	fmt.Fprintln(out, `    }`)
	fmt.Fprintln(out, `  }`)
}
