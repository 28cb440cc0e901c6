//go:build !linux

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errUnsupported = errors.New("the notification daemon is only available on Linux")

// platformCommands registers stubs so the command tree is the same everywhere.
func platformCommands(opts *RootOptions) []*cobra.Command {
	var cmds []*cobra.Command
	for _, name := range []string{"daemon", "send", "status", "stop"} {
		cmds = append(cmds, &cobra.Command{
			Use:    name,
			Short:  "Not available on this platform",
			Hidden: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return errUnsupported
			},
		})
	}
	return cmds
}
