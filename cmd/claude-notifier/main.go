// ABOUTME: Entry point for claude-notifier: the desktop notification daemon and its CLI.
// ABOUTME: Hook scripts pipe JSON into `claude-notifier send`; the daemon presents and focuses.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
