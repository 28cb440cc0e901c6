package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCommand prints or follows the daemon log.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			path, err := cfg.LogFilePath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			offset, err := lastLinesOffset(path, lines)
			if err != nil && !(follow && os.IsNotExist(err)) {
				return fmt.Errorf("cannot read log %s: %w", path, err)
			}
			if !follow {
				return copyFrom(out, path, offset)
			}

			t, err := tail.TailFile(path, tail.Config{
				Follow:    true,
				ReOpen:    true,
				MustExist: false,
				Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
				Logger:    tail.DiscardingLogger,
			})
			if err != nil {
				return fmt.Errorf("cannot follow log %s: %w", path, err)
			}
			defer t.Cleanup()

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return t.Stop()
				case line, ok := <-t.Lines:
					if !ok {
						return t.Err()
					}
					if line.Err != nil {
						continue
					}
					fmt.Fprintln(out, line.Text)
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of trailing lines to show (0 = all)")
	return cmd
}

// lastLinesOffset returns the byte offset at which the last n lines of path
// start. n <= 0 means the whole file.
func lastLinesOffset(path string, n int) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if n <= 0 {
		return 0, nil
	}

	var starts []int64
	var pos int64
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			starts = append(starts, pos)
			if len(starts) > n {
				starts = starts[1:]
			}
			pos += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if len(starts) == 0 {
		return pos, nil
	}
	return starts[0], nil
}

func copyFrom(w io.Writer, path string, offset int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
