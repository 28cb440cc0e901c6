package focus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/777genius/claude-notifier/internal/logging"
)

// DefaultCommandTimeout bounds a custom focus command.
const DefaultCommandTimeout = 10 * time.Second

// maxStderr bounds captured stderr kept for error messages.
const maxStderr = 4096

// CommandRunner executes custom focus commands with sh -c.
type CommandRunner struct {
	Shell   string
	Timeout time.Duration
}

// NewCommandRunner returns a runner using /bin/sh and the default timeout.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{Shell: "/bin/sh", Timeout: DefaultCommandTimeout}
}

// Run executes command. When stdin is non-nil it is encoded as JSON and
// piped to the command. Non-zero exit yields ErrCommandFailed with captured
// stderr; exceeding the timeout yields ErrCommandTimeout.
func (r *CommandRunner) Run(ctx context.Context, command string, stdin interface{}) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	// Let a timed-out command's children release the pipes promptly.
	cmd.WaitDelay = time.Second

	if stdin != nil {
		data, err := json.Marshal(stdin)
		if err != nil {
			return fmt.Errorf("failed to encode focus context: %w", err)
		}
		cmd.Stdin = bytes.NewReader(data)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{buf: &stderr, max: maxStderr}

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		logging.Warn("focus command timed out after %s: %s", timeout, command)
		return fmt.Errorf("%w after %s", ErrCommandTimeout, timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		logging.Warn("focus command failed: %v: %s", err, msg)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: exit %d: %s", ErrCommandFailed, exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return nil
}

type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
